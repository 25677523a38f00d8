package orchestrator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/trigtutor/tutor/intent"
)

var stepReferencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:explain|clarify|elaborate(?:\s+on)?|describe|expand\s+on|go\s+over|what\s+(?:is|does|happens\s+in)|what's|why|how)\b[^?]*?\bstep\s*#?\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\bdon'?t\s+(?:understand|get)\b[^?]*?\bstep\s*#?\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\bstep\s*#?\s*(\d+)\s+(?:explanation|again|means?|in\s+detail|please)\b`),
	regexp.MustCompile(`(?i)^\s*step\s*#?\s*(\d+)\s*[?.!]*\s*$`),
}

// StepReference reports the step number a follow-up such as "explain step 2"
// or "step 3 explanation" asks about.
func StepReference(question string) (int, bool) {
	for _, p := range stepReferencePatterns {
		m := p.FindStringSubmatch(question)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return n, true
	}
	return 0, false
}

var followUpPhrases = []string{
	"explain again", "explain that again", "explain it again", "explain this again",
	"still don't understand", "still dont understand", "i don't understand", "i dont understand",
	"don't get it", "dont get it", "say that again", "repeat that", "repeat the solution",
	"go through it again", "walk me through it again", "one more time", "more detail",
	"can you explain that", "explain the solution",
}

// IsFollowUp reports whether question asks to hear the last solution again.
func IsFollowUp(question string) bool {
	return intent.ContainsAny(question, followUpPhrases)
}

var resetCommands = map[string]bool{
	"reset": true, "clear": true, "start over": true, "start again": true,
	"new question": true, "new topic": true, "forget it": true, "forget that": true,
	"reset conversation": true, "clear conversation": true, "clear history": true,
	"clear memory": true, "let's start over": true, "lets start over": true,
}

// IsReset reports whether question is a command to forget the conversation.
// Only the whole message counts, so "clear the fraction" is a question.
func IsReset(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	q = strings.TrimRight(q, ".!? ")
	q = strings.TrimSuffix(q, " please")
	q = strings.TrimPrefix(q, "please ")
	return resetCommands[q]
}
