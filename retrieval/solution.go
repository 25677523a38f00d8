package retrieval

import (
	"strings"

	"github.com/trigtutor/tutor/intent"
	"github.com/trigtutor/tutor/knowledge"
)

// Solution type labels reported with retrieved answers.
const (
	LabelStandard    = "Standard Solution (From Dataset)"
	LabelRHS         = "RHS Approach (From Dataset)"
	LabelAlternative = "Alternative Method (From Dataset)"
	LabelLHS         = "LHS Approach (From Dataset)"
)

// NoSolution is the final answer for an entry without any steps.
const NoSolution = "No solution available"

// SelectSolution picks the steps for the requested approach. RHS and
// alternative requests get the entry's alternative steps when it has them
// and the primary steps otherwise; LHS and plain requests get the primary
// steps.
func SelectSolution(e *knowledge.Entry, approach intent.Approach) (steps []string, label string) {
	switch approach {
	case intent.RHS:
		if e.HasAlternative() {
			return e.AlternativeSteps, LabelRHS
		}
	case intent.Alternative:
		if e.HasAlternative() {
			return e.AlternativeSteps, LabelAlternative
		}
	case intent.LHS:
		return e.SolutionSteps, LabelLHS
	}
	return e.SolutionSteps, LabelStandard
}

var (
	explicitAnswerMarkers = []string{"final answer", "answer:", "solution:"}
	answerIndicators      = []string{
		"final answer", "answer:", "solution:", "result:", "=",
		"therefore", "thus", "hence", "so we get", "we obtain",
	}
	mathMarkers = []string{"=", "≈", "°", "π", "sin", "cos", "tan"}
)

// ExtractFinalAnswer finds the answer line of a worked solution: the last
// step that announces an answer (text after its first colon), else the last
// step that reads like a conclusion and contains mathematics, else the last
// step.
func ExtractFinalAnswer(steps []string) string {
	if len(steps) == 0 {
		return NoSolution
	}
	for i := len(steps) - 1; i >= 0; i-- {
		lower := strings.ToLower(steps[i])
		if !containsAny(lower, explicitAnswerMarkers) {
			continue
		}
		if _, after, ok := strings.Cut(steps[i], ":"); ok {
			return strings.TrimSpace(after)
		}
		return steps[i]
	}
	for i := len(steps) - 1; i >= 0; i-- {
		if containsAny(strings.ToLower(steps[i]), answerIndicators) && containsAny(steps[i], mathMarkers) {
			return steps[i]
		}
	}
	return steps[len(steps)-1]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
