package memory

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Conversation is the memory of the last answered question in a session.
// A new question replaces it wholesale.
type Conversation struct {
	LastQuestion      string         `json:"last_question"`
	LastSolutionSteps []string       `json:"last_solution_steps"`
	LastFinalAnswer   string         `json:"last_final_answer,omitempty"`
	LastEntryID       string         `json:"last_entry_id,omitempty"`
	LastMethod        string         `json:"last_method,omitempty"`
	StepExplanations  map[int]string `json:"step_explanations"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// NewConversation records an answer and indexes its steps.
func NewConversation(question string, steps []string, finalAnswer, entryID, method string) *Conversation {
	return &Conversation{
		LastQuestion:      question,
		LastSolutionSteps: append([]string(nil), steps...),
		LastFinalAnswer:   finalAnswer,
		LastEntryID:       entryID,
		LastMethod:        method,
		StepExplanations:  ScanSteps(steps),
		UpdatedAt:         time.Now(),
	}
}

// Explain returns the recorded text of step n.
func (c *Conversation) Explain(n int) (string, bool) {
	if c == nil {
		return "", false
	}
	s, ok := c.StepExplanations[n]
	return s, ok
}

// Clone returns a deep copy.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.LastSolutionSteps = append([]string(nil), c.LastSolutionSteps...)
	cp.StepExplanations = make(map[int]string, len(c.StepExplanations))
	for k, v := range c.StepExplanations {
		cp.StepExplanations[k] = v
	}
	return &cp
}

var stepMarker = regexp.MustCompile(`(?i)^\s*(?:\*\*)?step\s*(\d+)\b`)

// ScanSteps maps step numbers to their text. A line starting with "Step N"
// opens step N; following lines without a marker are appended to it until
// the next marker. Lines before the first marker are dropped. When no line
// carries a marker the steps are numbered by position instead.
func ScanSteps(steps []string) map[int]string {
	out := make(map[int]string)
	current := 0
	marked := false
	for _, line := range steps {
		if m := stepMarker.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				current, marked = n, true
				out[n] = line
				continue
			}
		}
		if current > 0 {
			out[current] += "\n" + line
		}
	}
	if !marked {
		for i, line := range steps {
			if strings.TrimSpace(line) != "" {
				out[i+1] = line
			}
		}
	}
	return out
}
