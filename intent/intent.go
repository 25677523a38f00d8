// Package intent maps free-form questions to a coarse question type and the
// trigonometric functions they mention.
package intent

import (
	"strings"
	"unicode"

	"github.com/trigtutor/tutor/common/logger"
)

// Type is the coarse category of a question.
type Type string

const (
	Unknown     Type = "unknown"
	Proof       Type = "proof"
	Solve       Type = "solve"
	Graph       Type = "graph"
	ExactValue  Type = "exact_value"
	Properties  Type = "properties"
	Application Type = "application"
)

// Approach is the solution route a student asked for.
type Approach string

const (
	Standard    Approach = "standard"
	LHS         Approach = "lhs"
	RHS         Approach = "rhs"
	Alternative Approach = "alternative"
)

// Intent is the classification of one question.
type Intent struct {
	// Type is the refined category; Base is the proof/solve/graph decision it
	// was refined from.
	Type       Type     `json:"type"`
	Base       Type     `json:"base"`
	Functions  []string `json:"functions,omitempty"`
	NeedsGraph bool     `json:"needs_graph"`
	Reason     string   `json:"reason,omitempty"`
}

// Tags returns the retrieval pattern tags: type_<base>, func_<name> and
// needs_visualization.
func (i Intent) Tags() []string {
	tags := make([]string, 0, len(i.Functions)+2)
	if i.Base != Unknown && i.Base != "" {
		tags = append(tags, "type_"+string(i.Base))
	}
	for _, fn := range i.Functions {
		tags = append(tags, "func_"+fn)
	}
	if i.NeedsGraph {
		tags = append(tags, "needs_visualization")
	}
	return tags
}

// Classifier applies a KeywordSet.
type Classifier struct {
	kw KeywordSet
}

// New returns a classifier for kw.
func New(kw KeywordSet) *Classifier {
	return &Classifier{kw: kw}
}

// Version reports the vocabulary version in use.
func (c *Classifier) Version() string {
	return c.kw.Version
}

var defaultClassifier = New(DefaultKeywords)

// Classify uses DefaultKeywords.
func Classify(question string) Intent {
	return defaultClassifier.Classify(question)
}

// Classify picks the first base type whose keywords appear, in the order
// proof, solve, graph. A question mentioning both "prove" and "solve" is a
// proof. Function names are scanned independently of the type.
func (c *Classifier) Classify(question string) Intent {
	q := strings.ToLower(question)
	in := Intent{Type: Unknown, Base: Unknown}

	switch {
	case containsAny(q, c.kw.Proof):
		in.Base = Proof
		in.Reason = "proof vocabulary"
	case containsAny(q, c.kw.Solve):
		in.Base = Solve
		in.Reason = "solve vocabulary"
	case containsAny(q, c.kw.Graph):
		in.Base = Graph
		in.Reason = "graph vocabulary"
	}
	in.Type = in.Base

	if in.Base == Solve {
		switch {
		case containsAny(q, c.kw.ExactValue):
			in.Type = ExactValue
			in.Reason = "exact value vocabulary"
		case containsAny(q, c.kw.Properties):
			in.Type = Properties
			in.Reason = "function property vocabulary"
		case containsAny(q, c.kw.Application):
			in.Type = Application
			in.Reason = "applied geometry vocabulary"
		}
	}

	for _, fn := range c.kw.Functions {
		if mentionsFunction(q, fn) {
			in.Functions = append(in.Functions, fn)
		}
	}
	in.NeedsGraph = in.Base == Graph || containsAny(q, c.kw.Visualization)

	logger.Debugf("intent: %q -> type=%s base=%s funcs=%v graph=%v (%s)",
		question, in.Type, in.Base, in.Functions, in.NeedsGraph, in.Reason)
	return in
}

// DetectApproach reads an LHS, RHS or alternative-method request.
func DetectApproach(question string) Approach {
	return defaultClassifier.DetectApproach(question)
}

// DetectApproach reads an LHS, RHS or alternative-method request.
func (c *Classifier) DetectApproach(question string) Approach {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, c.kw.LHS):
		return LHS
	case containsAny(q, c.kw.RHS):
		return RHS
	case containsAny(q, c.kw.Alternative):
		return Alternative
	}
	return Standard
}

// ContainsAny reports whether text contains any of the phrases.
func ContainsAny(text string, phrases []string) bool {
	return containsAny(strings.ToLower(text), phrases)
}

func containsAny(q string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

// mentionsFunction matches fn when it is not the tail of another word, so
// "using" does not count as sin but "2sinx" and "cosine" do.
func mentionsFunction(q, fn string) bool {
	for from := 0; ; {
		i := strings.Index(q[from:], fn)
		if i < 0 {
			return false
		}
		at := from + i
		if at == 0 {
			return true
		}
		prev := rune(q[at-1])
		if prev >= 0x80 || !unicode.IsLetter(prev) {
			return true
		}
		from = at + len(fn)
	}
}
