package intent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     Intent
	}{
		{
			name:     "proof wins over solve",
			question: "Prove and solve sin²θ + cos²θ = 1",
			want:     Intent{Type: Proof, Base: Proof, Functions: []string{"sin", "cos"}},
		},
		{
			name:     "exact value refinement",
			question: "Find the exact value of tan 60 degrees",
			want:     Intent{Type: ExactValue, Base: Solve, Functions: []string{"tan"}},
		},
		{
			name:     "properties refinement",
			question: "Find the amplitude of y = 3cos(2x)",
			want:     Intent{Type: Properties, Base: Solve, Functions: []string{"cos"}},
		},
		{
			name:     "application refinement",
			question: "A ladder makes 60 degrees with the ground, find the height",
			want:     Intent{Type: Application, Base: Solve},
		},
		{
			name:     "graph",
			question: "Sketch the graph of y = 2sinx",
			want:     Intent{Type: Graph, Base: Graph, Functions: []string{"sin"}, NeedsGraph: true},
		},
		{
			name:     "solve with visualization word",
			question: "Solve sin x = 0.5 and draw the curve",
			want:     Intent{Type: Solve, Base: Solve, Functions: []string{"sin"}, NeedsGraph: true},
		},
		{
			name:     "no sin inside using",
			question: "using a calculator is fine",
			want:     Intent{Type: Unknown, Base: Unknown},
		},
		{
			name:     "reciprocal functions",
			question: "What is sec x in terms of cos x and cot x?",
			want:     Intent{Type: Unknown, Base: Unknown, Functions: []string{"cos", "sec", "cot"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.question)
			got.Reason = ""
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.question, diff)
			}
		})
	}
}

func TestTags(t *testing.T) {
	in := Classify("Sketch the graph of y = tan x")
	assert.Equal(t, []string{"type_graph", "func_tan", "needs_visualization"}, in.Tags())

	assert.Empty(t, Classify("hello there").Tags())
}

func TestDetectApproach(t *testing.T) {
	tests := []struct {
		question string
		want     Approach
	}{
		{"Prove it from LHS", LHS},
		{"start with RHS please", RHS},
		{"show me an alternative method", Alternative},
		{"prove the identity", Standard},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectApproach(tt.question))
		})
	}
}

func TestCustomKeywordSet(t *testing.T) {
	kw := DefaultKeywords
	kw.Version = "test"
	kw.Graph = []string{"visualise"}
	kw.Visualization = nil
	c := New(kw)
	assert.Equal(t, "test", c.Version())
	got := c.Classify("visualise cos x")
	assert.Equal(t, Graph, got.Type)
	assert.True(t, got.NeedsGraph)
}
