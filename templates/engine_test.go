package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
)

func init() {
	logger.UseNop()
}

func newTestEngine() *Engine {
	return NewEngine(config.DefaultPipeline().Templates)
}

func TestTryAnswer(t *testing.T) {
	tests := []struct {
		name     string
		question string
		category Category
		answer   string
	}{
		{"exact value", "What is the exact value of cos(45 degrees)?", ExactValues, "cos(45°) = √2/2"},
		{"exact value degree sign", "Find sin 30° without using a calculator", ExactValues, "sin(30°) = 1/2"},
		{"negative sin", "Find the exact value of sin(-30°)", ExactValues, "sin(-30°) = -1/2"},
		{"negative cos", "Find the exact value of cos(-120°)", ExactValues, "cos(-120°) = -1/2"},
		{"negative tan", "What is tan -45 degrees", ExactValues, "tan(-45°) = -1"},
		{"negative non-standard", "Find the exact value of sin(-37°)", ExactValues, "sin(-37°) has no standard exact value: -37° is not a standard angle"},
		{"solve sin", "Solve sin x = 0.5", SolveEquations, "Solutions: 30°, 150°"},
		{"solve negative cos", "Solve cos x = -0.5", SolveEquations, "Solutions: 120°, 240°"},
		{"solve tan", "Solve tan x = 1 for x", SolveEquations, "Solutions: 45°, 225°"},
		{"solve with coefficient", "Solve 2sin x = 1", SolveEquations, "Solutions: 30°, 150°"},
		{"solve surd", "Solve sin x = √3/2", SolveEquations, "Solutions: 60°, 120°"},
		{"solve impossible", "Solve sin x = 2", SolveEquations, "No solution: sin(x) only takes values between -1 and 1"},
		{"amplitude", "Find the amplitude of y = 4cos(2x) + 1", FunctionProperties, "The amplitude is 4"},
		{"period", "What is the period of y = cos(4x)?", FunctionProperties, "The period is 1.57 radians (90°)"},
		{"range", "Find the range of y = 3sin(x) - 2", FunctionProperties, "The range is [-5.00, 1.00]"},
		{"pythagorean proof", "Prove that sin²θ + cos²θ = 1", TrigIdentities, "Proof completed for sin²θ + cos²θ = 1"},
		{"double angle proof", "Prove cos(2θ) = cos²θ - sin²θ", TrigIdentities, "Proof completed for cos(2θ) = cos²θ - sin²θ"},
		{"caret notation", "Verify that 1 + tan^2 x = sec^2 x", TrigIdentities, "Proof completed for 1 + tan²θ = sec²θ"},
		{"ladder", "A ladder leans against a wall at 60 degrees, find the height", Applications, "For a ladder of length L: height = L × 0.866"},
		{"ladder with length", "A 5 m ladder leans against a wall at 60 degrees, find the height", Applications, "height = 4.33"},
		{"elevation", "The angle of elevation is 30 degrees, find the height", Applications, "tan(30°) = 0.577. Provide either height or distance for complete solution."},
		{"triangle", "In a right triangle one angle is 30 degrees, find the side opposite it", Applications, "Need at least one side length to find the side"},
		{"graph", "Sketch the graph of y = 2sin(3x) for -π ≤ x ≤ π", GraphSketch, "Graph of y = 2sin(3x) generated successfully"},
	}
	e := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := e.TryAnswer(context.Background(), tt.question)
			require.True(t, ok, "expected a template answer")
			assert.Equal(t, tt.category, res.Category)
			assert.Equal(t, tt.answer, res.FinalAnswer)
			assert.Equal(t, "template_"+string(tt.category), res.Method)
			assert.Greater(t, res.Confidence, 0.5)
			assert.NotEmpty(t, res.Steps)
		})
	}
}

func TestTryAnswerSolveSteps(t *testing.T) {
	res, ok := newTestEngine().TryAnswer(context.Background(), "Solve sin x = 0.5")
	require.True(t, ok)
	assert.Equal(t, []string{
		"Step 1: Solve sin(x) = 0.5",
		"Step 2: Reference angle: 30°",
		"Step 3: General solutions in degrees:",
		"   x = 30° + 360°k",
		"   x = 150° + 360°k",
	}, res.Steps)
}

func TestTryAnswerGraphCarriesImage(t *testing.T) {
	res, ok := newTestEngine().TryAnswer(context.Background(), "Sketch the graph of y = 2sin(3x) for -π ≤ x ≤ π")
	require.True(t, ok)
	require.True(t, res.HasGraph)
	require.NotNil(t, res.Graph)
	assert.NotEmpty(t, res.Graph.PNG)
	assert.Equal(t, "Step 1: Identify the function: y = 2sin(3x)", res.Steps[0])
	assert.Contains(t, res.Steps, "Step 3: Domain: -3.1416 ≤ x ≤ 3.1416 (radians)")
}

func TestTryAnswerWithoutRendering(t *testing.T) {
	cfg := config.DefaultPipeline().Templates
	off := false
	cfg.RenderGraphs = &off
	res, ok := NewEngine(cfg).TryAnswer(context.Background(), "sketch the graph of y = cos x")
	require.True(t, ok)
	assert.False(t, res.HasGraph)
	assert.Nil(t, res.Graph)
}

func TestTryAnswerNoMatch(t *testing.T) {
	e := newTestEngine()
	for _, q := range []string{"hello", "What is a radian?", "prove the identity"} {
		t.Run(q, func(t *testing.T) {
			_, ok := e.TryAnswer(context.Background(), q)
			assert.False(t, ok)
		})
	}
}

func TestFailedHandlerIsSkipped(t *testing.T) {
	e := newTestEngine()
	q := "show that tan x = sin x / cos x"
	cands := e.Match(q)
	require.NotEmpty(t, cands)
	assert.Equal(t, TrigIdentities, cands[0].Category)

	_, ok := e.TryAnswer(context.Background(), q)
	assert.False(t, ok, "no identity in the library matches, so nothing answers")
}

func TestMatchTieBreaksByRegistryOrder(t *testing.T) {
	e := newTestEngine()
	cands := e.Match("find the exact value of sin 30 degrees then sketch y = sin x")
	require.GreaterOrEqual(t, len(cands), 2)
	assert.Equal(t, GraphSketch, cands[0].Category)
	assert.Equal(t, ExactValues, cands[1].Category)
	assert.InDelta(t, cands[0].Confidence, cands[1].Confidence, 1e-9)
}

func TestConfidence(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		question string
		category Category
		want     float64
	}{
		{"what is cos of forty five", ExactValues, 0.7},
		{"sketch sinx", GraphSketch, 0.7},
		{"sketch y = sinx", GraphSketch, 0.8},
		{"sketch the graph and plot it then draw it", GraphSketch, 0.95},
		{"hi", Applications, 0.6},
		{"prove verify identity show that", TrigIdentities, 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.Confidence(Preprocess(tt.question), tt.category), 1e-9)
		})
	}
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := newTestEngine().TryAnswer(ctx, "Solve sin x = 0.5")
	assert.False(t, ok)
}

func TestPreprocess(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Find   the exact value of sin 30°", "find exact value of sin 30 degrees"},
		{"Sketch the graph of y = sin θ", "sketch graph of y = sin theta"},
		{"cos^2 x, ½π", "cos² x, 1/2pi"},
		{"What is the value WITHOUT using calculator", "what is value without calculator"},
		{"Find θ when sin θ = 0.5", "find theta when sin theta = 0.5"},
		{"What is θ if tan θ = 1", "what is theta if tan theta = 1"},
		{"In a right angled triangle", "in a right angled triangle"},
		{"Find the value of f of x = sin x", "find value of f(x)= sin x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Preprocess(tt.in))
		})
	}
}
