package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
	"github.com/trigtutor/tutor/embedding"
	"github.com/trigtutor/tutor/knowledge"
	"github.com/trigtutor/tutor/memory"
	"github.com/trigtutor/tutor/retrieval"
	"github.com/trigtutor/tutor/templates"
)

func init() {
	logger.UseNop()
}

// spyTemplates counts calls and delegates to inner when set.
type spyTemplates struct {
	inner TemplateEngine
	calls int
}

func (s *spyTemplates) TryAnswer(ctx context.Context, q string) (*templates.Result, bool) {
	s.calls++
	if s.inner == nil {
		return nil, false
	}
	return s.inner.TryAnswer(ctx, q)
}

type fixedTemplate struct{ res *templates.Result }

func (f fixedTemplate) TryAnswer(context.Context, string) (*templates.Result, bool) {
	return f.res, true
}

type fakeRetriever struct {
	entry *knowledge.Entry
	score float64
	calls int
}

func (f *fakeRetriever) Best(ctx context.Context, _ string) (*knowledge.Entry, retrieval.Candidate, bool) {
	f.calls++
	if f.entry == nil || ctx.Err() != nil {
		return nil, retrieval.Candidate{}, false
	}
	return f.entry, retrieval.Candidate{EntryID: f.entry.ID, Score: f.score, Source: retrieval.SourceSemantic}, true
}

// gateTemplates answers every question, holding "slow" until release closes.
type gateTemplates struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gateTemplates) TryAnswer(_ context.Context, q string) (*templates.Result, bool) {
	if q == "slow" {
		g.entered <- struct{}{}
		<-g.release
	}
	return &templates.Result{FinalAnswer: q, Steps: []string{"Step 1: " + q}, Confidence: 0.9, Method: "template_gate"}, true
}

func newSpySolver(r *fakeRetriever) (*Solver, *spyTemplates) {
	spy := &spyTemplates{inner: templates.NewEngine(config.DefaultPipeline().Templates)}
	if r == nil {
		r = &fakeRetriever{}
	}
	return New(spy, r, memory.NewInMemoryStore(100, 0)), spy
}

const proof = "Prove sin²θ+cos²θ=1"

func TestFollowUpExplainsStoredStep(t *testing.T) {
	ctx := context.Background()
	r := &fakeRetriever{}
	s, spy := newSpySolver(r)

	first := s.Solve(ctx, proof, "s1")
	require.Equal(t, "template_trig_identities", first.Method)
	require.Len(t, first.SolutionSteps, 4)
	assert.Equal(t, 1, spy.calls)

	got := s.Solve(ctx, "explain step 2", "s1")
	assert.Equal(t, "Step 2: For any angle θ, point on unit circle is (cosθ, sinθ)", got.FinalAnswer)
	assert.Equal(t, MethodFollowUpStep, got.Method)
	assert.Equal(t, SourceMemory, got.Source)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, 1, spy.calls, "templates not consulted for a follow-up")
	assert.Equal(t, 0, r.calls, "retrieval not consulted for a follow-up")
}

func TestFollowUpUnknownStep(t *testing.T) {
	ctx := context.Background()
	s, _ := newSpySolver(nil)
	s.Solve(ctx, proof, "s1")

	got := s.Solve(ctx, "what is step 9?", "s1")
	assert.Equal(t, MethodFollowUpStep, got.Method)
	assert.Zero(t, got.Confidence)
	assert.Contains(t, got.FinalAnswer, "Step 9 is not available")
}

func TestFollowUpWalkthrough(t *testing.T) {
	ctx := context.Background()
	s, spy := newSpySolver(nil)
	first := s.Solve(ctx, proof, "s1")

	got := s.Solve(ctx, "I still don't understand", "s1")
	assert.Equal(t, MethodWalkthrough, got.Method)
	assert.Equal(t, first.FinalAnswer, got.FinalAnswer)
	require.Len(t, got.SolutionSteps, len(first.SolutionSteps)+2)
	assert.Equal(t, "Let's go through it again: "+proof, got.SolutionSteps[0])
	assert.Equal(t, first.SolutionSteps, got.SolutionSteps[1:len(got.SolutionSteps)-1])
	assert.Equal(t, 1, spy.calls)

	// the conversation survives follow-ups
	again := s.Solve(ctx, "explain step 4", "s1")
	assert.Equal(t, "Step 4: Therefore, cos²θ + sin²θ = 1", again.FinalAnswer)
}

func TestFollowUpNeedsActiveConversation(t *testing.T) {
	ctx := context.Background()
	s, _ := newSpySolver(nil)
	s.Solve(ctx, proof, "a")

	got := s.Solve(ctx, "explain step 2", "b")
	assert.Equal(t, MethodNoMatch, got.Method, "sessions do not share memory")
	assert.Zero(t, got.Confidence)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s, _ := newSpySolver(nil)
	s.Solve(ctx, proof, "s1")

	got := s.Solve(ctx, "Reset!", "s1")
	assert.Equal(t, MethodReset, got.Method)
	assert.NotEmpty(t, got.FinalAnswer)

	after := s.Solve(ctx, "explain step 2", "s1")
	assert.Equal(t, MethodNoMatch, after.Method)

	// reset without a conversation is still acknowledged
	assert.Equal(t, MethodReset, s.Solve(ctx, "start over", "fresh").Method)
}

func TestNewQuestionReplacesConversation(t *testing.T) {
	ctx := context.Background()
	s, _ := newSpySolver(nil)
	s.Solve(ctx, proof, "s1")
	s.Solve(ctx, "Solve sin x = 0.5", "s1")

	got := s.Solve(ctx, "explain step 3", "s1")
	assert.Equal(t, "Step 3: General solutions in degrees:\n   x = 30° + 360°k\n   x = 150° + 360°k", got.FinalAnswer)
	assert.Len(t, got.SolutionSteps, 3)
}

func TestNoMatch(t *testing.T) {
	s, _ := newSpySolver(nil)
	got := s.Solve(context.Background(), "What's the capital of France?", "")
	assert.Equal(t, MethodNoMatch, got.Method)
	assert.Equal(t, SourceNone, got.Source)
	assert.Zero(t, got.Confidence)
	assert.Equal(t, "I couldn't find a similar question in my knowledge base.", got.FinalAnswer)
	assert.False(t, got.HasGraph)
	_, err := uuid.Parse(got.SessionID)
	assert.NoError(t, err, "a session id is generated")
}

func TestEmptyQuestion(t *testing.T) {
	s, spy := newSpySolver(nil)
	got := s.Solve(context.Background(), "   ", "s1")
	assert.Equal(t, MethodEmpty, got.Method)
	assert.NotNil(t, got.SolutionSteps)
	assert.Zero(t, spy.calls)
}

func TestTemplateFloor(t *testing.T) {
	weak := &templates.Result{Category: templates.Applications, FinalAnswer: "weak", Steps: []string{"Step 1: x"}, Confidence: 0.3, Method: "template_applications"}
	r := &fakeRetriever{}
	s := New(fixedTemplate{weak}, r, nil)

	got := s.Solve(context.Background(), "anything", "")
	assert.Equal(t, MethodNoMatch, got.Method, "confidence must exceed the floor")
	assert.Equal(t, 1, r.calls)

	weak.Confidence = 0.31
	got = s.Solve(context.Background(), "anything", "")
	assert.Equal(t, "weak", got.FinalAnswer)
	assert.Equal(t, SourceTemplate, got.Source)
}

func TestTemplateGraph(t *testing.T) {
	s, _ := newSpySolver(nil)
	got := s.Solve(context.Background(), "Sketch the graph of y = 2sin(3x) for -π ≤ x ≤ π", "")
	assert.Equal(t, "template_graph_sketch", got.Method)
	require.True(t, got.HasGraph)
	assert.True(t, strings.HasPrefix(got.GraphImage, "data:image/png;base64,"))
	assert.NotNil(t, got.Graph)
}

func identityEntry() *knowledge.Entry {
	return &knowledge.Entry{
		ID:       "trig_identities_3",
		Question: "Prove that tan x + cot x = sec x csc x",
		Category: "trig_identities",
		SolutionSteps: []string{
			"Step 1: Write tan x + cot x = sin x/cos x + cos x/sin x",
			"Step 2: Combine: (sin²x + cos²x)/(sin x cos x)",
			"Step 3: Therefore tan x + cot x = 1/(sin x cos x) = sec x csc x",
		},
		AlternativeSteps: []string{
			"Step 1: Start from sec x csc x = 1/(cos x sin x)",
			"Final answer: sec x csc x = tan x + cot x",
		},
	}
}

func TestRetrievalApproach(t *testing.T) {
	tests := []struct {
		name     string
		question string
		label    string
		first    string
		answer   string
	}{
		{"standard", "Prove that tan x + cot x = sec x csc x", retrieval.LabelStandard, "Step 1: Write", "Step 3: Therefore tan x + cot x = 1/(sin x cos x) = sec x csc x"},
		{"lhs", "Prove tan x + cot x = sec x csc x from LHS", retrieval.LabelLHS, "Step 1: Write", "Step 3: Therefore tan x + cot x = 1/(sin x cos x) = sec x csc x"},
		{"rhs", "Prove tan x + cot x = sec x csc x from RHS", retrieval.LabelRHS, "Step 1: Start from", "sec x csc x = tan x + cot x"},
		{"alternative", "Show another method to prove tan x + cot x = sec x csc x", retrieval.LabelAlternative, "Step 1: Start from", "sec x csc x = tan x + cot x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRetriever{entry: identityEntry(), score: 0.82}
			s := New(&spyTemplates{}, r, nil)
			got := s.Solve(context.Background(), tt.question, "")
			assert.Equal(t, "retrieval_semantic", got.Method)
			assert.Equal(t, SourceDataset, got.Source)
			assert.InDelta(t, 0.82, got.Confidence, 1e-9)
			assert.Equal(t, tt.label, got.SolutionType)
			assert.True(t, strings.HasPrefix(got.SolutionSteps[0], tt.first), got.SolutionSteps[0])
			assert.Equal(t, tt.answer, got.FinalAnswer)
			assert.Equal(t, "trig_identities_3", got.QuestionID)
			assert.Equal(t, "Prove that tan x + cot x = sec x csc x", got.MatchedQuestion)
		})
	}
}

func TestRetrievalStoredFinalAnswerAndMissingSteps(t *testing.T) {
	e := &knowledge.Entry{ID: "e1", Question: "q", FinalAnswer: "x = 45°"}
	s := New(&spyTemplates{}, &fakeRetriever{entry: e, score: 0.9}, nil)
	got := s.Solve(context.Background(), "q", "s1")
	assert.Equal(t, "x = 45°", got.FinalAnswer)
	assert.Equal(t, []string{"Solution not available in dataset."}, got.SolutionSteps)

	// retrieved answers are remembered too
	follow := s.Solve(context.Background(), "explain step 1", "s1")
	assert.Equal(t, "Solution not available in dataset.", follow.FinalAnswer)
	assert.Equal(t, "e1", follow.QuestionID)
}

func TestRetrievalGraph(t *testing.T) {
	tests := []struct {
		name  string
		entry *knowledge.Entry
	}{
		{"stored equations", &knowledge.Entry{
			ID: "graph_sketching_1", Question: "Compare the graphs of sin x and cos x",
			SolutionSteps: []string{"Step 1: Both have period 360°"},
			FinalAnswer:   "They are a 90° shift apart",
			Plotting:      &knowledge.PlottingSpec{Equations: []string{"sin(x)", "cos(x)"}, Domain: []float64{0, 360}, XScale: "degrees"},
		}},
		{"curve from the question", &knowledge.Entry{
			ID: "graph_sketching_2", Question: "Sketch y = 3sin(2x) for 0 ≤ x ≤ 360",
			SolutionSteps: []string{"Step 1: Amplitude 3, period 180°"},
			Plotting:      &knowledge.PlottingSpec{NeedsGraph: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&spyTemplates{}, &fakeRetriever{entry: tt.entry, score: 0.75}, nil)
			got := s.Solve(context.Background(), "show me that graph", "")
			require.True(t, got.HasGraph)
			assert.Equal(t, "See graph below for the solution", got.FinalAnswer)
			assert.True(t, strings.HasPrefix(got.GraphImage, "data:image/png;base64,"))
		})
	}
}

func TestRetrievalGraphFailureDegrades(t *testing.T) {
	e := &knowledge.Entry{
		ID: "g", Question: "Describe this graph", SolutionSteps: []string{"Answer: it rises"},
		Plotting: &knowledge.PlottingSpec{Equations: []string{"banana"}},
	}
	s := New(&spyTemplates{}, &fakeRetriever{entry: e, score: 0.75}, nil)
	got := s.Solve(context.Background(), "describe", "")
	assert.False(t, got.HasGraph)
	assert.Equal(t, "it rises", got.FinalAnswer)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := newSpySolver(&fakeRetriever{entry: identityEntry(), score: 0.9})
	got := s.Solve(ctx, "Solve sin x = 0.5", "")
	assert.Equal(t, MethodTimeout, got.Method)
	assert.Zero(t, got.Confidence)
}

func TestSolverReset(t *testing.T) {
	ctx := context.Background()
	s, _ := newSpySolver(nil)
	s.Solve(ctx, proof, "s1")
	require.NoError(t, s.Reset(ctx, "s1"))
	assert.Equal(t, MethodNoMatch, s.Solve(ctx, "explain step 1", "s1").Method)
}

func TestNewFromConfigWithKnowledgeBase(t *testing.T) {
	ctx := context.Background()
	enc := embedding.NewHashing(128)
	entries := []knowledge.Entry{
		{ID: "graph_sketching_1", Question: "Why does the tangent graph have vertical asymptotes?", Category: "graph_sketching",
			SolutionSteps: []string{"Step 1: tan x = sin x / cos x", "Step 2: cos x = 0 at x = 90° + 180°k", "Step 3: Therefore the graph has asymptotes there"},
			Plotting:      &knowledge.PlottingSpec{Equations: []string{"tan(x)"}, Domain: []float64{-180, 180}, XScale: "degrees"}},
		{ID: "solve_equations_1", Question: "Find all angles where cosine equals sine between 0 and 360", Category: "solve_equations",
			SolutionSteps: []string{"Step 1: Divide by cos x: tan x = 1", "Final answer: x = 45°, 225°"}},
	}
	require.NoError(t, knowledge.Embed(ctx, enc, entries, 2))
	holder := knowledge.NewHolder(knowledge.New(entries, 0.7))

	cfg := config.Default()
	cfg.Pipeline.Retrieval.SimilarityThreshold = 0.9
	s, err := NewFromConfig(cfg, holder, enc)
	require.NoError(t, err)

	got := s.Solve(ctx, "Why does the tangent graph have vertical asymptotes?", "")
	assert.Equal(t, "graph_sketching_1", got.QuestionID)
	assert.InDelta(t, 1.0, got.Confidence, 1e-4)
	assert.True(t, got.HasGraph)

	got = s.Solve(ctx, "Find all angles where cosine equals sine between 0 and 360", "")
	assert.Equal(t, "solve_equations_1", got.QuestionID)
	assert.Equal(t, "x = 45°, 225°", got.FinalAnswer)

	got = s.Solve(ctx, "hello there", "")
	assert.Equal(t, MethodNoMatch, got.Method)

	got = s.Solve(ctx, "Solve cos x = -0.5", "")
	assert.Equal(t, "template_solve_equations", got.Method)
}

func TestNewFromConfigBadStore(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.Session.Store = "etcd"
	_, err := NewFromConfig(cfg, nil, nil)
	assert.ErrorIs(t, err, memory.ErrUnknownStore)
}

func TestSessionsDoNotBlockEachOther(t *testing.T) {
	gate := &gateTemplates{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(gate, nil, nil)
	ctx := context.Background()

	slow := make(chan AnswerResponse, 1)
	go func() { slow <- s.Solve(ctx, "slow", "a") }()
	<-gate.entered

	for i := 0; i < 100; i++ {
		got := s.Solve(ctx, "fast", fmt.Sprintf("b%d", i))
		require.Equal(t, "fast", got.FinalAnswer)
	}

	same := make(chan AnswerResponse, 1)
	go func() { same <- s.Solve(ctx, "fast", "a") }()
	select {
	case <-same:
		t.Fatal("a second call in session a ran while the first was still in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	assert.Equal(t, "slow", (<-slow).FinalAnswer)
	assert.Equal(t, "fast", (<-same).FinalAnswer)
	assert.Eventually(t, func() bool { return s.sessions.len() == 0 }, time.Second, 10*time.Millisecond)
}
