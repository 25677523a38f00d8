// Package orchestrator decides how a question is answered: conversation
// follow-ups first, then the template engine, then knowledge-base retrieval,
// and a no-match reply when nothing fits.
package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/equation"
	"github.com/trigtutor/tutor/graph"
	"github.com/trigtutor/tutor/intent"
	"github.com/trigtutor/tutor/knowledge"
	"github.com/trigtutor/tutor/memory"
	"github.com/trigtutor/tutor/metrics"
	"github.com/trigtutor/tutor/retrieval"
	"github.com/trigtutor/tutor/templates"
)

// TemplateEngine answers recognizable question shapes directly.
type TemplateEngine interface {
	TryAnswer(ctx context.Context, question string) (*templates.Result, bool)
}

// Retriever finds the closest knowledge-base entry.
type Retriever interface {
	Best(ctx context.Context, question string) (*knowledge.Entry, retrieval.Candidate, bool)
}

const defaultTemplateFloor = 0.3

// Solver is the single entry point for answering questions. It is safe for
// concurrent use; calls for the same session are serialized.
type Solver struct {
	templates  TemplateEngine
	retriever  Retriever
	store      memory.Store
	renderer   *graph.Renderer
	classifier *intent.Classifier
	floor      float64
	unit       equation.AngularUnit
	queryLog   bool

	sessions *sessionLocks
}

type Option func(*Solver)

func WithRenderer(r *graph.Renderer) Option {
	return func(s *Solver) { s.renderer = r }
}

// WithTemplateFloor sets the confidence a template answer must exceed.
func WithTemplateFloor(f float64) Option {
	return func(s *Solver) {
		if f > 0 {
			s.floor = f
		}
	}
}

func WithClassifier(c *intent.Classifier) Option {
	return func(s *Solver) { s.classifier = c }
}

// WithDefaultUnit sets the unit for graphs recovered from question text.
func WithDefaultUnit(u equation.AngularUnit) Option {
	return func(s *Solver) { s.unit = u }
}

// WithQueryLog writes one SolveMetrics JSON line per question.
func WithQueryLog(on bool) Option {
	return func(s *Solver) { s.queryLog = on }
}

// New builds a Solver. A nil retriever disables the dataset fallback and a
// nil store keeps conversations in process memory.
func New(tpl TemplateEngine, r Retriever, store memory.Store, opts ...Option) *Solver {
	s := &Solver{
		templates:  tpl,
		retriever:  r,
		store:      store,
		renderer:   graph.New(graph.Options{}),
		classifier: intent.New(intent.DefaultKeywords),
		floor:      defaultTemplateFloor,
		unit:       equation.Radians,
		sessions:   newSessionLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memory.NewInMemoryStore(0, 0)
	}
	return s
}

// Solve answers question within sessionID, creating a session when the id is
// empty. It never fails: errors degrade into a response with confidence 0.
func (s *Solver) Solve(ctx context.Context, question, sessionID string) AnswerResponse {
	question = strings.TrimSpace(question)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	release := s.sessions.acquire(sessionID)
	defer release()

	m := metrics.NewSolveMetrics(uuid.NewString(), sessionID, question)
	in := s.classifier.Classify(question)
	m.Intent, m.Functions = string(in.Type), in.Functions

	resp := s.solve(ctx, question, sessionID, m)
	resp.SessionID = sessionID
	if resp.SolutionSteps == nil {
		resp.SolutionSteps = []string{}
	}

	m.Finish(resp.Method, resp.Source, resp.Confidence, resp.HasGraph)
	metrics.ObserveSolve(resp.Method, resp.Source, m.Timestamp)
	if s.queryLog {
		m.Log()
	}
	return resp
}

// Reset forgets the conversation of sessionID.
func (s *Solver) Reset(ctx context.Context, sessionID string) error {
	release := s.sessions.acquire(sessionID)
	defer release()
	return s.store.Clear(ctx, sessionID)
}

// Renderer exposes the graph renderer shared with callers that draw
// equations directly.
func (s *Solver) Renderer() *graph.Renderer { return s.renderer }

func (s *Solver) solve(ctx context.Context, question, sessionID string, m *metrics.SolveMetrics) AnswerResponse {
	if question == "" {
		m.AddStage("empty")
		return AnswerResponse{FinalAnswer: emptyAnswer, Method: MethodEmpty, Source: SourceNone}
	}

	conv, active, err := s.store.Load(ctx, sessionID)
	if err != nil {
		logger.Warnf("orchestrator: load conversation %s: %v", sessionID, err)
		active = false
	}
	if active {
		if n, ok := StepReference(question); ok {
			m.AddStage("followup_step")
			return explainStep(conv, n)
		}
		if IsFollowUp(question) {
			m.AddStage("followup")
			return walkthrough(conv)
		}
	}
	if IsReset(question) {
		m.AddStage("reset")
		if err := s.store.Clear(ctx, sessionID); err != nil {
			logger.Warnf("orchestrator: clear conversation %s: %v", sessionID, err)
		}
		return AnswerResponse{FinalAnswer: resetAnswer, Confidence: 1, Method: MethodReset, Source: SourceMemory}
	}

	m.AddStage("template")
	if resp, ok := s.fromTemplate(ctx, question, m); ok {
		s.remember(ctx, sessionID, question, resp)
		return resp
	}

	if s.retriever != nil {
		m.AddStage("retrieval")
		if resp, ok := s.fromRetrieval(ctx, question, m); ok {
			s.remember(ctx, sessionID, question, resp)
			return resp
		}
	}

	if ctx.Err() != nil {
		m.ErrorMsg = ctx.Err().Error()
		return AnswerResponse{FinalAnswer: timeoutAnswer, Method: MethodTimeout, Source: SourceNone}
	}
	m.AddStage("no_match")
	return AnswerResponse{
		FinalAnswer:   noMatchAnswer,
		SolutionSteps: []string{noMatchHint},
		Method:        MethodNoMatch,
		Source:        SourceNone,
	}
}

func (s *Solver) fromTemplate(ctx context.Context, question string, m *metrics.SolveMetrics) (AnswerResponse, bool) {
	if s.templates == nil {
		return AnswerResponse{}, false
	}
	res, ok := s.templates.TryAnswer(ctx, question)
	if !ok || res.Confidence <= s.floor {
		return AnswerResponse{}, false
	}
	m.RecordTemplate(string(res.Category), res.Confidence, res.Candidates)
	metrics.ObserveTemplate(string(res.Category), res.Confidence)

	resp := AnswerResponse{
		FinalAnswer:   res.FinalAnswer,
		SolutionSteps: res.Steps,
		Confidence:    res.Confidence,
		Method:        res.Method,
		Source:        SourceTemplate,
		Category:      string(res.Category),
	}
	if res.HasGraph {
		resp.attachGraph(res.Graph)
	}
	return resp, true
}

func (s *Solver) fromRetrieval(ctx context.Context, question string, m *metrics.SolveMetrics) (AnswerResponse, bool) {
	entry, cand, ok := s.retriever.Best(ctx, question)
	if !ok {
		return AnswerResponse{}, false
	}
	m.RecordRetrieval(1, cand.Score, entry.ID)

	steps, label := retrieval.SelectSolution(entry, s.classifier.DetectApproach(question))
	if len(steps) == 0 {
		steps = []string{noStepsFallback}
	}
	resp := AnswerResponse{
		SolutionSteps:   append([]string(nil), steps...),
		Confidence:      cand.Score,
		Method:          cand.Method(),
		Source:          SourceDataset,
		MatchedQuestion: entry.Question,
		Category:        entry.Category,
		QuestionID:      entry.ID,
		SolutionType:    label,
	}
	if entry.WantsGraph() {
		resp.attachGraph(s.entryGraph(entry, question))
	}
	switch {
	case resp.HasGraph:
		resp.FinalAnswer = graphAnswer
	case entry.FinalAnswer != "":
		resp.FinalAnswer = entry.FinalAnswer
	default:
		resp.FinalAnswer = retrieval.ExtractFinalAnswer(steps)
	}
	logger.Debugf("orchestrator: %q matched %s (%.3f via %s)", question, entry.ID, cand.Score, cand.Source)
	return resp, true
}

var curvePattern = regexp.MustCompile(`(?i)\by\s*=\s*([^,;?]+?)(?:\s+(?:for|from|over|on|in|where|between|and)\b|[,;?]|$)`)

// entryGraph draws the entry's stored equations, or the y = ... curve named
// in the question (then the entry's own question) when it stores none.
// Rendering failures are logged and yield no graph.
func (s *Solver) entryGraph(entry *knowledge.Entry, question string) *graph.Rendering {
	p := entry.Plotting
	if len(p.Equations) > 0 {
		g, err := s.renderer.RenderSpec(p.GraphSpec(entry.Question))
		if err != nil {
			logger.Warnf("orchestrator: no graph for %s: %v", entry.ID, err)
			return nil
		}
		return g
	}
	for _, text := range []string{question, entry.Question} {
		mt := curvePattern.FindStringSubmatch(text)
		if mt == nil {
			continue
		}
		expr, err := equation.Parse(mt[1])
		if err != nil {
			continue
		}
		var domain *graph.Domain
		unit := s.unit
		if d, u, ok := graph.ParseDomain(text, s.unit); ok {
			domain, unit = &d, u
		}
		g, err := s.renderer.Render(expr, domain, unit)
		if err != nil {
			logger.Warnf("orchestrator: no graph for %s: %v", entry.ID, err)
			return nil
		}
		return g
	}
	return nil
}

func (s *Solver) remember(ctx context.Context, sessionID, question string, resp AnswerResponse) {
	conv := memory.NewConversation(question, resp.SolutionSteps, resp.FinalAnswer, resp.QuestionID, resp.Method)
	if err := s.store.Save(ctx, sessionID, conv); err != nil {
		logger.Warnf("orchestrator: save conversation %s: %v", sessionID, err)
	}
}

func explainStep(conv *memory.Conversation, n int) AnswerResponse {
	text, ok := conv.Explain(n)
	if !ok {
		return AnswerResponse{
			FinalAnswer: fmt.Sprintf("Step %d is not available in the last solution (it has %d steps).",
				n, len(conv.StepExplanations)),
			SolutionSteps: []string{},
			Method:        MethodFollowUpStep,
			Source:        SourceMemory,
			QuestionID:    conv.LastEntryID,
		}
	}
	return AnswerResponse{
		FinalAnswer:   text,
		SolutionSteps: strings.Split(text, "\n"),
		Confidence:    1,
		Method:        MethodFollowUpStep,
		Source:        SourceMemory,
		QuestionID:    conv.LastEntryID,
	}
}

func walkthrough(conv *memory.Conversation) AnswerResponse {
	steps := make([]string, 0, len(conv.LastSolutionSteps)+2)
	steps = append(steps, "Let's go through it again: "+conv.LastQuestion)
	steps = append(steps, conv.LastSolutionSteps...)
	answer := conv.LastFinalAnswer
	if answer != "" {
		steps = append(steps, "So the answer is: "+answer)
	} else {
		answer = "Here is the full solution again"
	}
	return AnswerResponse{
		FinalAnswer:   answer,
		SolutionSteps: steps,
		Confidence:    1,
		Method:        MethodWalkthrough,
		Source:        SourceMemory,
		QuestionID:    conv.LastEntryID,
	}
}
