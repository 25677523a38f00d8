package orchestrator

import "github.com/trigtutor/tutor/graph"

// Source values reported in AnswerResponse.
const (
	SourceTemplate = "template"
	SourceDataset  = "dataset"
	SourceMemory   = "memory"
	SourceNone     = "none"
)

// Method tags not produced by the template or retrieval stages.
const (
	MethodFollowUpStep = "followup_step"
	MethodWalkthrough  = "followup_walkthrough"
	MethodReset        = "reset"
	MethodNoMatch      = "no_match"
	MethodEmpty        = "empty_question"
	MethodTimeout      = "timeout"
)

const (
	noMatchAnswer   = "I couldn't find a similar question in my knowledge base."
	noMatchHint     = "Try rephrasing the question, or ask about exact values, solving equations, graphs, function properties, identities or right-triangle problems."
	resetAnswer     = "Conversation cleared. Ask a new question whenever you're ready."
	emptyAnswer     = "Please ask a trigonometry question."
	timeoutAnswer   = "The question took too long to answer. Please try again."
	graphAnswer     = "See graph below for the solution"
	noStepsFallback = "Solution not available in dataset."
)

// AnswerResponse is what Solve returns for every question, including the
// degraded no-match and follow-up cases.
type AnswerResponse struct {
	SessionID     string   `json:"session_id"`
	FinalAnswer   string   `json:"final_answer"`
	SolutionSteps []string `json:"solution_steps"`
	Confidence    float64  `json:"confidence"`
	Method        string   `json:"method"`
	Source        string   `json:"source"`
	HasGraph      bool     `json:"has_graph"`
	// GraphImage is a data URI of the rendered PNG.
	GraphImage      string `json:"graph_image,omitempty"`
	MatchedQuestion string `json:"matched_question,omitempty"`
	Category        string `json:"category,omitempty"`
	QuestionID      string `json:"question_id,omitempty"`
	SolutionType    string `json:"solution_type,omitempty"`

	Graph *graph.Rendering `json:"-"`
}

func (r *AnswerResponse) attachGraph(g *graph.Rendering) {
	if g == nil || len(g.PNG) == 0 {
		return
	}
	r.Graph = g
	r.HasGraph = true
	r.GraphImage = g.DataURI()
}
