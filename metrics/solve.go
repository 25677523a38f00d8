package metrics

import (
	"encoding/json"
	"time"

	"github.com/trigtutor/tutor/common/logger"
)

// SolveMetrics is the per-question record written as one JSON log line.
type SolveMetrics struct {
	QueryID   string    `json:"query_id"`
	SessionID string    `json:"session_id,omitempty"`
	Question  string    `json:"question"`
	Timestamp time.Time `json:"timestamp"`

	// Intent
	Intent    string   `json:"intent,omitempty"`
	Functions []string `json:"functions,omitempty"`

	// Template stage
	TemplateCategory   string  `json:"template_category,omitempty"`
	TemplateConfidence float64 `json:"template_confidence,omitempty"`
	TemplateCandidates int     `json:"template_candidates,omitempty"`

	// Retrieval stage
	RetrievalCandidates int     `json:"retrieval_candidates,omitempty"`
	TopScore            float64 `json:"top_score,omitempty"`
	MatchedEntry        string  `json:"matched_entry,omitempty"`

	Stages []string `json:"stages"`

	Method         string  `json:"method"`
	Source         string  `json:"source"`
	Confidence     float64 `json:"confidence"`
	HasGraph       bool    `json:"has_graph"`
	TotalLatencyMs int64   `json:"total_latency_ms"`
	ErrorMsg       string  `json:"error_msg,omitempty"`
}

// NewSolveMetrics starts a record for one question.
func NewSolveMetrics(queryID, sessionID, question string) *SolveMetrics {
	return &SolveMetrics{
		QueryID:   queryID,
		SessionID: sessionID,
		Question:  question,
		Timestamp: time.Now(),
		Stages:    make([]string, 0, 4),
	}
}

// AddStage appends a pipeline stage name.
func (m *SolveMetrics) AddStage(stage string) {
	m.Stages = append(m.Stages, stage)
}

// RecordTemplate stores the template selection.
func (m *SolveMetrics) RecordTemplate(category string, confidence float64, candidates int) {
	m.TemplateCategory = category
	m.TemplateConfidence = confidence
	m.TemplateCandidates = candidates
}

// RecordRetrieval stores the retrieval outcome.
func (m *SolveMetrics) RecordRetrieval(candidates int, top float64, entryID string) {
	m.RetrievalCandidates = candidates
	m.TopScore = top
	m.MatchedEntry = entryID
}

// Finish fills the outcome and latency.
func (m *SolveMetrics) Finish(method, source string, confidence float64, hasGraph bool) {
	m.Method = method
	m.Source = source
	m.Confidence = confidence
	m.HasGraph = hasGraph
	m.TotalLatencyMs = time.Since(m.Timestamp).Milliseconds()
}

// Log writes the record as JSON at info level.
func (m *SolveMetrics) Log() {
	if data, err := json.Marshal(m); err == nil {
		logger.Infof("[SOLVE_METRICS] %s", string(data))
	}
}
