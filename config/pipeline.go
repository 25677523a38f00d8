package config

// PipelineConfig defines the answer pipeline tuning.
// Zero values are replaced by DefaultPipeline when the file omits a field.
type PipelineConfig struct {
	Templates TemplateConfig  `json:"templates" yaml:"templates"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Graph     GraphConfig     `json:"graph" yaml:"graph"`
	Session   SessionConfig   `json:"session" yaml:"session"`
	// TemplateFloor is the minimum template confidence the orchestrator accepts.
	TemplateFloor float64 `json:"template_floor,omitempty" yaml:"template_floor,omitempty"`
}

// TemplateConfig holds the confidence scoring constants of the template engine.
type TemplateConfig struct {
	BaseConfidence  float64 `json:"base_confidence,omitempty" yaml:"base_confidence,omitempty"`
	BoosterStep     float64 `json:"booster_step,omitempty" yaml:"booster_step,omitempty"`
	ShortPenalty    float64 `json:"short_penalty,omitempty" yaml:"short_penalty,omitempty"`
	ShortTokenCount int     `json:"short_token_count,omitempty" yaml:"short_token_count,omitempty"`
	MinConfidence   float64 `json:"min_confidence,omitempty" yaml:"min_confidence,omitempty"`
	MaxConfidence   float64 `json:"max_confidence,omitempty" yaml:"max_confidence,omitempty"`
	SelectionFloor  float64 `json:"selection_floor,omitempty" yaml:"selection_floor,omitempty"`
	InvocationFloor float64 `json:"invocation_floor,omitempty" yaml:"invocation_floor,omitempty"`
	RenderGraphs    *bool   `json:"render_graphs,omitempty" yaml:"render_graphs,omitempty"`
}

// RetrievalConfig controls the semantic index.
type RetrievalConfig struct {
	// SimilarityThreshold overrides the threshold stored in the knowledge artifact.
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty" yaml:"similarity_threshold,omitempty"`
	PatternSlack        float64 `json:"pattern_slack,omitempty" yaml:"pattern_slack,omitempty"`
	MaxCandidates       int     `json:"max_candidates,omitempty" yaml:"max_candidates,omitempty"`
}

// GraphConfig controls rendering.
type GraphConfig struct {
	Samples     int     `json:"samples,omitempty" yaml:"samples,omitempty"`
	TanClip     float64 `json:"tan_clip,omitempty" yaml:"tan_clip,omitempty"`
	WidthPt     float64 `json:"width_pt,omitempty" yaml:"width_pt,omitempty"`
	HeightPt    float64 `json:"height_pt,omitempty" yaml:"height_pt,omitempty"`
	DefaultUnit string  `json:"default_unit,omitempty" yaml:"default_unit,omitempty"` // degrees, radians
}

// SessionConfig selects the conversation memory backend.
type SessionConfig struct {
	Store       string       `json:"store,omitempty" yaml:"store,omitempty"` // inmemory, redis
	TTLSeconds  int          `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	MaxSessions int          `json:"max_sessions,omitempty" yaml:"max_sessions,omitempty"`
	Redis       *RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// RedisConfig is used when Session.Store is "redis".
type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	DB        int    `json:"db,omitempty" yaml:"db,omitempty"`
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
}

// DefaultPipeline returns the tuning the tutor ships with.
func DefaultPipeline() PipelineConfig {
	render := true
	return PipelineConfig{
		Templates: TemplateConfig{
			BaseConfidence:  0.7,
			BoosterStep:     0.1,
			ShortPenalty:    0.1,
			ShortTokenCount: 4,
			MinConfidence:   0.3,
			MaxConfidence:   0.95,
			SelectionFloor:  0.5,
			InvocationFloor: 0.3,
			RenderGraphs:    &render,
		},
		Retrieval: RetrievalConfig{
			PatternSlack: 0.1,
		},
		Graph: GraphConfig{
			Samples:     400,
			TanClip:     10,
			WidthPt:     720,
			HeightPt:    360,
			DefaultUnit: "radians",
		},
		Session: SessionConfig{
			Store:       "inmemory",
			TTLSeconds:  3600,
			MaxSessions: 10000,
		},
		TemplateFloor: 0.3,
	}
}
