package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. [%s] %s\n", i+1, err.Field, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateKnowledge()...)
	errs = append(errs, c.validateEmbedding()...)
	errs = append(errs, c.validateTemplates()...)
	errs = append(errs, c.validateRetrieval()...)
	errs = append(errs, c.validateGraph()...)
	errs = append(errs, c.validateSession()...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateKnowledge() ValidationErrors {
	var errs ValidationErrors
	if c.Knowledge.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "knowledge.path",
			Message: "knowledge base path is required",
		})
	}
	if c.Knowledge.EmbedConcurrency < 0 {
		errs = append(errs, ValidationError{
			Field:   "knowledge.embed_concurrency",
			Message: fmt.Sprintf("embed concurrency must be non-negative, got %d", c.Knowledge.EmbedConcurrency),
		})
	}
	return errs
}

// validateEmbedding validates encoder configuration
func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	switch strings.ToLower(c.Embedding.Provider) {
	case "hashing":
		if c.Embedding.Dimensions <= 0 {
			errs = append(errs, ValidationError{
				Field:   "embedding.dimensions",
				Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
			})
		}
	case "openai":
		if c.Embedding.Model == "" {
			errs = append(errs, ValidationError{
				Field:   "embedding.model",
				Message: "embedding model is required for openai provider",
			})
		}
	case "http":
		if c.Embedding.BaseURL == "" {
			errs = append(errs, ValidationError{
				Field:   "embedding.base_url",
				Message: "embedding base_url is required for http provider",
			})
		}
	case "":
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	default:
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: fmt.Sprintf("unknown embedding provider %q (expected hashing, openai or http)", c.Embedding.Provider),
		})
	}
	if c.Embedding.MaxTokens < 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.max_tokens",
			Message: fmt.Sprintf("max_tokens must be non-negative, got %d", c.Embedding.MaxTokens),
		})
	}
	return errs
}

func (c *Config) validateTemplates() ValidationErrors {
	var errs ValidationErrors
	t := c.Pipeline.Templates
	if t.MinConfidence > t.MaxConfidence {
		errs = append(errs, ValidationError{
			Field:   "pipeline.templates",
			Message: fmt.Sprintf("min_confidence %.2f exceeds max_confidence %.2f", t.MinConfidence, t.MaxConfidence),
		})
	}
	floors := []struct {
		field string
		v     float64
	}{
		{"pipeline.templates.selection_floor", t.SelectionFloor},
		{"pipeline.templates.invocation_floor", t.InvocationFloor},
		{"pipeline.template_floor", c.Pipeline.TemplateFloor},
	}
	for _, f := range floors {
		if f.v < 0 || f.v > 1 {
			errs = append(errs, ValidationError{
				Field:   f.field,
				Message: fmt.Sprintf("%s must be in [0, 1], got %.2f", f.field, f.v),
			})
		}
	}
	return errs
}

func (c *Config) validateRetrieval() ValidationErrors {
	var errs ValidationErrors
	r := c.Pipeline.Retrieval
	if r.SimilarityThreshold < 0 || r.SimilarityThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.retrieval.similarity_threshold",
			Message: fmt.Sprintf("similarity threshold must be in [0, 1], got %.2f", r.SimilarityThreshold),
		})
	}
	if r.PatternSlack < 0 || r.PatternSlack > 1 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.retrieval.pattern_slack",
			Message: fmt.Sprintf("pattern slack must be in [0, 1], got %.2f", r.PatternSlack),
		})
	}
	if r.MaxCandidates < 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.retrieval.max_candidates",
			Message: fmt.Sprintf("max candidates must be non-negative, got %d", r.MaxCandidates),
		})
	}
	return errs
}

func (c *Config) validateGraph() ValidationErrors {
	var errs ValidationErrors
	g := c.Pipeline.Graph
	if g.Samples < 300 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.graph.samples",
			Message: fmt.Sprintf("graph samples must be at least 300, got %d", g.Samples),
		})
	}
	if g.TanClip <= 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.graph.tan_clip",
			Message: fmt.Sprintf("tan clip must be positive, got %.2f", g.TanClip),
		})
	}
	switch g.DefaultUnit {
	case "degrees", "radians":
	default:
		errs = append(errs, ValidationError{
			Field:   "pipeline.graph.default_unit",
			Message: fmt.Sprintf("default unit must be degrees or radians, got %q", g.DefaultUnit),
		})
	}
	return errs
}

func (c *Config) validateSession() ValidationErrors {
	var errs ValidationErrors
	s := c.Pipeline.Session
	switch s.Store {
	case "", "inmemory", "memory":
	case "redis":
		if s.Redis == nil || s.Redis.Addr == "" {
			errs = append(errs, ValidationError{
				Field:   "pipeline.session.redis.addr",
				Message: "redis address is required for redis session store",
			})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "pipeline.session.store",
			Message: fmt.Sprintf("unknown session store %q (expected inmemory or redis)", s.Store),
		})
	}
	if s.TTLSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.session.ttl_seconds",
			Message: fmt.Sprintf("session ttl must be non-negative, got %d", s.TTLSeconds),
		})
	}
	return errs
}
