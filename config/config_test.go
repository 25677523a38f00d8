package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trigtutor.yaml")
	body := `
knowledge:
  path: data/kb.json
embedding:
  provider: hashing
  dimensions: 128
pipeline:
  retrieval:
    similarity_threshold: 0.65
  session:
    store: redis
    redis:
      addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv(EnvEmbeddingAPIKey, "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/kb.json", cfg.Knowledge.Path)
	assert.Equal(t, 128, cfg.Embedding.Dimensions)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.InDelta(t, 0.65, cfg.Pipeline.Retrieval.SimilarityThreshold, 1e-9)
	// untouched sections keep their defaults
	assert.Equal(t, 400, cfg.Pipeline.Graph.Samples)
	assert.InDelta(t, 0.7, cfg.Pipeline.Templates.BaseConfidence, 1e-9)
	require.NotNil(t, cfg.Embedding.Cache)
	assert.True(t, cfg.Embedding.Cache.Enable)
}

func TestValidateCollectsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{
			name:   "unknown provider",
			mutate: func(c *Config) { c.Embedding.Provider = "word2vec" },
			fields: []string{"embedding.provider"},
		},
		{
			name: "openai without model",
			mutate: func(c *Config) {
				c.Embedding.Provider = "openai"
				c.Embedding.Model = ""
			},
			fields: []string{"embedding.model"},
		},
		{
			name: "too few samples and bad unit",
			mutate: func(c *Config) {
				c.Pipeline.Graph.Samples = 100
				c.Pipeline.Graph.DefaultUnit = "gradians"
			},
			fields: []string{"pipeline.graph.samples", "pipeline.graph.default_unit"},
		},
		{
			name: "redis without address",
			mutate: func(c *Config) {
				c.Pipeline.Session.Store = "redis"
			},
			fields: []string{"pipeline.session.redis.addr"},
		},
		{
			name:   "threshold out of range",
			mutate: func(c *Config) { c.Pipeline.Retrieval.SimilarityThreshold = 1.5 },
			fields: []string{"pipeline.retrieval.similarity_threshold"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			got := make([]string, 0, len(verrs))
			for _, v := range verrs {
				got = append(got, v.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "hashing", cfg.Embedding.Provider)
	assert.True(t, cfg.Knowledge.Watch)
	assert.Equal(t, DefaultPipeline().Templates, cfg.Pipeline.Templates)
	assert.Equal(t, "inmemory", cfg.Pipeline.Session.Store)
}
