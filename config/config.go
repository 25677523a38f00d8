package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvEmbeddingAPIKey overrides Embedding.APIKey so secrets stay out of files.
const EnvEmbeddingAPIKey = "TRIGTUTOR_EMBEDDING_API_KEY"

// Config represents the main configuration structure for the tutor service
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Knowledge KnowledgeConfig `json:"knowledge" yaml:"knowledge"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	// Pipeline holds answer pipeline tuning. Missing sections fall back to Default().
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr              string `json:"addr" yaml:"addr"`
	SolveTimeoutMs    int    `json:"solve_timeout_ms,omitempty" yaml:"solve_timeout_ms,omitempty"`
	ReadTimeoutMs     int    `json:"read_timeout_ms,omitempty" yaml:"read_timeout_ms,omitempty"`
	ShutdownTimeoutMs int    `json:"shutdown_timeout_ms,omitempty" yaml:"shutdown_timeout_ms,omitempty"`
}

// KnowledgeConfig points at the knowledge base artifact.
type KnowledgeConfig struct {
	Path string `json:"path" yaml:"path"`
	// EmbedMissing lets the loader encode entries that carry no precomputed vector.
	EmbedMissing bool `json:"embed_missing,omitempty" yaml:"embed_missing,omitempty"`
	// Watch reloads the knowledge base when the file changes.
	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty"`
	// EmbedConcurrency bounds parallel encoder calls while indexing.
	EmbedConcurrency int `json:"embed_concurrency,omitempty" yaml:"embed_concurrency,omitempty"`
}

// EmbeddingConfig defines configuration for the question encoder
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: hashing, openai, http
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	// MaxTokens truncates encoder input; 0 disables truncation.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// Cache holds encoded questions in an LRU.
	Cache *CacheLayerConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// HTTP tunes outbound calls for the http provider.
	HTTP *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
}

// CacheLayerConfig controls an in-process LRU cache.
type CacheLayerConfig struct {
	Enable     bool `json:"enable,omitempty" yaml:"enable,omitempty"`
	MaxEntries int  `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	TTLSeconds int  `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// HTTPClientConfig defines common options for outbound HTTP calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// LogConfig configures the zap backend.
type LogConfig struct {
	Level       string `json:"level,omitempty" yaml:"level,omitempty"`
	Development bool   `json:"development,omitempty" yaml:"development,omitempty"`
}

// MetricsConfig toggles the Prometheus endpoint and JSON query log lines.
type MetricsConfig struct {
	Enable   bool   `json:"enable,omitempty" yaml:"enable,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	QueryLog bool   `json:"query_log,omitempty" yaml:"query_log,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			SolveTimeoutMs:    10000,
			ReadTimeoutMs:     15000,
			ShutdownTimeoutMs: 5000,
		},
		Knowledge: KnowledgeConfig{
			Path:             "testdata/knowledge.json",
			EmbedMissing:     true,
			EmbedConcurrency: 4,
		},
		Embedding: EmbeddingConfig{
			Provider:   "hashing",
			Dimensions: 4096,
			MaxTokens:  8191,
			Cache: &CacheLayerConfig{
				Enable:     true,
				MaxEntries: 1024,
				TTLSeconds: 600,
			},
		},
		Log:      LogConfig{Level: "info"},
		Metrics:  MetricsConfig{Enable: true, Path: "/metrics"},
		Pipeline: DefaultPipeline(),
	}
}

// Load reads a YAML file over the defaults and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if key := os.Getenv(EnvEmbeddingAPIKey); key != "" {
		cfg.Embedding.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
