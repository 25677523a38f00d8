package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/trigtutor/tutor/common/httpx"
	"github.com/trigtutor/tutor/config"
)

const (
	defaultHTTPBaseURL = "http://localhost:11434"
	defaultHTTPModel   = "nomic-embed-text"
)

// HTTPEncoder talks to an Ollama-style /api/embeddings endpoint.
type HTTPEncoder struct {
	client    *httpx.Client
	endpoint  string
	model     string
	apiKey    string
	dims      int
	truncator *Truncator
}

type httpEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type httpEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func NewHTTP(cfg config.EmbeddingConfig) (*HTTPEncoder, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultHTTPBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultHTTPModel
	}
	return &HTTPEncoder{
		client:    httpx.NewFromConfig(cfg.HTTP),
		endpoint:  strings.TrimRight(base, "/") + "/api/embeddings",
		model:     model,
		apiKey:    cfg.APIKey,
		dims:      cfg.Dimensions,
		truncator: NewTruncator(cfg.MaxTokens),
	}, nil
}

func (h *HTTPEncoder) Dimensions() int { return h.dims }
func (h *HTTPEncoder) Name() string    { return "http/" + h.model }

func (h *HTTPEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	var headers map[string]string
	if h.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + h.apiKey}
	}
	var resp httpEmbedResponse
	req := httpEmbedRequest{Model: h.model, Prompt: h.truncator.Truncate(text)}
	if err := h.client.PostJSON(ctx, h.endpoint, headers, req, &resp); err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embedding request: empty vector from %s", h.endpoint)
	}
	if h.dims > 0 && len(resp.Embedding) != h.dims {
		return nil, fmt.Errorf("embedding request: got %d dims, want %d", len(resp.Embedding), h.dims)
	}
	return resp.Embedding, nil
}

func (h *HTTPEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return encodeEach(ctx, h, texts)
}
