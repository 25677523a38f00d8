package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/trigtutor/tutor/config"
)

const defaultOpenAIModel = "text-embedding-3-small"

// OpenAIEncoder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEncoder struct {
	client    openai.Client
	model     string
	dims      int
	truncator *Truncator
}

func NewOpenAI(cfg config.EmbeddingConfig) (*OpenAIEncoder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedding requires an api key")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTP != nil && cfg.HTTP.Retry > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.HTTP.Retry))
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIEncoder{
		client:    openai.NewClient(opts...),
		model:     model,
		dims:      cfg.Dimensions,
		truncator: NewTruncator(cfg.MaxTokens),
	}, nil
}

func (o *OpenAIEncoder) Dimensions() int { return o.dims }
func (o *OpenAIEncoder) Name() string    { return "openai/" + o.model }

func (o *OpenAIEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	vs, err := o.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (o *OpenAIEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	input := make([]string, len(texts))
	for i, t := range texts {
		if t == "" {
			return nil, fmt.Errorf("embedding text %d: %w", i, ErrEmptyInput)
		}
		input[i] = o.truncator.Truncate(t)
	}
	params := openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: input},
		Model:          openai.EmbeddingModel(o.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if o.dims > 0 {
		params.Dimensions = openai.Int(int64(o.dims))
	}
	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		out[d.Index] = v
	}
	return out, nil
}
