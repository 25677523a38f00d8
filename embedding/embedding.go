// Package embedding turns questions into vectors for the semantic index.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/trigtutor/tutor/cache"
	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
)

var (
	ErrUnknownProvider = errors.New("unknown embedding provider")
	ErrEmptyInput      = errors.New("empty input")
)

// Encoder maps text to a fixed-length vector. Implementations must be safe
// for concurrent use.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	EncodeBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// Name identifies the provider and model, e.g. "openai/text-embedding-3-small".
	Name() string
}

// New builds the encoder selected by cfg, wrapped in an LRU when enabled.
func New(cfg config.EmbeddingConfig) (Encoder, error) {
	var (
		enc Encoder
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", "hashing":
		enc = NewHashing(cfg.Dimensions)
	case "openai":
		enc, err = NewOpenAI(cfg)
	case "http", "ollama":
		enc, err = NewHTTP(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if c := cfg.Cache; c != nil && c.Enable {
		enc = NewCached(enc, c.MaxEntries, time.Duration(c.TTLSeconds)*time.Second)
	}
	logger.Infof("embedding: using encoder %s (%d dims)", enc.Name(), enc.Dimensions())
	return enc, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when the lengths
// differ or either vector is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize scales v to unit length in place. Zero vectors are left alone.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	n := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= n
	}
	return v
}

// encodeEach is the fallback batch implementation for single-text APIs.
func encodeEach(ctx context.Context, enc Encoder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := enc.Encode(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// CachedEncoder memoizes another encoder by exact input text. Returned
// vectors are shared and must not be modified.
type CachedEncoder struct {
	inner Encoder
	lru   cache.Cache[string, []float32]
	ttl   time.Duration
}

func NewCached(inner Encoder, maxEntries int, ttl time.Duration) *CachedEncoder {
	return &CachedEncoder{inner: inner, lru: cache.NewLRU[string, []float32](maxEntries, ttl), ttl: ttl}
}

func (c *CachedEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.lru.Get(text); ok {
		return v, nil
	}
	v, err := c.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	c.lru.Set(text, v, c.ttl)
	return v, nil
}

func (c *CachedEncoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var idx []int
	for i, t := range texts {
		if v, ok := c.lru.Get(t); ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		idx = append(idx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	vs, err := c.inner.EncodeBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, v := range vs {
		out[idx[j]] = v
		c.lru.Set(missing[j], v, c.ttl)
	}
	return out, nil
}

func (c *CachedEncoder) Dimensions() int { return c.inner.Dimensions() }
func (c *CachedEncoder) Name() string    { return c.inner.Name() }
