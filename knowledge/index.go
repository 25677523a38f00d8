package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/embedding"
)

const embedBatchSize = 16

// Embed fills in the vectors of entries that have none, encoding question
// text in batches with at most concurrency requests in flight.
func Embed(ctx context.Context, enc embedding.Encoder, entries []Entry, concurrency int) error {
	var pending []int
	for i := range entries {
		if len(entries[i].Embedding) == 0 {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	logger.Infof("knowledge: embedding %d questions with %s", len(pending), enc.Name())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for start := 0; start < len(pending); start += embedBatchSize {
		batch := pending[start:min(start+embedBatchSize, len(pending))]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for k, i := range batch {
				texts[k] = entries[i].Question
			}
			vs, err := enc.EncodeBatch(ctx, texts)
			if err != nil {
				return fmt.Errorf("embed %s: %w", entries[batch[0]].ID, err)
			}
			if len(vs) != len(batch) {
				return fmt.Errorf("embed %s: got %d vectors for %d questions", entries[batch[0]].ID, len(vs), len(batch))
			}
			for k, i := range batch {
				entries[i].Embedding = vs[k]
			}
			return nil
		})
	}
	return g.Wait()
}

// Artifact is the on-disk form written by build-index.
type Artifact struct {
	Version             int         `json:"version"`
	SimilarityThreshold float64     `json:"similarity_threshold"`
	Encoder             EncoderInfo `json:"encoder"`
	Entries             []Entry     `json:"entries"`
}

type EncoderInfo struct {
	Provider   string `json:"provider"`
	Dimensions int    `json:"dimensions"`
}

// Artifact snapshots b for serialization.
func (b *Base) Artifact() Artifact {
	return Artifact{
		Version:             ArtifactVersion,
		SimilarityThreshold: b.threshold,
		Encoder:             EncoderInfo{Provider: b.encoder, Dimensions: b.dims},
		Entries:             b.entries,
	}
}

// WriteArtifact serializes b so that Parse reads it back unchanged.
func WriteArtifact(w io.Writer, b *Base) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b.Artifact()); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
