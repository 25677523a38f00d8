// Package retrieval matches a question against the knowledge base by
// embedding similarity and by shared intent tags.
package retrieval

import (
	"context"
	"sort"

	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/config"
	"github.com/trigtutor/tutor/embedding"
	"github.com/trigtutor/tutor/intent"
	"github.com/trigtutor/tutor/knowledge"
	"github.com/trigtutor/tutor/metrics"
)

type Source string

const (
	SourceSemantic Source = "semantic"
	SourcePattern  Source = "pattern"
)

const defaultPatternSlack = 0.1

// Candidate is one ranked match. Index is the entry's position in the base
// the search ran against.
type Candidate struct {
	EntryID string  `json:"entry_id"`
	Index   int     `json:"-"`
	Score   float64 `json:"score"`
	Source  Source  `json:"source"`
	// Tag is the intent tag that admitted a pattern candidate.
	Tag string `json:"tag,omitempty"`
}

// Method is the answer method tag reported for this candidate.
func (c Candidate) Method() string {
	if c.Source == SourcePattern {
		return "retrieval_pattern_" + c.Tag
	}
	return "retrieval_semantic"
}

// Index searches the knowledge base currently published by a Holder.
type Index struct {
	holder     *knowledge.Holder
	encoder    embedding.Encoder
	classifier *intent.Classifier
	threshold  float64
	slack      float64
	max        int
}

type Option func(*Index)

// WithClassifier replaces the default intent vocabulary.
func WithClassifier(c *intent.Classifier) Option {
	return func(ix *Index) { ix.classifier = c }
}

func NewIndex(holder *knowledge.Holder, enc embedding.Encoder, cfg config.RetrievalConfig, opts ...Option) *Index {
	ix := &Index{
		holder:     holder,
		encoder:    enc,
		classifier: intent.New(intent.DefaultKeywords),
		threshold:  cfg.SimilarityThreshold,
		slack:      cfg.PatternSlack,
		max:        cfg.MaxCandidates,
	}
	if ix.slack <= 0 {
		ix.slack = defaultPatternSlack
	}
	for _, o := range opts {
		o(ix)
	}
	return ix
}

// Base returns the knowledge base searches currently run against.
func (ix *Index) Base() *knowledge.Base { return ix.holder.Load() }

// Threshold is the configured override or the knowledge base's own value.
func (ix *Index) Threshold(b *knowledge.Base) float64 {
	if ix.threshold > 0 {
		return ix.threshold
	}
	return b.Threshold()
}

// Search ranks entries by cosine similarity to question. Semantic
// candidates need the threshold; entries sharing an intent tag with the
// question are admitted down to threshold minus the pattern slack. Each
// entry appears once, at its first admission, and the result is sorted by
// score with ties kept in admission order. Encoder failures are logged and
// yield no candidates; the only error is a cancelled context.
func (ix *Index) Search(ctx context.Context, question string) ([]Candidate, error) {
	return ix.search(ctx, ix.holder.Load(), question)
}

func (ix *Index) search(ctx context.Context, b *knowledge.Base, question string) ([]Candidate, error) {
	if b == nil || b.Len() == 0 {
		return nil, nil
	}
	vec, err := ix.encoder.Encode(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warnf("retrieval: encoding %q failed: %v", question, err)
		return nil, nil
	}

	threshold := ix.Threshold(b)
	scores := make([]float64, b.Len())
	var out []Candidate
	for i, e := range b.Entries() {
		scores[i] = clamp01(embedding.Cosine(vec, e.Embedding))
		if scores[i] >= threshold {
			out = append(out, Candidate{EntryID: e.ID, Index: i, Score: scores[i], Source: SourceSemantic})
		}
	}
	for _, tag := range ix.classifier.Classify(question).Tags() {
		for _, i := range b.Pattern(tag) {
			if scores[i] >= threshold-ix.slack {
				out = append(out, Candidate{EntryID: b.Entry(i).ID, Index: i, Score: scores[i], Source: SourcePattern, Tag: tag})
			}
		}
	}

	out = dedupe(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if ix.max > 0 && len(out) > ix.max {
		out = out[:ix.max]
	}

	top := 0.0
	if len(out) > 0 {
		top = out[0].Score
	}
	metrics.ObserveRetrieval(len(out), top)
	logger.Debugf("retrieval: %d candidates for %q (threshold %.3f, top %.3f)", len(out), question, threshold, top)
	return out, nil
}

// Best returns the top candidate and its entry.
func (ix *Index) Best(ctx context.Context, question string) (*knowledge.Entry, Candidate, bool) {
	b := ix.holder.Load()
	cands, err := ix.search(ctx, b, question)
	if err != nil || len(cands) == 0 {
		return nil, Candidate{}, false
	}
	return b.Entry(cands[0].Index), cands[0], true
}

func dedupe(cands []Candidate) []Candidate {
	seen := make(map[int]bool, len(cands))
	out := cands[:0]
	for _, c := range cands {
		if seen[c.Index] {
			continue
		}
		seen[c.Index] = true
		out = append(out, c)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
