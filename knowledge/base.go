// Package knowledge holds the read-only question bank the retrieval index
// searches, together with its precomputed embeddings and threshold.
package knowledge

import (
	"github.com/trigtutor/tutor/common/logger"
	"github.com/trigtutor/tutor/intent"
)

// DefaultThreshold is used when no pairwise similarities can be sampled.
const DefaultThreshold = 0.7

// Base is an immutable knowledge base. It is safe to share between
// goroutines without locking.
type Base struct {
	entries   []Entry
	byID      map[string]int
	patterns  map[string][]int
	threshold float64
	encoder   string
	dims      int
}

// New indexes entries. Entries without tags are tagged from their question
// text; the threshold is learned from the embeddings when threshold <= 0.
func New(entries []Entry, threshold float64) *Base {
	b := &Base{
		entries:  entries,
		byID:     make(map[string]int, len(entries)),
		patterns: make(map[string][]int),
	}
	for i := range b.entries {
		e := &b.entries[i]
		if len(e.Tags) == 0 {
			e.Tags = intent.Classify(e.Question).Tags()
		}
		if _, dup := b.byID[e.ID]; dup {
			logger.Warnf("knowledge: duplicate entry id %q, lookups return the first", e.ID)
		} else {
			b.byID[e.ID] = i
		}
		for _, tag := range e.Tags {
			b.patterns[tag] = append(b.patterns[tag], i)
		}
		if b.dims == 0 {
			b.dims = len(e.Embedding)
		}
	}
	if threshold <= 0 {
		threshold = LearnThreshold(b.entries)
	}
	b.threshold = threshold
	return b
}

func (b *Base) Len() int { return len(b.entries) }

// Entry returns the i-th entry in load order.
func (b *Base) Entry(i int) *Entry { return &b.entries[i] }

// Entries returns every entry in load order. The slice must not be modified.
func (b *Base) Entries() []Entry { return b.entries }

func (b *Base) Lookup(id string) (*Entry, bool) {
	i, ok := b.byID[id]
	if !ok {
		return nil, false
	}
	return &b.entries[i], true
}

// Pattern returns the indexes of entries carrying tag, in load order.
func (b *Base) Pattern(tag string) []int { return b.patterns[tag] }

// PatternCount returns the number of distinct tags.
func (b *Base) PatternCount() int { return len(b.patterns) }

func (b *Base) Threshold() float64 { return b.threshold }

// Dimensions is the embedding length shared by all entries.
func (b *Base) Dimensions() int { return b.dims }

// Encoder names the encoder the embeddings were produced with, if known.
func (b *Base) Encoder() string { return b.encoder }
