package embedding

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/trigtutor/tutor/common/logger"
)

// Truncator cuts encoder input to a token budget using the cl100k_base
// encoding shared by the OpenAI embedding models.
type Truncator struct {
	max int

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// NewTruncator returns a truncator for max tokens; max <= 0 disables it.
func NewTruncator(max int) *Truncator {
	return &Truncator{max: max}
}

func (t *Truncator) encoding() *tiktoken.Tiktoken {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("embedding: tiktoken unavailable, input will not be truncated: %v", err)
			return
		}
		t.enc = enc
	})
	return t.enc
}

// Truncate returns text cut to the token budget.
func (t *Truncator) Truncate(text string) string {
	if t == nil || t.max <= 0 || len(text) <= t.max {
		// a token is at least one byte, so short input always fits
		return text
	}
	enc := t.encoding()
	if enc == nil {
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= t.max {
		return text
	}
	logger.Debugf("embedding: truncating input from %d to %d tokens", len(tokens), t.max)
	return enc.Decode(tokens[:t.max])
}
