package knowledge

import (
	"go.uber.org/atomic"

	"github.com/trigtutor/tutor/metrics"
)

// Holder publishes the current Base. Readers always see a complete base;
// a reload swaps it atomically.
type Holder struct {
	base atomic.Pointer[Base]
}

func NewHolder(b *Base) *Holder {
	h := &Holder{}
	h.Store(b)
	return h
}

func (h *Holder) Load() *Base { return h.base.Load() }

func (h *Holder) Store(b *Base) {
	h.base.Store(b)
	if b != nil {
		metrics.SetKnowledgeEntries(b.Len())
	}
}
