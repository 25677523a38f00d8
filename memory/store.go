package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/trigtutor/tutor/config"
)

var ErrUnknownStore = errors.New("unknown session store")

// Store keeps one Conversation per session. Implementations copy on the
// way in and out so sessions never share mutable state.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Conversation, bool, error)
	Save(ctx context.Context, sessionID string, c *Conversation) error
	Clear(ctx context.Context, sessionID string) error
}

// NewStore builds the backend selected by cfg.Store.
func NewStore(cfg config.SessionConfig) (Store, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Store {
	case "", "inmemory", "memory":
		return NewInMemoryStore(cfg.MaxSessions, ttl), nil
	case "redis":
		return NewRedisStore(cfg.Redis, ttl)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, cfg.Store)
	}
}

// InMemoryStore is a process-local Store for development and single-node
// deployments.
type InMemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*Conversation
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

// NewInMemoryStore keeps at most maxSessions conversations; the least
// recently updated are dropped first. ttl <= 0 disables expiry.
func NewInMemoryStore(maxSessions int, ttl time.Duration) *InMemoryStore {
	if maxSessions <= 0 {
		maxSessions = 10000
	}
	return &InMemoryStore{
		sessions:    make(map[string]*Conversation),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (s *InMemoryStore) Load(_ context.Context, sessionID string) (*Conversation, bool, error) {
	s.mu.RLock()
	c, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if s.expired(c) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, false, nil
	}
	return c.Clone(), true, nil
}

func (s *InMemoryStore) Save(_ context.Context, sessionID string, c *Conversation) error {
	cp := c.Clone()
	cp.UpdatedAt = s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = cp
	if len(s.sessions) > s.maxSessions {
		s.evict()
	}
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored conversations.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *InMemoryStore) expired(c *Conversation) bool {
	return s.ttl > 0 && s.now().Sub(c.UpdatedAt) > s.ttl
}

// evict drops expired conversations, then the oldest until under the cap.
// Callers hold the write lock.
func (s *InMemoryStore) evict() {
	type aged struct {
		id string
		at time.Time
	}
	list := make([]aged, 0, len(s.sessions))
	for id, c := range s.sessions {
		if s.expired(c) {
			delete(s.sessions, id)
			continue
		}
		list = append(list, aged{id, c.UpdatedAt})
	}
	if len(list) <= s.maxSessions {
		return
	}
	sort.Slice(list, func(i, j int) bool { return list[i].at.After(list[j].at) })
	for _, a := range list[s.maxSessions:] {
		delete(s.sessions, a.id)
	}
}
