package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/trigtutor/tutor/config"
)

const defaultKeyPrefix = "trigtutor:conv:"

// RedisStore persists conversations as JSON strings with a TTL, so several
// tutor instances can serve one session.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(cfg *config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, errors.New("redis session store requires an address")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg.KeyPrefix, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string { return s.prefix + sessionID }

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Conversation, bool, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load conversation %s: %w", sessionID, err)
	}
	var c Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false, fmt.Errorf("decode conversation %s: %w", sessionID, err)
	}
	return &c, true, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c *Conversation) error {
	cp := c.Clone()
	cp.UpdatedAt = time.Now()
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", sessionID, err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save conversation %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear conversation %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
