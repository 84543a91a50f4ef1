// File: services/assistant/store.go
package assistant

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ruach/models"

	"github.com/go-redis/redis/v8"
)

const historyKeyPrefix = "assist:hist:"

// RedisHistoryStore keeps per-instance conversation records in Redis as a
// JSON array, capped at the history limit at write time.
type RedisHistoryStore struct {
	client *redis.Client
	ttl    time.Duration
	limit  int
}

func NewRedisHistoryStore(client *redis.Client, ttl time.Duration, limit int) *RedisHistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &RedisHistoryStore{client: client, ttl: ttl, limit: limit}
}

func (s *RedisHistoryStore) Load(ctx context.Context, key string) ([]models.Message, error) {
	data, err := s.client.Get(ctx, historyKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var msgs []models.Message
	if err := json.Unmarshal([]byte(data), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *RedisHistoryStore) Save(ctx context.Context, key string, msgs []models.Message) error {
	if len(msgs) > s.limit {
		msgs = msgs[len(msgs)-s.limit:]
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, historyKeyPrefix+key, b, s.ttl).Err()
}

func (s *RedisHistoryStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, historyKeyPrefix+key).Err()
}

// MemoryHistoryStore is the in-process store used by embedded (hostless)
// deployments and tests.
type MemoryHistoryStore struct {
	mu      sync.Mutex
	records map[string][]models.Message
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{records: make(map[string][]models.Message)}
}

func (s *MemoryHistoryStore) Load(ctx context.Context, key string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.records[key]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemoryHistoryStore) Save(ctx context.Context, key string, msgs []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]models.Message, len(msgs))
	copy(cp, msgs)
	s.records[key] = cp
	return nil
}

func (s *MemoryHistoryStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
