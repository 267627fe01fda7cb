package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/krishi360/krishi/pkg/cache"
)

// RedisStore keeps sessions in Redis through the shared cache client.
type RedisStore struct {
	c *cache.Client
}

func NewRedisStore(c *cache.Client) *RedisStore {
	return &RedisStore{c: c}
}

func sessionKey(id string) string { return "session:" + id }

func (s *RedisStore) Load(ctx context.Context, id string) (Data, error) {
	data := Data{}
	err := s.c.Get(ctx, sessionKey(id), &data)
	if errors.Is(err, cache.ErrMiss) {
		return Data{}, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, data Data, ttl time.Duration) error {
	return s.c.Set(ctx, sessionKey(id), data, ttl)
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.c.Del(ctx, sessionKey(id))
}

type memEntry struct {
	data    Data
	expires time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped lazily
// on Load.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memEntry{}, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, id string) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Data{}, nil
	}
	if s.now().After(e.expires) {
		delete(s.entries, id)
		return Data{}, nil
	}
	return copyData(e.data), nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data Data, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memEntry{data: copyData(data), expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func copyData(in Data) Data {
	out := make(Data, len(in))
	for k, v := range in {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
