package redis

import (
	"context"
	"time"

	"order_tracker/internal/cache"
)

// MemoryStore keeps last inputs in-process when no Redis URL is configured.
type MemoryStore struct {
	items *cache.TTLCache[string, LastInput]
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		items: cache.NewTTLCache[string, LastInput](time.Minute),
		now:   time.Now,
	}
	m.items.SetClock(func() time.Time { return m.now() })
	return m
}

func (m *MemoryStore) SaveLastInput(_ context.Context, clientID, code string, ttl time.Duration) error {
	m.items.Set(clientID, LastInput{Code: code, UpdatedAt: m.now().UTC()}, ttl)
	return nil
}

func (m *MemoryStore) LoadLastInput(_ context.Context, clientID string) (*LastInput, error) {
	input, ok := m.items.Get(clientID)
	if !ok {
		return nil, ErrNotFound
	}
	return &input, nil
}

func (m *MemoryStore) DeleteLastInput(_ context.Context, clientID string) error {
	m.items.Delete(clientID)
	return nil
}
