package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order_tracker/internal/redis"
)

const DefaultClientID = "default"

// LastInputStore is satisfied by the Redis client and by redis.MemoryStore.
type LastInputStore interface {
	SaveLastInput(ctx context.Context, clientID, code string, ttl time.Duration) error
	LoadLastInput(ctx context.Context, clientID string) (*redis.LastInput, error)
	DeleteLastInput(ctx context.Context, clientID string) error
}

type LastInputService interface {
	Save(ctx context.Context, clientID, code string) error
	Load(ctx context.Context, clientID string) (string, error)
	Clear(ctx context.Context, clientID string) error
}

type lastInputService struct {
	store LastInputStore
	ttl   time.Duration
}

func NewLastInputService(store LastInputStore, ttl time.Duration) LastInputService {
	return &lastInputService{store: store, ttl: ttl}
}

// Save remembers the trimmed code for clientID. An empty code is stored too,
// so clearing the field clears the restored value.
func (s *lastInputService) Save(ctx context.Context, clientID, code string) error {
	if err := s.store.SaveLastInput(ctx, clientKey(clientID), strings.TrimSpace(code), s.ttl); err != nil {
		return fmt.Errorf("failed to save last input: %w", err)
	}
	return nil
}

// Load returns the remembered code, or "" when nothing is stored.
func (s *lastInputService) Load(ctx context.Context, clientID string) (string, error) {
	input, err := s.store.LoadLastInput(ctx, clientKey(clientID))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load last input: %w", err)
	}
	return input.Code, nil
}

func (s *lastInputService) Clear(ctx context.Context, clientID string) error {
	if err := s.store.DeleteLastInput(ctx, clientKey(clientID)); err != nil {
		return fmt.Errorf("failed to clear last input: %w", err)
	}
	return nil
}

func clientKey(clientID string) string {
	if id := strings.TrimSpace(clientID); id != "" {
		return id
	}
	return DefaultClientID
}
