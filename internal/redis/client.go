package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("key not found")

type Client struct {
	rdb    *redis.Client
	prefix string
}

// LastInput is the code a visitor typed most recently.
type LastInput struct {
	Code      string    `json:"code"`
	UpdatedAt time.Time `json:"updated_at"`
}

func Initialize(redisURL, prefix string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, prefix: prefix}, nil
}

func (c *Client) key(clientID string) string {
	return c.prefix + ":" + clientID
}

// SaveLastInput stores the last entered code for a visitor.
func (c *Client) SaveLastInput(ctx context.Context, clientID, code string, ttl time.Duration) error {
	jsonData, err := json.Marshal(LastInput{Code: code, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal last input: %w", err)
	}
	return c.rdb.Set(ctx, c.key(clientID), jsonData, ttl).Err()
}

// LoadLastInput returns the stored code, or ErrNotFound.
func (c *Client) LoadLastInput(ctx context.Context, clientID string) (*LastInput, error) {
	val, err := c.rdb.Get(ctx, c.key(clientID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get last input: %w", err)
	}

	var input LastInput
	if err := json.Unmarshal([]byte(val), &input); err != nil {
		return nil, fmt.Errorf("failed to unmarshal last input: %w", err)
	}
	return &input, nil
}

func (c *Client) DeleteLastInput(ctx context.Context, clientID string) error {
	return c.rdb.Del(ctx, c.key(clientID)).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
