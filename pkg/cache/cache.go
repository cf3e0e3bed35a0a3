package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service stores small serialized blobs. Values are opaque strings; callers
// own the encoding.
type Service interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Close() error
}

// GetTyped retrieves a key and JSON-decodes it.
func GetTyped[T any](ctx context.Context, c Service, key string) (T, error) {
	var obj T
	raw, err := c.Get(ctx, key)
	if err != nil {
		return obj, err
	}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return obj, err
	}
	return obj, nil
}

// SetTyped JSON-encodes a value and stores it.
func SetTyped[T any](ctx context.Context, c Service, key string, value T, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(raw), expiration)
}
