package cache

import (
	"context"
	"errors"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

var ErrNotFound = errors.New("cache entry not found")

// Store persists scan results by key. Get and IncrementHitCount return
// ErrNotFound for unknown keys; expiry is judged by the caller from
// CacheEntry.ExpiresAt.
type Store interface {
	Get(ctx context.Context, key string) (*models.CacheEntry, error)
	Put(ctx context.Context, entry models.CacheEntry) error
	IncrementHitCount(ctx context.Context, key string) error
	Close() error
}

type NoOpStore struct{}

func NewNoOpStore() *NoOpStore {
	return &NoOpStore{}
}

func (s *NoOpStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	return nil, ErrNotFound
}

func (s *NoOpStore) Put(ctx context.Context, entry models.CacheEntry) error {
	return nil
}

func (s *NoOpStore) IncrementHitCount(ctx context.Context, key string) error {
	return nil
}

func (s *NoOpStore) Close() error {
	return nil
}
