package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/metrics"
	"github.com/dharmasatrya/flightwatcher/internal/models"
)

const DefaultTTL = time.Hour

// Layer puts the read/write policy around a Store. Store failures are logged
// and degrade to a miss or a skipped write; they never reach the caller.
type Layer struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewLayer(store Store, ttl time.Duration) *Layer {
	if store == nil {
		store = NewNoOpStore()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Layer{store: store, ttl: ttl, now: time.Now}
}

// Lookup returns the cached trips for key. Entries whose expiry is not
// strictly in the future, or that hold no trips, are misses.
func (l *Layer) Lookup(ctx context.Context, key string) ([]models.Trip, bool) {
	entry, err := l.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Str("cache_key", key).Msg("cache read failed, scanning without cache")
			metrics.CacheOperationsTotal.WithLabelValues("get", "error").Inc()
			return nil, false
		}
		metrics.CacheOperationsTotal.WithLabelValues("get", "miss").Inc()
		return nil, false
	}

	if !entry.ExpiresAt.After(l.now()) || len(entry.Trips) == 0 {
		metrics.CacheOperationsTotal.WithLabelValues("get", "miss").Inc()
		return nil, false
	}

	// The increment is best effort; concurrent hits may lose updates.
	if err := l.store.IncrementHitCount(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("cache_key", key).Msg("cache hit count update failed")
		metrics.CacheOperationsTotal.WithLabelValues("hit_count", "error").Inc()
	}

	metrics.CacheOperationsTotal.WithLabelValues("get", "hit").Inc()
	logging.Ctx(ctx).Debug().Str("cache_key", key).Int64("hit", entry.HitCount+1).Msg("scan served from cache")
	return entry.Trips, true
}

// Save stores trips under key for the layer's TTL with a fresh hit count.
// Empty results are never written.
func (l *Layer) Save(ctx context.Context, key string, trips []models.Trip) {
	if len(trips) == 0 {
		return
	}

	entry := models.CacheEntry{
		Key:       key,
		Trips:     trips,
		ExpiresAt: l.now().Add(l.ttl),
		HitCount:  0,
	}
	if err := l.store.Put(ctx, entry); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("cache_key", key).Msg("cache write failed")
		metrics.CacheOperationsTotal.WithLabelValues("put", "error").Inc()
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues("put", "ok").Inc()
}

func (l *Layer) Close() error {
	return l.store.Close()
}
