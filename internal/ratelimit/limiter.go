package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dharmasatrya/flightwatcher/internal/metrics"
)

// SourceLimiter hands out one token bucket per upstream fare host, so every
// concurrent scan shares the same budget against a given API.
type SourceLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	cfg     Config
	now     func() time.Time
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultConfig stays well under what the public fare API tolerates from a
// single client.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		BurstSize:         5,
	}
}

func NewSourceLimiter(cfg Config) *SourceLimiter {
	def := DefaultConfig()
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = def.BurstSize
	}
	return &SourceLimiter{
		buckets: make(map[string]*rate.Limiter),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *SourceLimiter) bucket(source string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[source]
	if !ok {
		b = rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.BurstSize)
		s.buckets[source] = b
	}
	return b
}

// Wait blocks until source may be called or ctx is done. The time spent
// throttled is recorded per source.
func (s *SourceLimiter) Wait(ctx context.Context, source string) error {
	start := s.now()
	err := s.bucket(source).Wait(ctx)
	if err == nil {
		metrics.RateLimitWait.WithLabelValues(source).Observe(s.now().Sub(start).Seconds())
	}
	return err
}
