package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

const (
	fieldResults   = "results"
	fieldExpiresAt = "expires_at"
	fieldHitCount  = "hit_count"
	fieldLastHitAt = "last_hit_at"
)

// RedisStore keeps one hash per key and lets Redis drop it at expires_at.
type RedisStore struct {
	client redis.UniversalClient
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	// A hash without results is not an entry the store wrote.
	if _, ok := fields[fieldResults]; !ok {
		return nil, ErrNotFound
	}

	entry := &models.CacheEntry{Key: key}
	if err := json.Unmarshal([]byte(fields[fieldResults]), &entry.Trips); err != nil {
		return nil, fmt.Errorf("decode cached results: %w", err)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, fields[fieldExpiresAt])
	if err != nil {
		return nil, fmt.Errorf("decode cached expiry: %w", err)
	}
	entry.ExpiresAt = expiresAt

	if raw := fields[fieldHitCount]; raw != "" {
		entry.HitCount, _ = strconv.ParseInt(raw, 10, 64)
	}

	return entry, nil
}

func (s *RedisStore) Put(ctx context.Context, entry models.CacheEntry) error {
	data, err := json.Marshal(entry.Trips)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, entry.Key)
	pipe.HSet(ctx, entry.Key,
		fieldResults, data,
		fieldExpiresAt, entry.ExpiresAt.UTC().Format(time.RFC3339Nano),
		fieldHitCount, entry.HitCount,
	)
	pipe.ExpireAt(ctx, entry.Key, entry.ExpiresAt)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

// incrementHit bumps the counter only on a live entry, so a hit racing the
// expiry cannot recreate the key without a TTL.
var incrementHit = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
redis.call("HSET", KEYS[1], ARGV[2], ARGV[3])
return 1
`)

func (s *RedisStore) IncrementHitCount(ctx context.Context, key string) error {
	updated, err := incrementHit.Run(ctx, s.client, []string{key},
		fieldHitCount, fieldLastHitAt, time.Now().UTC().Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return fmt.Errorf("redis increment hit count: %w", err)
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
