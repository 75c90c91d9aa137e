package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

// PostgresStore keeps entries in the search_results_cache table. Rows are
// never deleted here; expired rows are ignored on read and overwritten on
// the next write for the same key.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	const sql = `
		SELECT results, expires_at, hit_count
		FROM search_results_cache
		WHERE cache_key = $1
	`

	var (
		raw   []byte
		entry = models.CacheEntry{Key: key}
	)
	err := s.pool.QueryRow(ctx, sql, key).Scan(&raw, &entry.ExpiresAt, &entry.HitCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select cache entry: %w", err)
	}

	if err := json.Unmarshal(raw, &entry.Trips); err != nil {
		return nil, fmt.Errorf("decode cached results: %w", err)
	}
	return &entry, nil
}

func (s *PostgresStore) Put(ctx context.Context, entry models.CacheEntry) error {
	const sql = `
		INSERT INTO search_results_cache (cache_key, results, expires_at, hit_count, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (cache_key) DO UPDATE
		SET results = EXCLUDED.results,
		    expires_at = EXCLUDED.expires_at,
		    hit_count = EXCLUDED.hit_count,
		    last_hit_at = NULL
	`

	data, err := json.Marshal(entry.Trips)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, entry.Key, data, entry.ExpiresAt, entry.HitCount); err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) IncrementHitCount(ctx context.Context, key string) error {
	const sql = `
		UPDATE search_results_cache
		SET hit_count = hit_count + 1, last_hit_at = NOW()
		WHERE cache_key = $1
	`

	cmdTag, err := s.pool.Exec(ctx, sql, key)
	if err != nil {
		return fmt.Errorf("increment hit count: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close is a no-op: the pool is shared with the repositories and closed by main.
func (s *PostgresStore) Close() error {
	return nil
}
