//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dharmasatrya/flightwatcher/internal/storage/postgres"
	"github.com/dharmasatrya/flightwatcher/internal/testinfra"
)

func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, postgres.Config{DSN: testinfra.PostgresDSN(t), MaxConns: 4})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := postgres.Migrate(ctx, pool); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewPostgresStore(pool)
}

func TestPostgresStore_Contract(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()

	if _, err := store.Get(ctx, "scan:missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get unknown err = %v, want ErrNotFound", err)
	}
	if err := store.IncrementHitCount(ctx, "scan:missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("IncrementHitCount unknown err = %v, want ErrNotFound", err)
	}

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	if err := store.Put(ctx, storeEntry("scan:a", expires)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.IncrementHitCount(ctx, "scan:a"); err != nil {
			t.Fatalf("IncrementHitCount: %v", err)
		}
	}

	got, err := store.Get(ctx, "scan:a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Trips) != 1 || got.Trips[0].TotalPrice != 90 || got.Trips[0].Outbound.FlightNumber != "FR 1" {
		t.Errorf("trips = %+v", got.Trips)
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
	}
	if got.HitCount != 2 {
		t.Errorf("HitCount = %d, want 2", got.HitCount)
	}

	// a rewrite starts the hit count over
	if err := store.Put(ctx, storeEntry("scan:a", expires)); err != nil {
		t.Fatal(err)
	}
	got, err = store.Get(ctx, "scan:a")
	if err != nil {
		t.Fatal(err)
	}
	if got.HitCount != 0 {
		t.Errorf("HitCount after rewrite = %d, want 0", got.HitCount)
	}
}

func TestPostgresStore_ExpiredRowIsLayerMiss(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, storeEntry("scan:old", time.Now().Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}

	layer := NewLayer(store, time.Hour)
	if _, ok := layer.Lookup(ctx, "scan:old"); ok {
		t.Error("expired row must be a miss")
	}
}
