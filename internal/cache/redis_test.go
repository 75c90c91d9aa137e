package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func storeEntry(key string, expiresAt time.Time) models.CacheEntry {
	return models.CacheEntry{
		Key: key,
		Trips: []models.Trip{{
			Outbound:        models.Flight{FlightNumber: "FR 1", Origin: "BVA", Destination: "OPO", Price: 40, Currency: "EUR"},
			Return:          models.Flight{FlightNumber: "FR 2", Origin: "OPO", Destination: "BVA", Price: 50, Currency: "EUR"},
			TotalPrice:      90,
			DestinationCode: "OPO",
		}},
		ExpiresAt: expiresAt,
	}
}

func TestRedisStore_GetUnknownKey(t *testing.T) {
	store, _ := newTestRedisStore(t)

	if _, err := store.Get(context.Background(), "scan:missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
}

func TestRedisStore_PutGetRoundTrip(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)

	if err := store.Put(ctx, storeEntry("scan:a", expires)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "scan:a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Trips) != 1 || got.Trips[0].TotalPrice != 90 || got.Trips[0].Return.FlightNumber != "FR 2" {
		t.Errorf("trips = %+v", got.Trips)
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
	}
	if got.HitCount != 0 {
		t.Errorf("HitCount = %d, want 0", got.HitCount)
	}
	if ttl := mr.TTL("scan:a"); ttl <= 0 || ttl > time.Hour {
		t.Errorf("ttl = %v, want within the hour", ttl)
	}
}

func TestRedisStore_PutResetsHitCount(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	if err := store.Put(ctx, storeEntry("scan:a", expires)); err != nil {
		t.Fatal(err)
	}
	if err := store.IncrementHitCount(ctx, "scan:a"); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, storeEntry("scan:a", expires)); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "scan:a")
	if err != nil {
		t.Fatal(err)
	}
	if got.HitCount != 0 {
		t.Errorf("HitCount = %d after rewrite, want 0", got.HitCount)
	}
}

func TestRedisStore_IncrementHitCount(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, storeEntry("scan:a", time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := store.IncrementHitCount(ctx, "scan:a"); err != nil {
			t.Fatalf("IncrementHitCount: %v", err)
		}
	}

	got, err := store.Get(ctx, "scan:a")
	if err != nil {
		t.Fatal(err)
	}
	if got.HitCount != 2 {
		t.Errorf("HitCount = %d, want 2", got.HitCount)
	}
	if mr.HGet("scan:a", fieldLastHitAt) == "" {
		t.Error("last_hit_at not recorded")
	}
}

func TestRedisStore_HitAfterExpiryDoesNotRecreateKey(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, storeEntry("scan:a", time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Hour)

	if err := store.IncrementHitCount(ctx, "scan:a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("IncrementHitCount err = %v, want ErrNotFound", err)
	}
	if mr.Exists("scan:a") {
		t.Error("expired key was recreated by the hit counter")
	}
	if _, err := store.Get(ctx, "scan:a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
}

func TestRedisStore_HashWithoutResultsIsMiss(t *testing.T) {
	store, mr := newTestRedisStore(t)

	mr.HSet("scan:stray", fieldHitCount, "3", fieldLastHitAt, time.Now().UTC().Format(time.RFC3339Nano))

	if _, err := store.Get(context.Background(), "scan:stray"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get err = %v, want ErrNotFound", err)
	}
}

func TestLayer_OverRedisStore(t *testing.T) {
	store, _ := newTestRedisStore(t)
	layer := NewLayer(store, time.Hour)
	ctx := context.Background()

	if _, ok := layer.Lookup(ctx, "scan:a"); ok {
		t.Fatal("empty store must miss")
	}

	layer.Save(ctx, "scan:a", sampleTrips())
	trips, ok := layer.Lookup(ctx, "scan:a")
	if !ok || len(trips) != 1 || trips[0].DestinationCode != "OPO" {
		t.Fatalf("Lookup = %+v, %v; want the saved trip", trips, ok)
	}

	entry, err := store.Get(ctx, "scan:a")
	if err != nil {
		t.Fatal(err)
	}
	if entry.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", entry.HitCount)
	}
}
