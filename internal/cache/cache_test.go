package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

func baseRequest() models.ScanRequest {
	return models.ScanRequest{
		DepartureAirport: "BVA",
		OutboundDates:    []models.DateWindow{{Date: "2026-11-02", TimeMin: "06:00", TimeMax: "23:59"}},
		ReturnDates:      []models.DateWindow{{Date: "2026-11-05", TimeMin: "06:00", TimeMax: "23:59"}},
		BudgetMax:        150,
		OutboundLimit:    50,
	}
}

func TestKey_Deterministic(t *testing.T) {
	d := models.DefaultScanDefaults()
	if Key(baseRequest(), d) != Key(baseRequest(), d) {
		t.Error("identical requests must produce identical keys")
	}
}

func TestKey_DestinationOrderInsensitive(t *testing.T) {
	d := models.DefaultScanDefaults()

	a := baseRequest()
	a.ExcludedDestinations = []string{"OPO", "CIA", "MAD"}
	included := []string{"LIS", "BCN"}
	a.IncludedDestinations = &included

	b := baseRequest()
	b.ExcludedDestinations = []string{"mad", "OPO", "CIA", "OPO"}
	reordered := []string{"BCN", "LIS"}
	b.IncludedDestinations = &reordered

	if Key(a, d) != Key(b, d) {
		t.Error("destination list order must not change the key")
	}
}

func TestKey_DefaultsEquivalentToAbsent(t *testing.T) {
	d := models.DefaultScanDefaults()

	explicit := baseRequest()
	explicit.BudgetMax = models.DefaultBudgetMax
	explicit.OutboundLimit = models.DefaultLimit
	explicit.DepartureAirport = "bva"
	explicit.OutboundDates = []models.DateWindow{{Date: "2026-11-02", TimeMin: "00:00", TimeMax: "23:59"}}

	implicit := baseRequest()
	implicit.BudgetMax = 0
	implicit.OutboundLimit = 0
	implicit.DepartureAirport = ""
	implicit.OutboundDates = []models.DateWindow{{Date: "2026-11-02"}}

	if Key(explicit, d) != Key(implicit, d) {
		t.Error("absent fields must key like their defaults")
	}
}

func TestKey_Differences(t *testing.T) {
	d := models.DefaultScanDefaults()
	base := Key(baseRequest(), d)

	mutations := map[string]func(r *models.ScanRequest){
		"budget":  func(r *models.ScanRequest) { r.BudgetMax = 151 },
		"airport": func(r *models.ScanRequest) { r.DepartureAirport = "CRL" },
		"outbound date": func(r *models.ScanRequest) {
			r.OutboundDates = []models.DateWindow{{Date: "2026-11-03", TimeMin: "06:00", TimeMax: "23:59"}}
		},
		"return window": func(r *models.ScanRequest) {
			r.ReturnDates = []models.DateWindow{{Date: "2026-11-05", TimeMin: "07:00", TimeMax: "23:59"}}
		},
		"window order": func(r *models.ScanRequest) {
			r.OutboundDates = []models.DateWindow{
				{Date: "2026-11-03", TimeMin: "06:00", TimeMax: "23:59"},
				{Date: "2026-11-02", TimeMin: "06:00", TimeMax: "23:59"},
			}
		},
		"empty allow-list": func(r *models.ScanRequest) {
			empty := []string{}
			r.IncludedDestinations = &empty
		},
		"limit": func(r *models.ScanRequest) { r.OutboundLimit = 10 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			r := baseRequest()
			mutate(&r)
			if Key(r, d) == base {
				t.Errorf("%s must change the key", name)
			}
		})
	}

	// Window order matters: swapping two windows changes the key.
	a := baseRequest()
	a.OutboundDates = []models.DateWindow{{Date: "2026-11-02"}, {Date: "2026-11-03"}}
	b := baseRequest()
	b.OutboundDates = []models.DateWindow{{Date: "2026-11-03"}, {Date: "2026-11-02"}}
	if Key(a, d) == Key(b, d) {
		t.Error("date window order must change the key")
	}
}

type memStore struct {
	entries  map[string]models.CacheEntry
	getErr   error
	putErr   error
	puts     int
	hitCalls int
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]models.CacheEntry{}}
}

func (m *memStore) Get(ctx context.Context, key string) (*models.CacheEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *memStore) Put(ctx context.Context, entry models.CacheEntry) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[entry.Key] = entry
	return nil
}

func (m *memStore) IncrementHitCount(ctx context.Context, key string) error {
	m.hitCalls++
	e := m.entries[key]
	e.HitCount++
	m.entries[key] = e
	return nil
}

func (m *memStore) Close() error { return nil }

func sampleTrips() []models.Trip {
	return []models.Trip{{DestinationCode: "OPO", TotalPrice: 90}}
}

func TestLayer_SaveThenLookup(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	layer := NewLayer(store, time.Hour)
	layer.now = func() time.Time { return now }

	layer.Save(context.Background(), "k", sampleTrips())

	entry := store.entries["k"]
	if !entry.ExpiresAt.Equal(now.Add(time.Hour)) || entry.HitCount != 0 {
		t.Fatalf("entry = %+v, want expiry now+1h and zero hits", entry)
	}

	trips, ok := layer.Lookup(context.Background(), "k")
	if !ok || len(trips) != 1 {
		t.Fatalf("Lookup = %v, %v; want a hit", trips, ok)
	}
	if store.entries["k"].HitCount != 1 {
		t.Errorf("hit count = %d, want 1", store.entries["k"].HitCount)
	}
}

func TestLayer_ExpiredIsMiss(t *testing.T) {
	store := newMemStore()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	layer := NewLayer(store, time.Hour)
	layer.now = func() time.Time { return now }

	store.entries["past"] = models.CacheEntry{Key: "past", Trips: sampleTrips(), ExpiresAt: now.Add(-time.Second)}
	store.entries["edge"] = models.CacheEntry{Key: "edge", Trips: sampleTrips(), ExpiresAt: now}

	for _, key := range []string{"past", "edge"} {
		if _, ok := layer.Lookup(context.Background(), key); ok {
			t.Errorf("Lookup(%s) hit, want miss", key)
		}
	}
	if store.hitCalls != 0 {
		t.Errorf("hit count touched %d times on misses", store.hitCalls)
	}
}

func TestLayer_EmptyResultsNotCached(t *testing.T) {
	store := newMemStore()
	layer := NewLayer(store, time.Hour)

	layer.Save(context.Background(), "k", nil)
	layer.Save(context.Background(), "k", []models.Trip{})

	if store.puts != 0 {
		t.Errorf("puts = %d, want 0", store.puts)
	}
}

func TestLayer_StoreErrorsAreSwallowed(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	store.putErr = errors.New("connection refused")
	layer := NewLayer(store, time.Hour)

	if _, ok := layer.Lookup(context.Background(), "k"); ok {
		t.Error("read error must be a miss")
	}
	layer.Save(context.Background(), "k", sampleTrips())
	if store.puts != 1 {
		t.Errorf("puts = %d, want 1 attempted write", store.puts)
	}
}

func TestNewLayer_Defaults(t *testing.T) {
	layer := NewLayer(nil, 0)
	if layer.ttl != DefaultTTL {
		t.Errorf("ttl = %s, want %s", layer.ttl, DefaultTTL)
	}
	if _, ok := layer.Lookup(context.Background(), "k"); ok {
		t.Error("no-op store must always miss")
	}
}
