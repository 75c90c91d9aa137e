package scanner

import (
	"context"
	"time"

	"github.com/dharmasatrya/flightwatcher/internal/cache"
	"github.com/dharmasatrya/flightwatcher/internal/dedup"
	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/metrics"
	"github.com/dharmasatrya/flightwatcher/internal/models"
	"github.com/dharmasatrya/flightwatcher/internal/ranking"
)

// PriceRecorder stores observed leg prices for later averages.
type PriceRecorder interface {
	RecordPrices(ctx context.Context, records []models.PriceRecord) error
}

type ServiceConfig struct {
	Cache    *cache.Layer
	Recorder PriceRecorder
	Enricher *ranking.Enricher
}

// Service wraps the scanner with the result cache, price recording and
// enrichment.
type Service struct {
	scanner  *Scanner
	cache    *cache.Layer
	recorder PriceRecorder
	enricher *ranking.Enricher
	now      func() time.Time
}

func NewService(scanner *Scanner, cfg ServiceConfig) *Service {
	layer := cfg.Cache
	if layer == nil {
		layer = cache.NewLayer(nil, 0)
	}
	return &Service{
		scanner:  scanner,
		cache:    layer,
		recorder: cfg.Recorder,
		enricher: cfg.Enricher,
		now:      time.Now,
	}
}

// Defaults are the values applied to absent request fields.
func (s *Service) Defaults() models.ScanDefaults {
	return s.scanner.defaults
}

type Outcome struct {
	Trips    []models.Trip
	Queries  int
	CacheHit bool
	Deals    []models.EnrichedTrip
}

// Scan serves req from the cache when a live entry exists, otherwise scans,
// records prices and caches non-empty results. With enrich set the trips are
// also scored against their price history.
func (s *Service) Scan(ctx context.Context, req models.ScanRequest, enrich bool) (*Outcome, error) {
	start := time.Now()
	key := cache.Key(req, s.scanner.defaults)
	out := &Outcome{}

	if trips, ok := s.cache.Lookup(ctx, key); ok {
		out.Trips = trips
		out.CacheHit = true
	} else {
		result, err := s.scanner.Scan(ctx, req)
		if err != nil {
			metrics.ScansTotal.WithLabelValues("miss", "error").Inc()
			return nil, err
		}
		out.Trips = result.Trips
		out.Queries = result.Queries

		s.recordPrices(ctx, result.Trips)
		s.cache.Save(ctx, key, result.Trips)
	}

	if enrich && s.enricher != nil && len(out.Trips) > 0 {
		origin := req.Normalize(s.scanner.defaults).DepartureAirport
		out.Deals = s.enricher.Enrich(ctx, out.Trips, origin)
	}

	cacheLabel := "miss"
	if out.CacheHit {
		cacheLabel = "hit"
	}
	resultLabel := "trips"
	if len(out.Trips) == 0 {
		resultLabel = "empty"
	}
	metrics.ScansTotal.WithLabelValues(cacheLabel, resultLabel).Inc()
	metrics.ScanDuration.WithLabelValues(cacheLabel).Observe(time.Since(start).Seconds())
	metrics.TripsReturned.Observe(float64(len(out.Trips)))

	return out, nil
}

type CheckOutcome struct {
	Current []models.Trip
	New     []models.Trip
	Queries int
}

// AutoCheck always scans fresh and reports which trips were not in previous.
func (s *Service) AutoCheck(ctx context.Context, req models.ScanRequest, previous []models.Trip) (*CheckOutcome, error) {
	result, err := s.scanner.Scan(ctx, req)
	if err != nil {
		return nil, err
	}
	s.recordPrices(ctx, result.Trips)

	return &CheckOutcome{
		Current: result.Trips,
		New:     dedup.NewTrips(previous, result.Trips),
		Queries: result.Queries,
	}, nil
}

func (s *Service) recordPrices(ctx context.Context, trips []models.Trip) {
	if s.recorder == nil || len(trips) == 0 {
		return
	}
	records := models.PriceRecordsFromTrips(trips, "api_scan", s.now())
	if err := s.recorder.RecordPrices(ctx, records); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("records", len(records)).Msg("price history write failed")
	}
}
