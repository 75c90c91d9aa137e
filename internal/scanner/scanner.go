// Package scanner pairs cheap outbound flights with the cheapest return that
// keeps the round trip under budget.
//
// A scan runs in three sequential stages. Outbound candidates are collected
// for every requested departure window, reduced to the cheapest flight per
// destination and truncated to the outbound limit. Returns are then searched
// only for the survivors, which bounds the number of source queries to
// len(outbound windows) + limit*len(return windows).
package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/dharmasatrya/flightwatcher/internal/filter"
	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/models"
	"github.com/dharmasatrya/flightwatcher/internal/providers"
)

// ErrInvalidWindow marks a request whose date or time-of-day cannot be parsed.
var ErrInvalidWindow = errors.New("invalid date window")

type Result struct {
	Trips []models.Trip
	// Queries counts the source queries issued, failed ones included. Queries
	// the circuit breaker refused never left the process and are not counted;
	// client retries of one query count once.
	Queries int
}

type Scanner struct {
	source   providers.FlightSource
	defaults models.ScanDefaults
}

func New(source providers.FlightSource, defaults models.ScanDefaults) *Scanner {
	return &Scanner{source: source, defaults: defaults}
}

type windowSpec struct {
	raw    models.DateWindow
	parsed filter.Window
}

// Scan runs the full pipeline for req. Source failures for a single window
// or pairing are logged and skipped; only malformed windows and context
// cancellation are returned as errors.
func (s *Scanner) Scan(ctx context.Context, req models.ScanRequest) (*Result, error) {
	req = req.Normalize(s.defaults)
	result := &Result{Trips: []models.Trip{}}

	if len(req.OutboundDates) == 0 || len(req.ReturnDates) == 0 {
		return result, nil
	}

	outboundWindows, err := parseWindows(req.OutboundDates)
	if err != nil {
		return nil, fmt.Errorf("outbound dates: %w", err)
	}
	returnWindows, err := parseWindows(req.ReturnDates)
	if err != nil {
		return nil, fmt.Errorf("return dates: %w", err)
	}

	candidates, err := s.collectOutbound(ctx, req, outboundWindows, &result.Queries)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Debug().Int("candidates", len(candidates)).Str("airport", req.DepartureAirport).Msg("outbound flights collected")

	if len(candidates) == 0 {
		return result, nil
	}

	reduced := ReduceOutbound(candidates, req.OutboundLimit)
	logging.Ctx(ctx).Debug().Int("destinations", len(reduced)).Msg("outbound flights reduced")

	trips, err := s.matchReturns(ctx, req, reduced, returnWindows, &result.Queries)
	if err != nil {
		return nil, err
	}
	result.Trips = trips

	logging.Ctx(ctx).Info().
		Str("airport", req.DepartureAirport).
		Int("trips", len(trips)).
		Int("queries", result.Queries).
		Msg("scan finished")

	return result, nil
}

func parseWindows(windows []models.DateWindow) ([]windowSpec, error) {
	specs := make([]windowSpec, 0, len(windows))
	for _, w := range windows {
		parsed, err := filter.ParseWindow(w)
		if err != nil {
			return nil, fmt.Errorf("%w %q %s-%s: %v", ErrInvalidWindow, w.Date, w.TimeMin, w.TimeMax, err)
		}
		specs = append(specs, windowSpec{raw: w, parsed: parsed})
	}
	return specs, nil
}

// query asks the source and counts the call unless the breaker refused it.
func (s *Scanner) query(ctx context.Context, q providers.FareQuery, queries *int) ([]models.Flight, error) {
	flights, err := s.source.Query(ctx, q)
	if !errors.Is(err, providers.ErrSourceRejected) {
		*queries++
	}
	return flights, err
}

// fareQuery scopes a source query to one exact day. The time bounds are only
// forwarded when they do not wrap past midnight, since upstream reads them
// literally; wrapped windows are enforced locally.
func fareQuery(airport, destination string, w windowSpec, maxPrice int) providers.FareQuery {
	q := providers.FareQuery{
		Airport:     airport,
		DateFrom:    w.raw.Date,
		DateTo:      w.raw.Date,
		MaxPrice:    float64(maxPrice),
		Destination: destination,
	}
	if w.parsed.MinTime <= w.parsed.MaxTime {
		q.TimeFrom = w.raw.TimeMin
		q.TimeTo = w.raw.TimeMax
	}
	return q
}
