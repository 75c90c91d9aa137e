package scanner

import (
	"context"

	"github.com/dharmasatrya/flightwatcher/internal/filter"
	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/models"
)

// collectOutbound issues one query per departure window and keeps the flights
// that really depart inside the window towards an allowed destination. The
// budget is only a coarse upstream filter here; the real check is on the
// round-trip total.
func (s *Scanner) collectOutbound(ctx context.Context, req models.ScanRequest, windows []windowSpec, queries *int) ([]models.Flight, error) {
	var candidates []models.Flight

	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		flights, err := s.query(ctx, fareQuery(req.DepartureAirport, "", w, req.BudgetMax), queries)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Ctx(ctx).Warn().Err(err).Str("date", w.raw.Date).Msg("outbound query failed, skipping date")
			continue
		}

		candidates = append(candidates, filter.Flights(flights, w.parsed, req.ExcludedDestinations, req.IncludedDestinations)...)
	}

	return candidates, nil
}

// ReduceOutbound keeps the cheapest flight per destination, cheapest first,
// and truncates to limit. Among equally cheap flights to one destination the
// first one seen wins. The reduction spans all requested dates: a destination
// keeps a single outbound flight even if it is served on several days.
func ReduceOutbound(candidates []models.Flight, limit int) []models.Flight {
	sorted := make([]models.Flight, len(candidates))
	copy(sorted, candidates)
	filter.SortByPrice(sorted)

	seen := make(map[string]bool, len(sorted))
	reduced := make([]models.Flight, 0, len(sorted))
	for _, f := range sorted {
		if seen[f.Destination] {
			continue
		}
		seen[f.Destination] = true
		reduced = append(reduced, f)
	}

	if limit >= 0 && len(reduced) > limit {
		reduced = reduced[:limit]
	}
	return reduced
}
