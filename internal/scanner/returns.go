package scanner

import (
	"context"

	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/models"
)

// matchReturns looks, for every outbound flight, at each return window and
// keeps the return that gives the lowest total within budget. Outbound
// flights without such a return are dropped.
func (s *Scanner) matchReturns(ctx context.Context, req models.ScanRequest, outbound []models.Flight, windows []windowSpec, queries *int) ([]models.Trip, error) {
	trips := make([]models.Trip, 0, len(outbound))

	for _, out := range outbound {
		var (
			best      *models.Flight
			bestTotal float64
		)

		for _, w := range windows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			flights, err := s.query(ctx, fareQuery(out.Destination, req.DepartureAirport, w, req.BudgetMax), queries)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				logging.Ctx(ctx).Warn().Err(err).
					Str("destination", out.Destination).
					Str("date", w.raw.Date).
					Msg("return query failed, skipping pairing")
				continue
			}

			for i := range flights {
				ret := flights[i]
				if !w.parsed.Contains(ret.DepartureTime) {
					continue
				}
				total := out.Price + ret.Price
				if total > float64(req.BudgetMax) {
					continue
				}
				if best == nil || total < bestTotal {
					best = &flights[i]
					bestTotal = total
				}
			}
		}

		if best != nil {
			trips = append(trips, NewTrip(out, *best))
		}
	}

	return trips, nil
}

// NewTrip assembles a round trip; the destination is the outbound arrival.
func NewTrip(outbound, ret models.Flight) models.Trip {
	return models.Trip{
		Outbound:        outbound,
		Return:          ret,
		TotalPrice:      outbound.Price + ret.Price,
		DestinationCode: outbound.Destination,
	}
}
