package ranking

import (
	"context"
	"math"

	"github.com/dharmasatrya/flightwatcher/internal/filter"
	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/metrics"
	"github.com/dharmasatrya/flightwatcher/internal/models"
)

const (
	// MaxEnriched caps the history lookups issued per scan.
	MaxEnriched = 15
	// WindowDays is the trailing window of the average price.
	WindowDays = 30
	// GoodDealThreshold is the discount, in percent, a trip must exceed.
	GoodDealThreshold = 20.0
)

// PriceHistory returns the trailing average round-trip price for a route.
// ok is false when there is not enough history to say.
type PriceHistory interface {
	AveragePrice(ctx context.Context, origin, destination string, windowDays int) (avg float64, ok bool, err error)
}

type Enricher struct {
	history PriceHistory
}

func NewEnricher(history PriceHistory) *Enricher {
	return &Enricher{history: history}
}

// Enrich scores the first MaxEnriched trips against their route history and
// returns them sorted by total price. A failed lookup only leaves that trip
// without a discount.
func (e *Enricher) Enrich(ctx context.Context, trips []models.Trip, origin string) []models.EnrichedTrip {
	if len(trips) > MaxEnriched {
		trips = trips[:MaxEnriched]
	}
	trips = append([]models.Trip(nil), trips...)
	filter.SortTripsByTotal(trips)

	result := make([]models.EnrichedTrip, len(trips))
	for i, t := range trips {
		result[i] = models.EnrichedTrip{Trip: t}
		if e.history == nil {
			continue
		}

		avg, ok, err := e.history.AveragePrice(ctx, origin, t.DestinationCode, WindowDays)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("destination", t.DestinationCode).Msg("price history lookup failed")
			continue
		}
		if !ok || avg <= 0 {
			continue
		}

		discount := Discount(t.TotalPrice, avg)
		result[i].AveragePrice = &avg
		result[i].DiscountPercent = &discount
		result[i].GoodDeal = IsGoodDeal(discount)
		if result[i].GoodDeal {
			metrics.GoodDealsTotal.Inc()
		}
	}

	return result
}

// Discount is how far current sits below avg, in percent rounded to one
// decimal. It is 0 when current is not below avg.
func Discount(current, avg float64) float64 {
	if avg <= 0 || current >= avg {
		return 0
	}
	pct := (avg - current) / avg * 100
	return math.Round(pct*10) / 10
}

func IsGoodDeal(discount float64) bool {
	return discount > GoodDealThreshold
}
