package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

// FixtureSource answers queries from a recorded oneWayFares payload. It is
// used for local development and demos when the live API is not reachable.
type FixtureSource struct {
	flights []models.Flight
}

func NewFixtureSource(path string) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fare fixture: %w", err)
	}
	return NewFixtureSourceFromBytes(data)
}

func NewFixtureSourceFromBytes(data []byte) (*FixtureSource, error) {
	var resp fareResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &FixtureSource{flights: resp.toFlights("fixture")}, nil
}

func (p *FixtureSource) Name() string {
	return "fixture"
}

// Query applies the same filters the live endpoint does. The time bounds are
// literal, like upstream: a query with TimeFrom > TimeTo matches nothing.
func (p *FixtureSource) Query(ctx context.Context, q FareQuery) ([]models.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]models.Flight, 0)
	for _, f := range p.flights {
		if p.matches(f, q) {
			results = append(results, f)
		}
	}
	return results, nil
}

func (p *FixtureSource) matches(f models.Flight, q FareQuery) bool {
	if !strings.EqualFold(f.Origin, q.Airport) {
		return false
	}
	if q.Destination != "" && !strings.EqualFold(f.Destination, q.Destination) {
		return false
	}

	day := f.DepartureTime.Format(models.DateLayout)
	if q.DateFrom != "" && day < q.DateFrom {
		return false
	}
	if q.DateTo != "" && day > q.DateTo {
		return false
	}

	clock := f.DepartureTime.Format(models.TimeOfDayLayout)
	if q.TimeFrom != "" && clock < q.TimeFrom {
		return false
	}
	if q.TimeTo != "" && clock > q.TimeTo {
		return false
	}

	if q.MaxPrice > 0 && f.Price > q.MaxPrice {
		return false
	}
	return true
}
