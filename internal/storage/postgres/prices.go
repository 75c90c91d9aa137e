package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

// PriceHistoryRepository keeps one row per observed leg price.
type PriceHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewPriceHistoryRepository(pool *pgxpool.Pool) *PriceHistoryRepository {
	return &PriceHistoryRepository{pool: pool}
}

var priceHistoryColumns = []string{
	"departure_airport", "destination_code", "flight_date", "price",
	"currency", "flight_number", "source", "recorded_at",
}

func (r *PriceHistoryRepository) RecordPrices(ctx context.Context, records []models.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		day, err := time.Parse(models.DateLayout, rec.FlightDate)
		if err != nil {
			return fmt.Errorf("record prices: flight date %q: %w", rec.FlightDate, err)
		}
		rows = append(rows, []any{
			rec.DepartureAirport, rec.DestinationCode, day, rec.Price,
			rec.Currency, rec.FlightNumber, rec.Source, rec.RecordedAt,
		})
	}

	// CopyFrom is not part of querier; prices are never written inside a
	// caller's transaction.
	_, err := r.pool.CopyFrom(ctx, pgx.Identifier{"price_history"}, priceHistoryColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("record prices: %w", err)
	}
	return nil
}

// AveragePrice is the mean outbound leg price plus the mean return leg price
// over the trailing window. ok is false when either leg has no rows.
func (r *PriceHistoryRepository) AveragePrice(ctx context.Context, origin, destination string, windowDays int) (float64, bool, error) {
	const sql = `
		SELECT
			(SELECT AVG(price) FROM price_history
			 WHERE departure_airport = $1 AND destination_code = $2
			   AND recorded_at >= NOW() - make_interval(days => $3)),
			(SELECT AVG(price) FROM price_history
			 WHERE departure_airport = $2 AND destination_code = $1
			   AND recorded_at >= NOW() - make_interval(days => $3))
	`

	var outbound, inbound *float64
	err := executor(ctx, r.pool).QueryRow(ctx, sql, origin, destination, windowDays).Scan(&outbound, &inbound)
	if err != nil {
		return 0, false, fmt.Errorf("average price %s-%s: %w", origin, destination, err)
	}
	if outbound == nil || inbound == nil {
		return 0, false, nil
	}
	return *outbound + *inbound, true, nil
}
