package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

const searchColumns = `
	id, user_id, name, request, auto_check_enabled, check_interval_seconds,
	last_checked_at, last_check_results, created_at, last_used
`

type SearchRepository struct {
	pool *pgxpool.Pool
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{pool: pool}
}

func scanSearch(row pgx.Row) (*models.SavedSearch, error) {
	var (
		s       models.SavedSearch
		request []byte
		results []byte
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &request, &s.AutoCheckEnabled,
		&s.CheckIntervalSeconds, &s.LastCheckedAt, &results, &s.CreatedAt, &s.LastUsed)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(request, &s.Request); err != nil {
		return nil, fmt.Errorf("decode saved request: %w", err)
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &s.LastCheckResults); err != nil {
			return nil, fmt.Errorf("decode last check results: %w", err)
		}
	}
	return &s, nil
}

func (r *SearchRepository) Create(ctx context.Context, userID string, in models.SavedSearchRequest) (*models.SavedSearch, error) {
	request, err := json.Marshal(in.Request)
	if err != nil {
		return nil, fmt.Errorf("encode saved request: %w", err)
	}

	sql := `
		INSERT INTO saved_searches (id, user_id, name, request, departure_airport, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + searchColumns

	s, err := scanSearch(executor(ctx, r.pool).QueryRow(ctx, sql,
		uuid.NewString(), userID, in.Name, request, nullIfEmpty(in.Request.DepartureAirport)))
	if err != nil {
		return nil, fmt.Errorf("create saved search: %w", err)
	}
	return s, nil
}

func (r *SearchRepository) ListByUser(ctx context.Context, userID string) ([]models.SavedSearch, error) {
	sql := `SELECT ` + searchColumns + ` FROM saved_searches WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, sql, userID)
}

// Get returns the saved search only when userID owns it.
func (r *SearchRepository) Get(ctx context.Context, userID, id string) (*models.SavedSearch, error) {
	sql := `SELECT ` + searchColumns + ` FROM saved_searches WHERE id = $1 AND user_id = $2`

	s, err := scanSearch(executor(ctx, r.pool).QueryRow(ctx, sql, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get saved search: %w", err)
	}
	return s, nil
}

func (r *SearchRepository) Delete(ctx context.Context, userID, id string) error {
	const sql = `DELETE FROM saved_searches WHERE id = $1 AND user_id = $2`

	tag, err := executor(ctx, r.pool).Exec(ctx, sql, id, userID)
	if err != nil {
		return fmt.Errorf("delete saved search: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SearchRepository) UpdateCheckResults(ctx context.Context, id string, trips []models.Trip, at time.Time) error {
	results, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("encode check results: %w", err)
	}

	const sql = `
		UPDATE saved_searches
		SET last_checked_at = $2, last_check_results = $3, last_used = $2
		WHERE id = $1
	`

	tag, err := executor(ctx, r.pool).Exec(ctx, sql, id, at, results)
	if err != nil {
		return fmt.Errorf("update check results: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll is the admin listing, filtered by owner and departure airport.
func (r *SearchRepository) ListAll(ctx context.Context, f models.ListFilter) (*models.Page[models.SavedSearch], error) {
	f = f.Normalize()

	var w where
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.Airport != "" {
		w.add("departure_airport = ?", f.Airport)
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM saved_searches ` + w.String()
	if err := executor(ctx, r.pool).QueryRow(ctx, countSQL, w.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count saved searches: %w", err)
	}

	limit := w.next(f.PageSize)
	offset := w.next(f.Offset())
	sql := `SELECT ` + searchColumns + ` FROM saved_searches ` + w.String() +
		` ORDER BY created_at DESC LIMIT ` + limit + ` OFFSET ` + offset

	items, err := r.list(ctx, sql, w.args...)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.SavedSearch]{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

func (r *SearchRepository) list(ctx context.Context, sql string, args ...any) ([]models.SavedSearch, error) {
	rows, err := executor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	defer rows.Close()

	searches := []models.SavedSearch{}
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved search: %w", err)
		}
		searches = append(searches, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved searches: %w", err)
	}
	return searches, nil
}

// Stats summarises saved searches. Recent means created in the last 7 days;
// the per-day series covers the last 30.
func (r *SearchRepository) Stats(ctx context.Context) (*models.SearchStats, error) {
	q := executor(ctx, r.pool)
	stats := &models.SearchStats{SearchesByDay: []models.DailyCount{}, SearchesByAirport: []models.AirportCount{}}

	const totalsSQL = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE auto_check_enabled),
			COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days')
		FROM saved_searches
	`
	if err := q.QueryRow(ctx, totalsSQL).Scan(&stats.TotalSearches, &stats.AutoCheckEnabled, &stats.RecentSearches); err != nil {
		return nil, fmt.Errorf("search totals: %w", err)
	}

	const byDaySQL = `
		SELECT to_char(created_at::date, 'YYYY-MM-DD'), COUNT(*)
		FROM saved_searches
		WHERE created_at >= NOW() - INTERVAL '30 days'
		GROUP BY 1 ORDER BY 1
	`
	rows, err := q.Query(ctx, byDaySQL)
	if err != nil {
		return nil, fmt.Errorf("searches by day: %w", err)
	}
	stats.SearchesByDay, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DailyCount, error) {
		var d models.DailyCount
		err := row.Scan(&d.Date, &d.Count)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan searches by day: %w", err)
	}

	const byAirportSQL = `
		SELECT COALESCE(departure_airport, ''), COUNT(*)
		FROM saved_searches
		GROUP BY 1 ORDER BY 2 DESC, 1
		LIMIT 10
	`
	rows, err = q.Query(ctx, byAirportSQL)
	if err != nil {
		return nil, fmt.Errorf("searches by airport: %w", err)
	}
	stats.SearchesByAirport, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AirportCount, error) {
		var a models.AirportCount
		err := row.Scan(&a.Airport, &a.Count)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan searches by airport: %w", err)
	}

	return stats, nil
}
