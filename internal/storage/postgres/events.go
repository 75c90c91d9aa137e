package postgres

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

const eventColumns = `
	id, user_id, user_email, event_type, COALESCE(destination_code, ''),
	COALESCE(partner_id, ''), COALESCE(partner_name, ''), total_price,
	COALESCE(session_id, ''), metadata, created_at
`

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (*models.AnalyticsEvent, error) {
	var (
		e        models.AnalyticsEvent
		metadata []byte
	)
	err := row.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.EventType, &e.DestinationCode,
		&e.PartnerID, &e.PartnerName, &e.TotalPrice, &e.SessionID, &metadata, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, fmt.Errorf("decode event metadata: %w", err)
		}
	}
	return &e, nil
}

// Record stores one event. userID and email are nil for anonymous callers.
func (r *EventRepository) Record(ctx context.Context, userID, email *string, in models.EventRequest) (*models.AnalyticsEvent, error) {
	var metadata []byte
	if len(in.Metadata) > 0 {
		var err error
		if metadata, err = json.Marshal(in.Metadata); err != nil {
			return nil, fmt.Errorf("encode event metadata: %w", err)
		}
	}

	sql := `
		INSERT INTO analytics_events (id, user_id, user_email, event_type, destination_code,
			partner_id, partner_name, total_price, session_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING ` + eventColumns

	e, err := scanEvent(executor(ctx, r.pool).QueryRow(ctx, sql,
		uuid.NewString(), userID, email, in.EventType,
		nullIfEmpty(in.DestinationCode), nullIfEmpty(in.PartnerID), nullIfEmpty(in.PartnerName),
		in.TotalPrice, nullIfEmpty(in.SessionID), metadata))
	if err != nil {
		return nil, fmt.Errorf("record event: %w", err)
	}
	return e, nil
}

func eventFilter(f models.ListFilter) where {
	var w where
	if f.Type != "" {
		w.add("event_type = ?", f.Type)
	}
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.Partner != "" {
		w.add("partner_id = ?", f.Partner)
	}
	if f.From != nil {
		w.add("created_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("created_at < ?", *f.To)
	}
	return w
}

func (r *EventRepository) List(ctx context.Context, f models.ListFilter) (*models.Page[models.AnalyticsEvent], error) {
	f = f.Normalize()
	w := eventFilter(f)

	var total int
	countSQL := `SELECT COUNT(*) FROM analytics_events ` + w.String()
	if err := executor(ctx, r.pool).QueryRow(ctx, countSQL, w.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	limit := w.next(f.PageSize)
	offset := w.next(f.Offset())
	sql := `SELECT ` + eventColumns + ` FROM analytics_events ` + w.String() +
		` ORDER BY created_at DESC LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := executor(ctx, r.pool).Query(ctx, sql, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	page := &models.Page[models.AnalyticsEvent]{Items: []models.AnalyticsEvent{}, Total: total, Page: f.Page, PageSize: f.PageSize}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		page.Items = append(page.Items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return page, nil
}

// Stats aggregates the events matching f. Paging fields are ignored.
func (r *EventRepository) Stats(ctx context.Context, f models.ListFilter) (*models.EventStats, error) {
	q := executor(ctx, r.pool)
	w := eventFilter(f)
	stats := &models.EventStats{EventsByDay: []models.DailyCount{}, PartnerDistribution: []models.PartnerCount{}}

	totalsSQL := `
		SELECT COUNT(*), COALESCE(AVG(total_price), 0)::float8,
			COUNT(DISTINCT user_id), COUNT(DISTINCT session_id)
		FROM analytics_events ` + w.String()
	err := q.QueryRow(ctx, totalsSQL, w.args...).Scan(
		&stats.TotalEvents, &stats.AveragePrice, &stats.UniqueUsers, &stats.UniqueSessions)
	if err != nil {
		return nil, fmt.Errorf("event totals: %w", err)
	}

	byDaySQL := `
		SELECT to_char(created_at::date, 'YYYY-MM-DD'), COUNT(*)
		FROM analytics_events ` + w.String() + `
		GROUP BY 1 ORDER BY 1`
	rows, err := q.Query(ctx, byDaySQL, w.args...)
	if err != nil {
		return nil, fmt.Errorf("events by day: %w", err)
	}
	stats.EventsByDay, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DailyCount, error) {
		var d models.DailyCount
		err := row.Scan(&d.Date, &d.Count)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan events by day: %w", err)
	}

	partners := w
	partners.conds = append(append([]string{}, w.conds...), "partner_id IS NOT NULL")
	partnerSQL := `
		SELECT partner_id, COALESCE(MAX(partner_name), ''), COUNT(*)
		FROM analytics_events ` + partners.String() + `
		GROUP BY partner_id ORDER BY 3 DESC, 1`
	rows, err = q.Query(ctx, partnerSQL, partners.args...)
	if err != nil {
		return nil, fmt.Errorf("partner distribution: %w", err)
	}
	stats.PartnerDistribution, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PartnerCount, error) {
		var p models.PartnerCount
		err := row.Scan(&p.PartnerID, &p.PartnerName, &p.Count)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan partner distribution: %w", err)
	}

	return stats, nil
}
