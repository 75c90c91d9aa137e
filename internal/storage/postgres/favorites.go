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

const favoriteColumns = `id, user_id, trip, search_request, is_archived, is_still_valid, created_at`

type FavoriteRepository struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepository(pool *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

func scanFavorite(row pgx.Row) (*models.Favorite, error) {
	var (
		f       models.Favorite
		trip    []byte
		request []byte
	)
	if err := row.Scan(&f.ID, &f.UserID, &trip, &request, &f.IsArchived, &f.IsAvailable, &f.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(trip, &f.Trip); err != nil {
		return nil, fmt.Errorf("decode favorite trip: %w", err)
	}
	if len(request) > 0 {
		if err := json.Unmarshal(request, &f.SearchRequest); err != nil {
			return nil, fmt.Errorf("decode favorite request: %w", err)
		}
	}
	return &f, nil
}

func (r *FavoriteRepository) Create(ctx context.Context, userID string, in models.FavoriteRequest) (*models.Favorite, error) {
	trip, err := json.Marshal(in.Trip)
	if err != nil {
		return nil, fmt.Errorf("encode favorite trip: %w", err)
	}
	request, err := json.Marshal(in.SearchRequest)
	if err != nil {
		return nil, fmt.Errorf("encode favorite request: %w", err)
	}

	const sql = `
		INSERT INTO favorites (id, user_id, trip, search_request, destination_code, total_price, is_archived, is_still_valid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, TRUE, NOW())
		RETURNING ` + favoriteColumns

	f, err := scanFavorite(executor(ctx, r.pool).QueryRow(ctx, sql,
		uuid.NewString(), userID, trip, request, in.Trip.DestinationCode, in.Trip.TotalPrice))
	if err != nil {
		return nil, fmt.Errorf("create favorite: %w", err)
	}
	return f, nil
}

// ListByUser returns the non-archived favorites of userID, newest first.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	const sql = `SELECT ` + favoriteColumns + `
		FROM favorites
		WHERE user_id = $1 AND NOT is_archived
		ORDER BY created_at DESC`

	rows, err := executor(ctx, r.pool).Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return favorites, nil
}

func (r *FavoriteRepository) Delete(ctx context.Context, userID, id string) error {
	const sql = `DELETE FROM favorites WHERE id = $1 AND user_id = $2`

	tag, err := executor(ctx, r.pool).Exec(ctx, sql, id, userID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
