package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

const profileColumns = `
	id, email, COALESCE(full_name, ''), COALESCE(home_airport, ''),
	COALESCE(referral_code, ''), COALESCE(plan_id, ''),
	is_admin, is_active, created_at, last_active
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.HomeAirport,
		&p.ReferralCode, &p.PlanID, &p.IsAdmin, &p.IsActive, &p.CreatedAt, &p.LastActive)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	sql := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`

	p, err := scanProfile(executor(ctx, r.pool).QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return p, nil
}

// EnsureProfile returns the profile for id, creating it from the token
// identity on first sight. It bumps last_active and syncs the admin flag.
func (r *UserRepository) EnsureProfile(ctx context.Context, id, email, fullName string, admin bool) (*models.UserProfile, error) {
	sql := `
		INSERT INTO user_profiles (id, email, full_name, is_admin, is_active, created_at, last_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, TRUE, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET last_active = NOW(),
		    is_admin = EXCLUDED.is_admin,
		    email = COALESCE(NULLIF(EXCLUDED.email, ''), user_profiles.email)
		RETURNING ` + profileColumns

	p, err := scanProfile(executor(ctx, r.pool).QueryRow(ctx, sql, id, email, fullName, admin))
	if err != nil {
		return nil, fmt.Errorf("ensure user profile: %w", err)
	}
	return p, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, u models.ProfileUpdate) (*models.UserProfile, error) {
	sql := `
		UPDATE user_profiles
		SET full_name = COALESCE($2, full_name),
		    email = COALESCE($3, email),
		    home_airport = COALESCE(UPPER($4), home_airport),
		    referral_code = COALESCE($5, referral_code),
		    last_active = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	p, err := scanProfile(executor(ctx, r.pool).QueryRow(ctx, sql, id,
		u.FullName, u.Email, u.HomeAirport, u.ReferralCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return p, nil
}

func (r *UserRepository) AdminUpdate(ctx context.Context, id string, u models.AdminUserUpdate) (*models.UserProfile, error) {
	sql := `
		UPDATE user_profiles
		SET full_name = COALESCE($2, full_name),
		    plan_id = COALESCE($3, plan_id),
		    is_active = COALESCE($4, is_active)
		WHERE id = $1
		RETURNING ` + profileColumns

	p, err := scanProfile(executor(ctx, r.pool).QueryRow(ctx, sql, id,
		u.FullName, u.PlanID, u.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("admin update user: %w", err)
	}
	return p, nil
}

// List pages through profiles, newest first. Email filters by substring.
func (r *UserRepository) List(ctx context.Context, f models.ListFilter) (*models.Page[models.UserProfile], error) {
	f = f.Normalize()

	var w where
	if f.Email != "" {
		w.add("email ILIKE ?", "%"+f.Email+"%")
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM user_profiles ` + w.String()
	if err := executor(ctx, r.pool).QueryRow(ctx, countSQL, w.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	limit := w.next(f.PageSize)
	offset := w.next(f.Offset())
	sql := `SELECT ` + profileColumns + ` FROM user_profiles ` + w.String() +
		` ORDER BY created_at DESC LIMIT ` + limit + ` OFFSET ` + offset

	rows, err := executor(ctx, r.pool).Query(ctx, sql, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	page := &models.Page[models.UserProfile]{Items: []models.UserProfile{}, Total: total, Page: f.Page, PageSize: f.PageSize}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		page.Items = append(page.Items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return page, nil
}

// Details adds per-user activity counters to the profile.
func (r *UserRepository) Details(ctx context.Context, id string) (*models.UserDetails, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	const sql = `
		SELECT
			(SELECT COUNT(*) FROM saved_searches WHERE user_id = $1),
			(SELECT COUNT(*) FROM favorites WHERE user_id = $1),
			(SELECT COUNT(*) FROM analytics_events WHERE user_id = $1)
	`

	details := &models.UserDetails{UserProfile: *p}
	err = executor(ctx, r.pool).QueryRow(ctx, sql, id).Scan(
		&details.Stats.SearchesCount, &details.Stats.FavoritesCount, &details.Stats.EventsCount)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return details, nil
}
