package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

type PlanRepository struct {
	pool *pgxpool.Pool
	txm  *TxManager
}

func NewPlanRepository(pool *pgxpool.Pool, txm *TxManager) *PlanRepository {
	return &PlanRepository{pool: pool, txm: txm}
}

// Settings returns every plan with its feature flags.
func (r *PlanRepository) Settings(ctx context.Context) (*models.Settings, error) {
	q := executor(ctx, r.pool)

	const plansSQL = `
		SELECT id, name, price_monthly, is_active, created_at
		FROM subscription_plans
		ORDER BY price_monthly, id
	`
	rows, err := q.Query(ctx, plansSQL)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	plans, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Plan, error) {
		var p models.Plan
		err := row.Scan(&p.ID, &p.Name, &p.PriceMonthly, &p.IsActive, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan plans: %w", err)
	}

	const featuresSQL = `
		SELECT plan_id, feature_name, enabled, limit_value
		FROM plan_features
		ORDER BY plan_id, feature_name
	`
	rows, err = q.Query(ctx, featuresSQL)
	if err != nil {
		return nil, fmt.Errorf("list plan features: %w", err)
	}
	features, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PlanFeature, error) {
		var f models.PlanFeature
		err := row.Scan(&f.PlanID, &f.FeatureName, &f.Enabled, &f.LimitValue)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan plan features: %w", err)
	}

	settings := &models.Settings{Plans: plans, FeaturesByPlan: make(map[string][]models.PlanFeature, len(plans))}
	for _, p := range plans {
		settings.FeaturesByPlan[p.ID] = []models.PlanFeature{}
	}
	for _, f := range features {
		settings.FeaturesByPlan[f.PlanID] = append(settings.FeaturesByPlan[f.PlanID], f)
	}
	return settings, nil
}

// UpdateFeatures upserts the feature flags of one plan atomically.
func (r *PlanRepository) UpdateFeatures(ctx context.Context, in models.SettingsUpdate) error {
	return r.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		q := executor(ctx, r.pool)

		var exists bool
		if err := q.QueryRow(ctx, `SELECT TRUE FROM subscription_plans WHERE id = $1`, in.PlanID).Scan(&exists); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lookup plan: %w", err)
		}

		const upsertSQL = `
			INSERT INTO plan_features (plan_id, feature_name, enabled, limit_value)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (plan_id, feature_name) DO UPDATE
			SET enabled = EXCLUDED.enabled, limit_value = EXCLUDED.limit_value
		`
		for name, toggle := range in.Features {
			if _, err := q.Exec(ctx, upsertSQL, in.PlanID, name, toggle.Enabled, toggle.LimitValue); err != nil {
				return fmt.Errorf("upsert feature %s: %w", name, err)
			}
		}
		return nil
	})
}
