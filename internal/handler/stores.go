package handler

import (
	"context"
	"time"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

type ProfileStore interface {
	EnsureProfile(ctx context.Context, id, email, fullName string, admin bool) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, id string, u models.ProfileUpdate) (*models.UserProfile, error)
	List(ctx context.Context, f models.ListFilter) (*models.Page[models.UserProfile], error)
	Details(ctx context.Context, id string) (*models.UserDetails, error)
	AdminUpdate(ctx context.Context, id string, u models.AdminUserUpdate) (*models.UserProfile, error)
}

type SearchStore interface {
	Create(ctx context.Context, userID string, in models.SavedSearchRequest) (*models.SavedSearch, error)
	ListByUser(ctx context.Context, userID string) ([]models.SavedSearch, error)
	Get(ctx context.Context, userID, id string) (*models.SavedSearch, error)
	Delete(ctx context.Context, userID, id string) error
	UpdateCheckResults(ctx context.Context, id string, trips []models.Trip, at time.Time) error
	ListAll(ctx context.Context, f models.ListFilter) (*models.Page[models.SavedSearch], error)
	Stats(ctx context.Context) (*models.SearchStats, error)
}

type FavoriteStore interface {
	Create(ctx context.Context, userID string, in models.FavoriteRequest) (*models.Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]models.Favorite, error)
	Delete(ctx context.Context, userID, id string) error
}

type EventStore interface {
	Record(ctx context.Context, userID, email *string, in models.EventRequest) (*models.AnalyticsEvent, error)
	List(ctx context.Context, f models.ListFilter) (*models.Page[models.AnalyticsEvent], error)
	Stats(ctx context.Context, f models.ListFilter) (*models.EventStats, error)
}

type PlanStore interface {
	Settings(ctx context.Context) (*models.Settings, error)
	UpdateFeatures(ctx context.Context, in models.SettingsUpdate) error
}
