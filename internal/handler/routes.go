package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightwatcher/internal/auth"
)

// Routes groups the handlers mounted on the server. Account, Events and
// Admin need the database; they and Auth may be nil, in which case their
// routes are not mounted.
type Routes struct {
	Health  *HealthHandler
	Scan    *ScanHandler
	Account *AccountHandler
	Events  *EventHandler
	Admin   *AdminHandler
	Auth    *auth.Middleware
}

func (r Routes) Register(e *echo.Echo) {
	e.GET("/health", r.Health.Health)

	api := e.Group("/api")
	api.GET("/health", r.Health.Health)

	var optional []echo.MiddlewareFunc
	if r.Auth != nil {
		optional = append(optional, r.Auth.Optional())
	}

	api.POST("/scan", r.Scan.Scan)
	api.POST("/auto-check", r.Scan.AutoCheck, optional...)
	api.GET("/destinations", r.Scan.Destinations)

	if r.Events != nil {
		api.POST("/events", r.Events.Record, optional...)
	}

	if r.Auth == nil {
		return
	}

	require := r.Auth.Require()

	if r.Account != nil {
		api.GET("/auth/me", r.Account.Me, require)
		api.POST("/user/profile", r.Account.UpdateProfile, require)
		api.POST("/searches", r.Account.CreateSearch, require)
		api.GET("/searches", r.Account.ListSearches, require)
		api.DELETE("/searches/:id", r.Account.DeleteSearch, require)
		api.POST("/favorites", r.Account.CreateFavorite, require)
		api.GET("/favorites", r.Account.ListFavorites, require)
		api.DELETE("/favorites/:id", r.Account.DeleteFavorite, require)
	}

	if r.Admin != nil {
		api.GET("/admin/verify", r.Admin.Verify, require)
		api.POST("/admin/verify-password", r.Admin.VerifyPassword, require)

		admin := r.Auth.RequireAdmin()
		api.GET("/admin/users", r.Admin.ListUsers, admin)
		api.GET("/admin/users/:id", r.Admin.GetUser, admin)
		api.PUT("/admin/users/:id", r.Admin.UpdateUser, admin)
		api.GET("/admin/searches", r.Admin.ListSearches, admin)
		api.GET("/admin/searches/stats", r.Admin.SearchStats, admin)
		api.GET("/admin/events", r.Admin.ListEvents, admin)
		api.GET("/admin/events/stats", r.Admin.EventStats, admin)
		api.GET("/admin/settings", r.Admin.Settings, admin)
		api.PUT("/admin/settings", r.Admin.UpdateSettings, admin)
	}
}
