package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightwatcher/internal/auth"
	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/models"
	"github.com/dharmasatrya/flightwatcher/internal/storage/postgres"
)

type AdminConfig struct {
	Admins   *auth.Admins
	Sessions *auth.AdminSessions
	// SecureCookie marks the admin session cookie Secure; enable behind HTTPS.
	SecureCookie bool
}

type AdminHandler struct {
	profiles ProfileStore
	searches SearchStore
	events   EventStore
	plans    PlanStore
	cfg      AdminConfig
}

func NewAdminHandler(profiles ProfileStore, searches SearchStore, events EventStore, plans PlanStore, cfg AdminConfig) *AdminHandler {
	return &AdminHandler{profiles: profiles, searches: searches, events: events, plans: plans, cfg: cfg}
}

type adminStatus struct {
	IsAdminEmail     bool   `json:"is_admin_email"`
	IsAdmin          bool   `json:"is_admin"`
	UserID           string `json:"user_id"`
	Email            string `json:"email"`
	RequiresPassword bool   `json:"requires_password"`
	Message          string `json:"message"`
}

// Verify only checks the allow-list; the password step comes separately.
func (h *AdminHandler) Verify(c echo.Context) error {
	claims, _ := auth.ClaimsFrom(c)
	isAdmin := h.cfg.Admins.IsAdmin(claims.Email)

	message := "Accès refusé pour: " + claims.Email
	if isAdmin {
		message = "Email admin confirmé, mot de passe requis"
	}

	return c.JSON(http.StatusOK, adminStatus{
		IsAdminEmail:     isAdmin,
		IsAdmin:          isAdmin,
		UserID:           claims.UserID(),
		Email:            claims.Email,
		RequiresPassword: isAdmin,
		Message:          message,
	})
}

// VerifyPassword checks the admin password and sets the signed session cookie.
func (h *AdminHandler) VerifyPassword(c echo.Context) error {
	var req models.PasswordVerification
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	claims, _ := auth.ClaimsFrom(c)
	ctx := c.Request().Context()

	if err := h.cfg.Admins.CheckPassword(claims.Email, req.Password); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", claims.UserID()).Msg("admin password verification failed")
		return errorJSON(c, http.StatusForbidden, "forbidden", "Mot de passe incorrect ou email non autorisé")
	}

	token, err := h.cfg.Sessions.Issue(claims.UserID())
	if err != nil {
		return internalError(c, "session_error", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.AdminCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.Sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	logging.Ctx(ctx).Info().Str("user_id", claims.UserID()).Msg("admin session opened")

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Mot de passe admin correct"})
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	f, err := listFilter(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
	}

	page, err := h.profiles.List(c.Request().Context(), f)
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	details, err := h.profiles.Details(c.Request().Context(), c.Param("id"))
	if errors.Is(err, postgres.ErrNotFound) {
		return notFound(c, "User")
	}
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req models.AdminUserUpdate
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if req.Empty() {
		return errorJSON(c, http.StatusBadRequest, "validation_error", "Aucune modification valide fournie")
	}

	profile, err := h.profiles.AdminUpdate(c.Request().Context(), c.Param("id"), req)
	if errors.Is(err, postgres.ErrNotFound) {
		return notFound(c, "User")
	}
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *AdminHandler) ListSearches(c echo.Context) error {
	f, err := listFilter(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
	}

	page, err := h.searches.ListAll(c.Request().Context(), f)
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) SearchStats(c echo.Context) error {
	stats, err := h.searches.Stats(c.Request().Context())
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListEvents(c echo.Context) error {
	f, err := listFilter(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
	}

	page, err := h.events.List(c.Request().Context(), f)
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) EventStats(c echo.Context) error {
	f, err := listFilter(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
	}

	stats, err := h.events.Stats(c.Request().Context(), f)
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Settings(c echo.Context) error {
	settings, err := h.plans.Settings(c.Request().Context())
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (h *AdminHandler) UpdateSettings(c echo.Context) error {
	var req models.SettingsUpdate
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	err := h.plans.UpdateFeatures(c.Request().Context(), req)
	if errors.Is(err, postgres.ErrNotFound) {
		return notFound(c, "Plan")
	}
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Paramètres mis à jour"})
}

// listFilter reads paging and filter query parameters. Dates accept either
// YYYY-MM-DD or RFC 3339.
func listFilter(c echo.Context) (models.ListFilter, error) {
	f := models.ListFilter{
		UserID:  c.QueryParam("user_id"),
		Email:   c.QueryParam("email"),
		Airport: strings.ToUpper(c.QueryParam("airport")),
		Partner: c.QueryParam("partner_id"),
		Type:    c.QueryParam("event_type"),
	}

	var err error
	if f.Page, err = intParam(c, "page"); err != nil {
		return f, err
	}
	if f.PageSize, err = intParam(c, "page_size"); err != nil {
		return f, err
	}
	if f.From, err = timeParam(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = timeParam(c, "to"); err != nil {
		return f, err
	}
	return f.Normalize(), nil
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func timeParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, models.DateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", name)
}
