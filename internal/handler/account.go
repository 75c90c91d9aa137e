package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightwatcher/internal/auth"
	"github.com/dharmasatrya/flightwatcher/internal/models"
	"github.com/dharmasatrya/flightwatcher/internal/storage/postgres"
)

// AccountHandler serves the signed-in user's profile, saved searches and
// favorites. Every route sits behind auth.Middleware.Require.
type AccountHandler struct {
	profiles  ProfileStore
	searches  SearchStore
	favorites FavoriteStore
	admins    *auth.Admins
}

func NewAccountHandler(profiles ProfileStore, searches SearchStore, favorites FavoriteStore, admins *auth.Admins) *AccountHandler {
	return &AccountHandler{profiles: profiles, searches: searches, favorites: favorites, admins: admins}
}

type meResponse struct {
	User    *models.UserProfile `json:"user"`
	IsAdmin bool                `json:"is_admin"`
}

// ensureProfile makes sure the caller has a profile row, which the other
// tables reference.
func (h *AccountHandler) ensureProfile(c echo.Context) (*models.UserProfile, error) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return nil, auth.ErrMissingToken
	}
	return h.profiles.EnsureProfile(c.Request().Context(),
		claims.UserID(), claims.Email, claims.FullName(), h.admins.IsAdmin(claims.Email))
}

func (h *AccountHandler) Me(c echo.Context) error {
	profile, err := h.ensureProfile(c)
	if err != nil {
		return internalError(c, "profile_error", err)
	}
	return c.JSON(http.StatusOK, meResponse{User: profile, IsAdmin: profile.IsAdmin})
}

func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	var req models.ProfileUpdate
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	profile, err := h.ensureProfile(c)
	if err != nil {
		return internalError(c, "profile_error", err)
	}

	updated, err := h.profiles.UpdateProfile(c.Request().Context(), profile.ID, req)
	if err != nil {
		return internalError(c, "profile_error", err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *AccountHandler) CreateSearch(c echo.Context) error {
	var req models.SavedSearchRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	profile, err := h.ensureProfile(c)
	if err != nil {
		return internalError(c, "profile_error", err)
	}

	search, err := h.searches.Create(c.Request().Context(), profile.ID, req)
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusCreated, search)
}

func (h *AccountHandler) ListSearches(c echo.Context) error {
	claims, _ := auth.ClaimsFrom(c)

	searches, err := h.searches.ListByUser(c.Request().Context(), claims.UserID())
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, searches)
}

func (h *AccountHandler) DeleteSearch(c echo.Context) error {
	claims, _ := auth.ClaimsFrom(c)

	err := h.searches.Delete(c.Request().Context(), claims.UserID(), c.Param("id"))
	if errors.Is(err, postgres.ErrNotFound) {
		return notFound(c, "Saved search")
	}
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Recherche supprimée"})
}

func (h *AccountHandler) CreateFavorite(c echo.Context) error {
	var req models.FavoriteRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	profile, err := h.ensureProfile(c)
	if err != nil {
		return internalError(c, "profile_error", err)
	}

	favorite, err := h.favorites.Create(c.Request().Context(), profile.ID, req)
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusCreated, favorite)
}

func (h *AccountHandler) ListFavorites(c echo.Context) error {
	claims, _ := auth.ClaimsFrom(c)

	favorites, err := h.favorites.ListByUser(c.Request().Context(), claims.UserID())
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, favorites)
}

func (h *AccountHandler) DeleteFavorite(c echo.Context) error {
	claims, _ := auth.ClaimsFrom(c)

	err := h.favorites.Delete(c.Request().Context(), claims.UserID(), c.Param("id"))
	if errors.Is(err, postgres.ErrNotFound) {
		return notFound(c, "Favorite")
	}
	if err != nil {
		return internalError(c, "storage_error", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "Favori supprimé"})
}
