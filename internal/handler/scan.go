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
	"github.com/dharmasatrya/flightwatcher/internal/scanner"
	"github.com/dharmasatrya/flightwatcher/internal/storage/postgres"
	"github.com/dharmasatrya/flightwatcher/pkg/currency"
)

type ScanHandler struct {
	service  *scanner.Service
	searches SearchStore
	now      func() time.Time
}

// NewScanHandler builds the scan endpoints. searches may be nil, in which
// case auto-check only works from the previous results in the body.
func NewScanHandler(service *scanner.Service, searches SearchStore) *ScanHandler {
	return &ScanHandler{service: service, searches: searches, now: time.Now}
}

func (h *ScanHandler) Scan(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.ScanRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	enrich, _ := strconv.ParseBool(c.QueryParam("enrich"))

	out, err := h.service.Scan(ctx, req, enrich)
	if err != nil {
		return scanFailed(c, err)
	}

	message := "Scan terminé: " + tripCount(out.Trips)
	if out.CacheHit {
		message = "Scan terminé (cache): " + tripCount(out.Trips)
	}

	return c.JSON(http.StatusOK, models.ScanResponse{
		Results:  out.Trips,
		Queries:  out.Queries,
		Message:  message,
		CacheHit: out.CacheHit,
		Deals:    out.Deals,
	})
}

// AutoCheck rescans a saved search and reports the trips that were not in
// the previous results. When the body carries no previous results and the
// caller owns search_id, the stored results of that search are used and
// then replaced by the current ones.
func (h *ScanHandler) AutoCheck(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.AutoCheckRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	var owned *models.SavedSearch
	if claims, ok := auth.ClaimsFrom(c); ok && h.searches != nil && req.SearchID != "" {
		saved, err := h.searches.Get(ctx, claims.UserID(), req.SearchID)
		switch {
		case err == nil:
			owned = saved
		case !errors.Is(err, postgres.ErrNotFound):
			logging.Ctx(ctx).Warn().Err(err).Str("search_id", req.SearchID).Msg("saved search lookup failed")
		}
	}

	previous := req.PreviousResults
	if previous == nil && owned != nil {
		previous = owned.LastCheckResults
	}

	out, err := h.service.AutoCheck(ctx, req.ScanRequest, previous)
	if err != nil {
		return scanFailed(c, err)
	}

	if owned != nil {
		if err := h.searches.UpdateCheckResults(ctx, owned.ID, out.Current, h.now()); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("search_id", owned.ID).Msg("failed to store check results")
		}
	}

	return c.JSON(http.StatusOK, models.AutoCheckResponse{
		SearchID:       req.SearchID,
		CurrentResults: out.Current,
		NewResults:     out.New,
		Queries:        out.Queries,
		Message:        fmt.Sprintf("%d nouveau(x) résultat(s) trouvé(s) sur %d total", len(out.New), len(out.Current)),
	})
}

func (h *ScanHandler) Destinations(c echo.Context) error {
	airport := strings.ToUpper(strings.TrimSpace(c.QueryParam("airport")))
	if airport == "" {
		airport = h.service.Defaults().Airport
	}

	groups, err := h.service.Destinations(c.Request().Context(), airport)
	if err != nil {
		return errorJSON(c, http.StatusBadGateway, "source_error", "Failed to list destinations: "+err.Error())
	}

	return c.JSON(http.StatusOK, models.DestinationsResponse{
		Destinations: groups,
		Airport:      airport,
	})
}

func scanFailed(c echo.Context, err error) error {
	if errors.Is(err, scanner.ErrInvalidWindow) {
		return errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
	}
	logging.Ctx(c.Request().Context()).Error().Err(err).Msg("scan failed")
	return errorJSON(c, http.StatusInternalServerError, "scan_error", "Failed to scan flights: "+err.Error())
}

// tripCount renders the result count and, when there are results, the
// cheapest total.
func tripCount(trips []models.Trip) string {
	msg := fmt.Sprintf("%d voyage(s) trouvé(s)", len(trips))
	if len(trips) == 0 {
		return msg
	}

	cheapest := trips[0]
	for _, t := range trips[1:] {
		if t.TotalPrice < cheapest.TotalPrice {
			cheapest = t
		}
	}
	return msg + ", à partir de " + currency.Format(cheapest.TotalPrice, cheapest.Outbound.Currency)
}
