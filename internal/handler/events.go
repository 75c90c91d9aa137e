package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightwatcher/internal/auth"
	"github.com/dharmasatrya/flightwatcher/internal/logging"
	"github.com/dharmasatrya/flightwatcher/internal/metrics"
	"github.com/dharmasatrya/flightwatcher/internal/models"
)

type EventHandler struct {
	events EventStore
}

func NewEventHandler(events EventStore) *EventHandler {
	return &EventHandler{events: events}
}

// Record stores an analytics event. The caller's identity is attached when
// the request carries a valid token.
func (h *EventHandler) Record(c echo.Context) error {
	var req models.EventRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	var userID, email *string
	if claims, ok := auth.ClaimsFrom(c); ok {
		id := claims.UserID()
		userID = &id
		if claims.Email != "" {
			email = &claims.Email
		}
	}

	event, err := h.events.Record(c.Request().Context(), userID, email, req)
	if err != nil {
		logging.Ctx(c.Request().Context()).Error().Err(err).Str("event_type", req.EventType).Msg("failed to record event")
		return internalError(c, "storage_error", err)
	}
	metrics.EventsTotal.WithLabelValues(req.EventType).Inc()

	return c.JSON(http.StatusCreated, event)
}
