package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerState reports the fare source circuit breaker.
type BreakerState interface {
	State() gobreaker.State
}

type HealthHandler struct {
	breaker BreakerState
}

func NewHealthHandler(breaker BreakerState) *HealthHandler {
	return &HealthHandler{breaker: breaker}
}

// Health answers 200 while the process serves requests. An open breaker
// degrades the status without failing the probe.
func (h *HealthHandler) Health(c echo.Context) error {
	resp := map[string]string{"status": "ok"}
	if h.breaker != nil {
		state := h.breaker.State()
		resp["fare_source"] = state.String()
		if state == gobreaker.StateOpen {
			resp["status"] = "degraded"
		}
	}
	return c.JSON(http.StatusOK, resp)
}
