package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/flightwatcher/internal/logging"
)

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(zerolog.New(&buf))
	defer logging.SetLogger(prev)

	e := echo.New()
	e.Use(RequestID(), RequestLogger())

	var seen string
	e.GET("/ping", func(c echo.Context) error {
		seen = logging.RequestIDFromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	header := rec.Header().Get(echo.HeaderXRequestID)
	if header == "" || header != seen {
		t.Errorf("header id %q, context id %q", header, seen)
	}
	line := buf.String()
	if !strings.Contains(line, `"uri":"/ping"`) || !strings.Contains(line, `"request_id":"`+header+`"`) {
		t.Errorf("log line = %s", line)
	}
}
