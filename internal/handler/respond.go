package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightwatcher/internal/models"
)

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}

// bindAndValidate decodes the body into req and runs the struct validator.
// On failure the 400 response has already been written and the returned
// bool is false.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, errorJSON(c, http.StatusBadRequest, "invalid_request", "Failed to parse request body: "+err.Error())
	}
	if err := c.Validate(req); err != nil {
		return false, errorJSON(c, http.StatusBadRequest, "validation_error", err.Error())
	}
	return true, nil
}

func notFound(c echo.Context, what string) error {
	return errorJSON(c, http.StatusNotFound, "not_found", what+" not found")
}

func internalError(c echo.Context, code string, err error) error {
	return errorJSON(c, http.StatusInternalServerError, code, err.Error())
}
