package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"flowi_ledger/internal/apperr"
	"flowi_ledger/internal/logger"
)

// ErrorResponse is the JSON body returned for every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CustomErrorHandler maps the ledger's error classes onto HTTP status codes:
// validation 400, not found 404, conflict 409, persistence 503. Echo
// HTTPErrors pass through with their own code.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	label := "internal_error"

	switch {
	case apperr.IsValidation(err):
		code = http.StatusBadRequest
		label = "validation_error"
	case apperr.IsNotFound(err):
		code = http.StatusNotFound
		label = "not_found"
	case apperr.IsConflict(err):
		code = http.StatusConflict
		label = "conflict"
	case apperr.IsPersistence(err):
		code = http.StatusServiceUnavailable
		label = "persistence_error"
	default:
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			label = http.StatusText(code)
			if msg, ok := he.Message.(string); ok {
				_ = c.JSON(code, ErrorResponse{Error: label, Message: msg})
				return
			}
		}
	}

	if code >= http.StatusInternalServerError {
		logger.WithComponent("http").Error().Err(err).
			Str("path", c.Request().URL.Path).
			Msg("request failed")
	}

	_ = c.JSON(code, ErrorResponse{Error: label, Message: err.Error()})
}
