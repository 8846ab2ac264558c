package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mfadillah/kostly/internal/apperr"
)

// respondError translates a service error into the matching HTTP
// response.  Unknown kinds become 500 with a generic message so
// internal detail never leaks to clients.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": apperr.Message(err)})
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": apperr.Message(err)})
	case errors.Is(err, apperr.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": apperr.Message(err)})
	case errors.Is(err, apperr.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": apperr.Message(err)})
	case errors.Is(err, apperr.ErrGateway):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": apperr.Message(err)})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}
