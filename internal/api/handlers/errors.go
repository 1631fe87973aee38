package handlers

import (
	"errors"
	"net/http"

	"ourlog/internal/domain"
	"ourlog/pkg/logger"

	"github.com/labstack/echo/v4"
)

// writeError maps a service error to a response. Store failures never
// leak their cause to the client.
func writeError(c echo.Context, log logger.Logger, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": de.Msg})
		case domain.KindInvalidState:
			return c.JSON(http.StatusConflict, map[string]string{"error": de.Msg})
		case domain.KindInvalidInput:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": de.Msg})
		case domain.KindForbidden:
			return c.JSON(http.StatusForbidden, map[string]string{"error": de.Msg})
		}
	}

	log.Error("Request failed", "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
