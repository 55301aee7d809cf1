package handler

import (
	"net/http"

	"github.com/Phambanam/tram-che-bien-sub000/internal/apperror"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError translates a domain error into the API error envelope.
// Untyped errors are logged and reported as a generic 500 so internal
// details never reach clients.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	status := apperror.HTTPStatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("Unhandled error", zap.Error(err))
		msg = "internal server error"
	}
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}
