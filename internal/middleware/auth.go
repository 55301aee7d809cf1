package middleware

import (
	"net/http"
	"strings"

	"github.com/Phambanam/tram-che-bien-sub000/internal/model"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/jwtutil"
	"github.com/Phambanam/tram-che-bien-sub000/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and resolves the caller into a
// model.Principal stored in the request context.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid or expired token"})
		}

		principal := model.Principal{
			UserID: claims.UserID,
			Name:   claims.FullName,
			Role:   claims.Role,
			UnitID: claims.UnitID,
		}
		c.Set("principal", principal)

		log.Debug("Request authenticated",
			zap.Uint("user_id", principal.UserID),
			zap.String("role", principal.Role),
			zap.Uint("unit_id", principal.UnitID))

		return next(c)
	}
}

// GetPrincipal retrieves the authenticated principal from the context
func GetPrincipal(c echo.Context) (model.Principal, bool) {
	principal, ok := c.Get("principal").(model.Principal)
	return principal, ok
}
