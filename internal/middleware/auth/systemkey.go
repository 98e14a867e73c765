package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const headerSystemKey = "X-System-Key"

// SystemKeyConfig holds the configuration for the system key middleware
type SystemKeyConfig struct {
	Key    string
	Logger *zap.Logger
}

// SystemKeyMiddleware validates the static system key callers must send.
// Gateway-facing webhook routes are registered outside this middleware
// since the gateway cannot carry the key.
func SystemKeyMiddleware(config SystemKeyConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(headerSystemKey)
			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(config.Key)) != 1 {
				config.Logger.Warn("Rejected request with invalid system key",
					zap.String("path", c.Request().URL.Path),
					zap.String("method", c.Request().Method))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":   "Unauthorized",
					"message": "Invalid or missing system key",
				})
			}

			return next(c)
		}
	}
}
