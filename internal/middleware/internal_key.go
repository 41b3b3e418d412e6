package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// InternalKeyHeader carries the shared secret for internal trigger endpoints
const InternalKeyHeader = "X-Internal-Key"

// InternalKey guards operator endpoints with a shared secret. An empty key
// disables the endpoints entirely.
func InternalKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return forbiddenError(c, "internal endpoints are disabled")
			}

			provided := c.Request().Header.Get(InternalKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				log.Warn().Str("path", c.Request().URL.Path).Str("remote_ip", c.RealIP()).Msg("Rejected internal request")
				return unauthorizedError(c, "invalid internal key")
			}
			return next(c)
		}
	}
}
