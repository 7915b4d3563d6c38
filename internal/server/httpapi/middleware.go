package httpapi

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ctxUserIDKey is the echo context key under which requireAuth stores the
// authenticated user's ID.
const ctxUserIDKey = "user_id"

// requireAuth verifies the Authorization: Bearer access token and stores the
// bound user ID in the request context. Expired, revoked, and malformed
// tokens all produce the same 401 so a caller learns nothing about which
// check failed.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		userID, err := s.tokens.VerifyAccess(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		c.Set(ctxUserIDKey, userID)
		return next(c)
	}
}

func authUserID(c echo.Context) string {
	id, _ := c.Get(ctxUserIDKey).(string)
	return id
}

// clientIP prefers the first entry of X-Forwarded-For, falling back to the
// connection's remote address.
func clientIP(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
	if err != nil {
		return c.Request().RemoteAddr
	}
	return host
}
