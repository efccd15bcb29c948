package middleware // middleware holds reusable Echo middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ai-health-analyze/internal/utils"
)

// JWTAuth validates a Bearer access token and rejects the request with 401
// when it is missing or invalid. On success the user ID is stored in
// the context (see UserID).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			if !identify(c, secret, raw) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			return next(c)
		}
	}
}

// OptionalIdentity identifies the caller when a valid Bearer token is sent
// and otherwise lets the request through anonymously. It never rejects, so
// it is safe on the public completion endpoints.
func OptionalIdentity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}
			if raw, ok := bearerToken(c); ok {
				identify(c, secret, raw)
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

func identify(c echo.Context, secret, raw string) bool {
	claims, err := utils.ParseAccessToken(secret, raw)
	if err != nil {
		return false
	}
	id, err := claims.UserID()
	if err != nil {
		return false
	}
	c.Set(userIDKey, id)
	return true
}
