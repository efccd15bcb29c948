package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// UserID returns the authenticated user's ID stored by JWTAuth or
// OptionalIdentity.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id != 0
}

// subject identifies the caller for rate limiting; anonymous callers share
// the "anon" bucket component.
func subject(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
