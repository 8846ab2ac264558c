package middleware

// identity.go holds the accessors handlers use to read the identity
// that JWTAuth stored on the request context.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// CurrentUserID returns the authenticated user's id, or zero when the
// request is unauthenticated.
func CurrentUserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}

// CurrentRole returns the authenticated user's role, or the empty
// string when the request is unauthenticated.
func CurrentRole(c echo.Context) string {
	if v, ok := c.Get("role").(string); ok {
		return v
	}
	return ""
}

// rateKeyUserID renders the identity for rate limit keys.  Anonymous
// requests collapse into a shared "anon" bucket keyed by IP.
func rateKeyUserID(c echo.Context) string {
	if id := CurrentUserID(c); id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
