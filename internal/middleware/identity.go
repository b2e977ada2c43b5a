package middleware

// identity.go defines helper functions shared across middleware files.
// Currently it provides a userKey extraction function used when building
// per-user rate limit bucket keys. When no user is authenticated the
// constant "guest" is returned so anonymous traffic shares one bucket per
// client strategy.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userKey extracts a stable identifier for the requester. Authenticated
// requests use the numeric user id injected by JWTAuth; everything else
// is "guest".
func userKey(c echo.Context) string {
	if id, ok := c.Get(ContextUserID).(uint64); ok && id > 0 {
		return strconv.FormatUint(id, 10)
	}
	return "guest"
}
