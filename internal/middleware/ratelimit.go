package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/ratelimit"
)

// RateLimitByUsername wraps an auth endpoint with the in-memory fixed
// window limiter, keyed by the username in the request body so one
// caller cannot exhaust another endpoint's pool. keyFn builds the
// namespaced identifier (e.g. "login_alice").
//
// The identifier is derived before the handler runs, so an aborted
// request still spends an attempt. Because the request body can only
// be read once, the handler re-binds from the cached form/JSON values
// Echo keeps; handlers here accept both form and JSON bodies.
func RateLimitByUsername(l *ratelimit.Limiter, p ratelimit.Policy, keyFn func(username string) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username := usernameFromRequest(c)
			if username == "" {
				// Nothing to key on; let the handler reject the malformed body.
				return next(c)
			}
			res := l.Check(keyFn(username), p)

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(p.MaxAttempts))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

			if !res.Allowed {
				wait := time.Until(res.ResetAt)
				secs := int(math.Ceil(wait.Seconds()))
				if secs < 0 {
					secs = 0
				}
				minutes := int(math.Ceil(wait.Minutes()))
				h.Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":         "too_many_requests",
					"message":       "too many attempts, try again in " + strconv.Itoa(minutes) + " minutes",
					"retry_after":   secs,
					"reset_minutes": minutes,
				})
			}
			return next(c)
		}
	}
}

// usernameFromRequest peeks the username out of a JSON or form body
// without consuming it for the downstream handler.
func usernameFromRequest(c echo.Context) string {
	var body struct {
		Username string `json:"username" form:"username"`
	}
	if err := bindPeek(c, &body); err != nil {
		return ""
	}
	return body.Username
}
