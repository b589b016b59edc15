// Package middleware provides reusable HTTP middleware: session
// authentication, role enforcement, rate limiting and response caching.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/auth"
)

// SessionCookie is the cookie the browser client carries its token in.
// API clients may send the same token as a Bearer header instead.
const SessionCookie = "session"

const sessionKey = "session"

// SessionAuth returns middleware that verifies the caller's token and
// stores an *auth.Session in the request context. On a missing or
// invalid token the denial follows the gate's decision for the given
// mode: pages redirect to the login screen, actions get 401.
func SessionAuth(secret string, mode auth.Mode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := sessionFromRequest(secret, c)
			d := auth.Decide(sess, "", mode)
			if d.Kind != auth.Allow {
				return render(c, d)
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// CurrentSession returns the session stored by SessionAuth, or nil when
// the request is anonymous.
func CurrentSession(c echo.Context) *auth.Session {
	if s, ok := c.Get(sessionKey).(*auth.Session); ok {
		return s
	}
	return nil
}

// sessionFromRequest extracts and verifies a token from the
// Authorization header or the session cookie. Returns nil when absent
// or invalid; the caller decides what absence means.
func sessionFromRequest(secret string, c echo.Context) *auth.Session {
	raw := ""
	if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimPrefix(h, "Bearer ")
	} else if ck, err := c.Cookie(SessionCookie); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		return nil
	}
	sess, err := auth.ParseSession(secret, raw)
	if err != nil {
		return nil
	}
	return sess
}

func render(c echo.Context, d auth.Decision) error {
	switch d.Kind {
	case auth.Redirect:
		return c.Redirect(302, d.Path)
	default:
		msg := "unauthorized"
		if d.Status == 403 {
			msg = "forbidden"
		}
		return c.JSON(d.Status, echo.Map{"error": msg})
	}
}
