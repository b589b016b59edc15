package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/auth"
	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
)

// RequireRole returns middleware that admits only sessions holding the
// given role. It assumes SessionAuth ran earlier in the chain; an
// absent session is treated exactly like a missing token. The denial
// shape follows the mode: pages bounce to the dashboard, actions get 403.
func RequireRole(role model.Role, mode auth.Mode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := auth.Decide(CurrentSession(c), role, mode)
			if d.Kind != auth.Allow {
				return render(c, d)
			}
			return next(c)
		}
	}
}
