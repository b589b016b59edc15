package router

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/repository"
)

// NewHTTPErrorHandler returns the top-level error boundary. Expected
// business conditions never reach it (handlers return them as JSON);
// what arrives here is either an echo.HTTPError from routing/binding
// or a genuinely unexpected failure. Unexpected failures are always
// logged server-side; their detail reaches the client only while the
// site-wide debug_mode flag is on. The flag is display policy only —
// authorization decisions never consult it.
func NewHTTPErrorHandler(settings *repository.SettingsRepo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if he, ok := err.(*echo.HTTPError); ok {
			msg := he.Message
			if s, isStr := msg.(string); isStr {
				msg = echo.Map{"error": s}
			}
			_ = c.JSON(he.Code, msg)
			return
		}

		log.Printf("internal error: %s %s: %v", c.Request().Method, c.Path(), err)

		body := echo.Map{"error": "something went wrong, please try again later"}
		if debugEnabled(settings) {
			body["detail"] = err.Error()
		}
		_ = c.JSON(http.StatusInternalServerError, body)
	}
}

func debugEnabled(settings *repository.SettingsRepo) bool {
	if settings == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := settings.Get(ctx)
	if err != nil {
		return false
	}
	return s.DebugMode
}
