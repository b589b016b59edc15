package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/ratelimit"
)

func doLogin(t *testing.T, e *echo.Echo, username string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"username":"`+username+`","password":"whatever1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newLimitedEcho(l *ratelimit.Limiter, p ratelimit.Policy, sawUsername *string) *echo.Echo {
	e := echo.New()
	e.POST("/v1/auth/login", func(c echo.Context) error {
		// The handler must still be able to bind the body the
		// middleware peeked at.
		var body struct {
			Username string `json:"username"`
		}
		if err := c.Bind(&body); err != nil {
			return err
		}
		if sawUsername != nil {
			*sawUsername = body.Username
		}
		return c.NoContent(http.StatusOK)
	}, RateLimitByUsername(l, p, ratelimit.LoginKey))
	return e
}

func TestRateLimitBlocksAfterBudget(t *testing.T) {
	l := ratelimit.NewWithClock(time.Now)
	p := ratelimit.Policy{MaxAttempts: 2, Window: time.Minute}
	e := newLimitedEcho(l, p, nil)

	if rec := doLogin(t, e, "alice"); rec.Code != http.StatusOK {
		t.Fatalf("attempt 1: code = %d", rec.Code)
	}
	if rec := doLogin(t, e, "alice"); rec.Code != http.StatusOK {
		t.Fatalf("attempt 2: code = %d", rec.Code)
	}

	rec := doLogin(t, e, "alice")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("attempt 3: code = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("blocked response missing Retry-After")
	}

	// A different username draws from its own pool.
	if rec := doLogin(t, e, "bob"); rec.Code != http.StatusOK {
		t.Fatalf("other user blocked: code = %d", rec.Code)
	}
}

func TestRateLimitBodyStillReadableDownstream(t *testing.T) {
	l := ratelimit.NewWithClock(time.Now)
	var saw string
	e := newLimitedEcho(l, ratelimit.PolicyLogin, &saw)

	if rec := doLogin(t, e, "alice"); rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if saw != "alice" {
		t.Fatalf("handler bound username %q, want %q", saw, "alice")
	}
}

func TestRateLimitHeadersExposeRemaining(t *testing.T) {
	l := ratelimit.NewWithClock(time.Now)
	p := ratelimit.Policy{MaxAttempts: 5, Window: time.Minute}
	e := newLimitedEcho(l, p, nil)

	rec := doLogin(t, e, "alice")
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Fatalf("X-RateLimit-Remaining = %q, want 4", got)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("X-RateLimit-Limit = %q, want 5", got)
	}
}
