package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/barisbulutdemir/ermakRaporlama/internal/auth"
	"github.com/barisbulutdemir/ermakRaporlama/internal/config"
	"github.com/barisbulutdemir/ermakRaporlama/internal/ratelimit"
	"github.com/barisbulutdemir/ermakRaporlama/internal/repository"
	"github.com/barisbulutdemir/ermakRaporlama/internal/utils"
)

const testSecret = "test-secret"

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, *ratelimit.Limiter) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	limiter := ratelimit.NewWithClock(time.Now)
	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	h := NewAuthHandler(cfg, users, tokens, auth.NewService(users), limiter, nil)
	return h, mock, limiter
}

func postJSON(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func userRowsFor(t *testing.T, id uint64, username, password, role string, approved, active bool) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "username", "password_hash", "name", "role",
		"approved", "is_active", "approved_by", "approved_at", "created_at", "updated_at",
	}).AddRow(id, username, hash, "Test User", role, approved, active, nil, nil, now, now)
}

func TestLoginSuccessIssuesPairAndResetsLimiter(t *testing.T) {
	h, mock, limiter := newAuthHandler(t)

	// A prior failed attempt left a throttle entry behind.
	limiter.Check(ratelimit.LoginKey("alice"), ratelimit.PolicyLogin)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username=?")).
		WithArgs("alice").
		WillReturnRows(userRowsFor(t, 7, "alice", "correct-horse", "USER", true, true))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := postJSON(t, "/v1/auth/login", `{"username":"alice","password":"correct-horse"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User struct {
			ID   uint64 `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
		Refresh struct {
			Token string `json:"token"`
		} `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, uint64(7), resp.User.ID)
	require.NotEmpty(t, resp.Access.Token)
	require.NotEmpty(t, resp.Refresh.Token)

	// The issued token must parse back to the same identity.
	sess, err := auth.ParseSession(testSecret, resp.Access.Token)
	require.NoError(t, err)
	require.Equal(t, uint64(7), sess.UserID)

	// Success cleared the throttle: a fresh window starts.
	res := limiter.Check(ratelimit.LoginKey("alice"), ratelimit.PolicyLogin)
	require.Equal(t, ratelimit.PolicyLogin.MaxAttempts-1, res.Remaining)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownUserAndWrongPasswordSameBody(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username=?")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"})) // no rows
	c1, rec1 := postJSON(t, "/v1/auth/login", `{"username":"ghost","password":"whatever1"}`)
	require.NoError(t, h.Login(c1))

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username=?")).
		WithArgs("alice").
		WillReturnRows(userRowsFor(t, 7, "alice", "right-password", "USER", true, true))
	c2, rec2 := postJSON(t, "/v1/auth/login", `{"username":"alice","password":"wrong-password"}`)
	require.NoError(t, h.Login(c2))

	require.Equal(t, http.StatusUnauthorized, rec1.Code)
	require.Equal(t, http.StatusUnauthorized, rec2.Code)
	require.JSONEq(t, rec1.Body.String(), rec2.Body.String())
}

func TestLoginPendingApproval(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username=?")).
		WithArgs("bob").
		WillReturnRows(userRowsFor(t, 8, "bob", "secret-pw", "USER", false, true))

	c, rec := postJSON(t, "/v1/auth/login", `{"username":"bob","password":"secret-pw"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "pending admin approval")
}

func TestLoginInactive(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username=?")).
		WithArgs("carol").
		WillReturnRows(userRowsFor(t, 9, "carol", "secret-pw", "USER", true, false))

	c, rec := postJSON(t, "/v1/auth/login", `{"username":"carol","password":"secret-pw"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "inactive")
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("dave", sqlmock.AnyArg(), "Dave", "USER", false).
		WillReturnResult(sqlmock.NewResult(11, 1))

	c, rec := postJSON(t, "/v1/auth/register", `{"username":"dave","name":"Dave","password":"longenough"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "pending admin approval")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterValidation(t *testing.T) {
	h, _, _ := newAuthHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"ab","name":"A","password":"longenough"}`},
		{"missing name", `{"username":"abc","name":"","password":"longenough"}`},
		{"short password", `{"username":"abc","name":"A","password":"tiny"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := postJSON(t, "/v1/auth/register", tc.body)
			require.NoError(t, h.Register(c))
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRefreshRotationRefusesSuspendedUser(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	raw := "some-raw-refresh-token"
	hash := utils.HashRefreshRaw(raw)

	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash=?")).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(9, time.Now().UTC().Add(time.Hour), nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=NOW()")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(9)).
		WillReturnRows(userRowsFor(t, 9, "carol", "x-password", "USER", true, false))

	c, rec := postJSON(t, "/v1/auth/refresh", `{"refresh_token":"`+raw+`"}`)
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshAbortsWhenRevokeFails(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	raw := "rotating-refresh-token"
	hash := utils.HashRefreshRaw(raw)

	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash=?")).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(9, time.Now().UTC().Add(time.Hour), nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at=NOW()")).
		WillReturnError(errors.New("connection lost"))

	c, rec := postJSON(t, "/v1/auth/refresh", `{"refresh_token":"`+raw+`"}`)
	// A live old token plus a fresh pair would defeat rotation, so the
	// request must fail instead of issuing anything.
	require.Error(t, h.Refresh(c))
	require.NotContains(t, rec.Body.String(), "refresh_token")
	require.NoError(t, mock.ExpectationsWereMet())
}
