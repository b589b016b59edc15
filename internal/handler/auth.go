package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/auth"
	"github.com/barisbulutdemir/ermakRaporlama/internal/config"
	"github.com/barisbulutdemir/ermakRaporlama/internal/middleware"
	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
	"github.com/barisbulutdemir/ermakRaporlama/internal/queue"
	"github.com/barisbulutdemir/ermakRaporlama/internal/ratelimit"
	"github.com/barisbulutdemir/ermakRaporlama/internal/repository"
	"github.com/barisbulutdemir/ermakRaporlama/internal/utils"
)

// EventPublisher is the outbound side of the registration workflow.
// The RabbitMQ publisher satisfies it; tests stub it out.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Verifier *auth.Service
	Limiter  *ratelimit.Limiter
	Events   EventPublisher
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo,
	v *auth.Service, l *ratelimit.Limiter, ev EventPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Verifier: v, Limiter: l, Events: ev}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username" form:"username"`
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
}
type loginReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64     `json:"id"`
	Username string     `json:"username"`
	Name     string     `json:"name"`
	Role     model.Role `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Register creates an unapproved USER account. The new account cannot
// log in until an admin approves it; the response says so instead of
// issuing tokens. The register rate-limit policy wraps this route.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Username) < 3 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be at least 3 characters"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Password, req.Name, model.RoleUser, false, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		return fmt.Errorf("create user: %w", err)
	}

	if h.Events != nil {
		ev := queue.UserRegisteredEvent{
			UserID:       uid,
			Username:     req.Username,
			Name:         req.Name,
			RegisteredAt: time.Now().UTC().Format(time.RFC3339),
		}
		// Best effort: a broker outage must not fail the registration.
		go func() { _ = h.Events.PublishUserRegistered(context.Background(), ev) }()
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration received, your account is pending admin approval",
	})
}

// Login verifies credentials and returns a token pair. The login
// rate-limit policy wraps this route; a successful login clears the
// caller's throttle entry.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Verifier.Authorize(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrBadCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": auth.ErrBadCredentials.Error()})
		case errors.Is(err, auth.ErrPendingApproval):
			return c.JSON(http.StatusForbidden, echo.Map{"error": auth.ErrPendingApproval.Error()})
		case errors.Is(err, auth.ErrInactive):
			return c.JSON(http.StatusForbidden, echo.Map{"error": auth.ErrInactive.Error()})
		}
		return fmt.Errorf("authorize: %w", err)
	}

	if h.Limiter != nil {
		h.Limiter.Reset(ratelimit.LoginKey(req.Username))
	}
	return h.issuePair(c, ctx, u, http.StatusOK)
}

// Refresh validates a refresh token by hash, revokes it and issues a
// new pair. The user row is re-read here, so role changes and
// suspensions take effect on rotation even though live access tokens
// keep their issued claims.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	// Rotation must not issue a new pair while the old token stays live.
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return fmt.Errorf("revoke rotated token: %w", err)
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return fmt.Errorf("load user: %w", err)
	}
	if !u.CanAuthenticate() {
		// Approval was revoked or the account was suspended since issuance.
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is not active"})
	}
	return h.issuePair(c, ctx, &u, http.StatusOK)
}

// Logout revokes the presented refresh token, or with a valid session
// and no body token, every token the user holds. The access token
// itself is simply discarded client-side.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken == "" {
		sess := middleware.CurrentSession(c)
		if sess == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide refresh_token or a session"})
		}
		if err := h.Tokens.RevokeAllForUser(ctx, sess.UserID); err != nil {
			return fmt.Errorf("revoke all: %w", err)
		}
		clearSessionCookie(c)
		return c.NoContent(http.StatusNoContent)
	}

	hash := utils.HashRefreshRaw(refreshToken)
	if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's session claims.
func (h *AuthHandler) Me(c echo.Context) error {
	sess := middleware.CurrentSession(c)
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  sess.UserID,
		"username": sess.Username,
		"role":     sess.Role,
	})
}

func (h *AuthHandler) issuePair(c echo.Context, ctx context.Context, u *model.User, status int) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u, h.Cfg.AccessTTLMin)
	if err != nil {
		return fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return fmt.Errorf("issue refresh: %w", err)
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return fmt.Errorf("save refresh: %w", err)
	}

	// Browser clients get the access token as a cookie too.
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    access.Token,
		Path:     "/",
		Expires:  access.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(status, authResp{
		User:    userPart{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
