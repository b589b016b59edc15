package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/barisbulutdemir/ermakRaporlama/internal/config"
	"github.com/barisbulutdemir/ermakRaporlama/internal/middleware"
	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
	"github.com/barisbulutdemir/ermakRaporlama/internal/repository"
)

// AdminUserHandler exposes the account-management endpoints. Every
// route is behind RequireRole(ADMIN); on top of that, every mutation
// refuses to target the caller's own id. The role middleware cannot
// enforce that part because it never sees the mutation's target.
type AdminUserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAdminUserHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AdminUserHandler {
	return &AdminUserHandler{Cfg: cfg, Users: u, Tokens: t}
}

type adminUserPart struct {
	ID         uint64     `json:"id"`
	Username   string     `json:"username"`
	Name       string     `json:"name"`
	Role       model.Role `json:"role"`
	Approved   bool       `json:"approved"`
	IsActive   bool       `json:"is_active"`
	ApprovedBy *uint64    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func toAdminUserPart(u model.User) adminUserPart {
	return adminUserPart{
		ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role,
		Approved: u.Approved, IsActive: u.IsActive,
		ApprovedBy: u.ApprovedBy, ApprovedAt: u.ApprovedAt, CreatedAt: u.CreatedAt,
	}
}

// List returns all users, optionally filtered with ?filter=approved|pending.
func (h *AdminUserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	filter := c.QueryParam("filter")
	out := make([]adminUserPart, 0, len(users))
	for _, u := range users {
		if filter == "approved" && !u.Approved {
			continue
		}
		if filter == "pending" && u.Approved {
			continue
		}
		out = append(out, toAdminUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type createUserReq struct {
	Username string `json:"username" form:"username"`
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// Create lets an admin add a pre-approved account directly.
func (h *AdminUserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if len(req.Username) < 3 || req.Name == "" || len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, name and password (min 6) required"})
	}
	role, ok := model.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if !ok {
		role = model.RoleUser
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Password, req.Name, role, true, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
		return fmt.Errorf("create user: %w", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": uid})
}

// Approve grants a pending account access, recording the approver.
func (h *AdminUserHandler) Approve(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess := middleware.CurrentSession(c)
	if err := h.Users.Approve(ctx, id, sess.UserID); err != nil {
		return h.mutationErr(c, err, "approve user")
	}
	return c.NoContent(http.StatusNoContent)
}

type roleReq struct {
	Role string `json:"role" form:"role"`
}

// SetRole changes a user's role. Self-demotion and self-promotion are
// both refused so an admin cannot lock the system or escalate through
// a replayed request.
func (h *AdminUserHandler) SetRole(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if h.isSelf(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot change your own role"})
	}

	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role, ok := model.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be USER or ADMIN"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetRole(ctx, id, role); err != nil {
		return h.mutationErr(c, err, "set role")
	}
	return c.NoContent(http.StatusNoContent)
}

type activeReq struct {
	Active bool `json:"active" form:"active"`
}

// SetActive toggles suspension. Deactivating also revokes the target's
// refresh tokens so suspension bites at the next rotation instead of
// waiting out the refresh TTL.
func (h *AdminUserHandler) SetActive(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if h.isSelf(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot deactivate your own account"})
	}

	var req activeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetActive(ctx, id, req.Active); err != nil {
		return h.mutationErr(c, err, "set active")
	}
	if !req.Active {
		_ = h.Tokens.RevokeAllForUser(ctx, id)
	}
	return c.NoContent(http.StatusNoContent)
}

type passwordReq struct {
	NewPassword string `json:"new_password" form:"new_password"`
}

// ResetPassword sets a new password for a user. Targeting yourself is
// refused; admins change their own password through the profile flow.
func (h *AdminUserHandler) ResetPassword(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if h.isSelf(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot reset your own password here"})
	}

	var req passwordReq
	if err := c.Bind(&req); err != nil || len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_password (min 6) required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SetPassword(ctx, id, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return h.mutationErr(c, err, "reset password")
	}
	_ = h.Tokens.RevokeAllForUser(ctx, id)
	return c.NoContent(http.StatusNoContent)
}

// Delete removes an account and, via the FK cascade, its reports. The
// self-guard holds regardless of role: an admin cannot delete
// themselves even though they can delete any other admin.
func (h *AdminUserHandler) Delete(c echo.Context) error {
	id, err := targetID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if h.isSelf(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot delete your own account"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return h.mutationErr(c, err, "delete user")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminUserHandler) isSelf(c echo.Context, target uint64) bool {
	sess := middleware.CurrentSession(c)
	return sess != nil && sess.UserID == target
}

func (h *AdminUserHandler) mutationErr(c echo.Context, err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return fmt.Errorf("%s: %w", op, err)
}

func targetID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
