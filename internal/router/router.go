// Package router wires handlers, middleware and the error boundary
// onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/barisbulutdemir/ermakRaporlama/internal/auth"
	"github.com/barisbulutdemir/ermakRaporlama/internal/config"
	"github.com/barisbulutdemir/ermakRaporlama/internal/handler"
	"github.com/barisbulutdemir/ermakRaporlama/internal/middleware"
	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
	"github.com/barisbulutdemir/ermakRaporlama/internal/ratelimit"
)

// Handlers groups everything route registration needs.
type Handlers struct {
	Auth     *handler.AuthHandler
	Admin    *handler.AdminUserHandler
	Reports  *handler.ReportHandler
	Holidays *handler.HolidayHandler
	Settings *handler.SettingsHandler
	Uploads  *handler.UploadHandler
}

// Register mounts every route. Route groups:
//
//	/healthz            liveness, no auth
//	/v1/auth/*          login, register, refresh, logout — rate limited, no session
//	/v1/settings        public read (cached), ADMIN write
//	/v1/*               session-gated user surface
//	/v1/admin/*         ADMIN-only management surface
func Register(e *echo.Echo, cfg config.Config, h Handlers, limiter *ratelimit.Limiter, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated auth flows. The limiter middleware spends an
	// attempt before the handler runs, so abandoned requests count.
	ag := e.Group("/v1/auth")
	ag.POST("/login", h.Auth.Login,
		middleware.RateLimitByUsername(limiter, ratelimit.PolicyLogin, ratelimit.LoginKey))
	ag.POST("/register", h.Auth.Register,
		middleware.RateLimitByUsername(limiter, ratelimit.PolicyRegister, ratelimit.RegisterKey))
	ag.POST("/refresh", h.Auth.Refresh)
	ag.POST("/logout", h.Auth.Logout) // refresh token in body, no session needed

	// Public settings read, cached in Redis when available.
	cacheCfg := config.LoadCacheConfig()
	e.GET("/v1/settings", h.Settings.Get, middleware.NewRedisCache(cacheCfg, rdb))

	// Session-gated user surface.
	v1 := e.Group("/v1")
	v1.Use(middleware.SessionAuth(cfg.JWTSecret, auth.ActionMode))
	v1.GET("/me", h.Auth.Me)
	v1.POST("/logout", h.Auth.Logout) // logout-everywhere via session

	v1.GET("/reports", h.Reports.List)
	v1.POST("/reports", h.Reports.Create)
	v1.GET("/reports/calendar", h.Reports.Calendar)
	v1.GET("/reports/:id", h.Reports.Get)
	v1.PUT("/reports/:id", h.Reports.Update)
	v1.DELETE("/reports/:id", h.Reports.Delete)

	v1.GET("/holidays", h.Holidays.List)
	v1.POST("/uploads", h.Uploads.Upload)

	// ADMIN-only management surface.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.SessionAuth(cfg.JWTSecret, auth.ActionMode))
	admin.Use(middleware.RequireRole(model.RoleAdmin, auth.ActionMode))

	admin.GET("/users", h.Admin.List)
	admin.POST("/users", h.Admin.Create)
	admin.POST("/users/:id/approve", h.Admin.Approve)
	admin.PUT("/users/:id/role", h.Admin.SetRole)
	admin.PUT("/users/:id/active", h.Admin.SetActive)
	admin.PUT("/users/:id/password", h.Admin.ResetPassword)
	admin.DELETE("/users/:id", h.Admin.Delete)

	admin.POST("/holidays", h.Holidays.Create)
	admin.DELETE("/holidays/:id", h.Holidays.Delete)
	admin.PUT("/settings", h.Settings.Update)

	// Stored attachments are served statically.
	e.Static("/uploads", cfg.UploadDir)
}
