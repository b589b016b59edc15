package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/barisbulutdemir/ermakRaporlama/internal/middleware"
	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
	"github.com/barisbulutdemir/ermakRaporlama/internal/repository"
)

// SettingsHandler serves the single-row site configuration. Reads are
// public (and cached); updates are ADMIN-gated by the router.
type SettingsHandler struct {
	Settings    *repository.SettingsRepo
	Redis       *redis.Client // for cache invalidation on update, may be nil
	CachePrefix string
}

func NewSettingsHandler(r *repository.SettingsRepo, rdb *redis.Client, cachePrefix string) *SettingsHandler {
	return &SettingsHandler{Settings: r, Redis: rdb, CachePrefix: cachePrefix}
}

type settingsPayload struct {
	SiteName          string `json:"site_name" form:"site_name"`
	Description       string `json:"description" form:"description"`
	AboutText         string `json:"about_text" form:"about_text"`
	ContactEmail      string `json:"contact_email" form:"contact_email"`
	ContactPhone      string `json:"contact_phone" form:"contact_phone"`
	EnableThemeSwitch bool   `json:"enable_theme_switch" form:"enable_theme_switch"`
	DebugMode         bool   `json:"debug_mode" form:"debug_mode"`
}

// Get returns the current settings. Public: the site chrome needs
// these before anyone logs in.
func (h *SettingsHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	return c.JSON(http.StatusOK, settingsPayload{
		SiteName:          s.SiteName,
		Description:       s.Description,
		AboutText:         s.AboutText,
		ContactEmail:      s.ContactEmail,
		ContactPhone:      s.ContactPhone,
		EnableThemeSwitch: s.EnableThemeSwitch,
		DebugMode:         s.DebugMode,
	})
}

// Update overwrites the settings row and drops the cached copy.
func (h *SettingsHandler) Update(c echo.Context) error {
	var req settingsPayload
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.SiteName = strings.TrimSpace(req.SiteName)
	if req.SiteName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "site_name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s := &model.SiteSettings{
		SiteName:          req.SiteName,
		Description:       req.Description,
		AboutText:         req.AboutText,
		ContactEmail:      req.ContactEmail,
		ContactPhone:      req.ContactPhone,
		EnableThemeSwitch: req.EnableThemeSwitch,
		DebugMode:         req.DebugMode,
	}
	if err := h.Settings.Update(ctx, s); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	middleware.InvalidateCachePrefix(ctx, h.Redis, h.CachePrefix)
	return c.NoContent(http.StatusNoContent)
}
