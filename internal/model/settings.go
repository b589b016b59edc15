package model

import "time"

// SiteSettings is the single-row site configuration table. DebugMode
// only controls whether the central error handler includes internal
// error detail in responses; it never participates in authorization.
type SiteSettings struct {
	ID                uint64    // site_settings.id
	SiteName          string    // site_settings.site_name
	Description       string    // site_settings.description
	AboutText         string    // site_settings.about_text
	ContactEmail      string    // site_settings.contact_email
	ContactPhone      string    // site_settings.contact_phone
	EnableThemeSwitch bool      // site_settings.enable_theme_switch
	DebugMode         bool      // site_settings.debug_mode
	UpdatedAt         time.Time // site_settings.updated_at
}
