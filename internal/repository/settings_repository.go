package repository

import (
	"context"
	"database/sql"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
)

// SettingsRepo manages the single-row site_settings table.
type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

const settingsColumns = "id, site_name, description, about_text, contact_email, contact_phone, enable_theme_switch, debug_mode, updated_at"

// Get returns the settings row. When the table was never seeded it
// returns defaults rather than an error so the site still renders.
func (r *SettingsRepo) Get(ctx context.Context) (model.SiteSettings, error) {
	var s model.SiteSettings
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+settingsColumns+" FROM site_settings ORDER BY id LIMIT 1").
		Scan(&s.ID, &s.SiteName, &s.Description, &s.AboutText, &s.ContactEmail,
			&s.ContactPhone, &s.EnableThemeSwitch, &s.DebugMode, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.SiteSettings{SiteName: "Servis Raporlama", EnableThemeSwitch: true}, nil
	}
	return s, err
}

// Update overwrites the first settings row, creating it when the table
// is empty.
func (r *SettingsRepo) Update(ctx context.Context, s *model.SiteSettings) error {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM site_settings ORDER BY id LIMIT 1").Scan(&id)
	if err == sql.ErrNoRows {
		_, err = r.DB.ExecContext(ctx,
			"INSERT INTO site_settings (site_name, description, about_text, contact_email, contact_phone, enable_theme_switch, debug_mode) VALUES (?,?,?,?,?,?,?)",
			s.SiteName, s.Description, s.AboutText, s.ContactEmail, s.ContactPhone, s.EnableThemeSwitch, s.DebugMode)
		return err
	}
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE site_settings SET site_name=?, description=?, about_text=?, contact_email=?, contact_phone=?, enable_theme_switch=?, debug_mode=? WHERE id=?",
		s.SiteName, s.Description, s.AboutText, s.ContactEmail, s.ContactPhone, s.EnableThemeSwitch, s.DebugMode, id)
	return err
}
