package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
)

// ReportRepo reads and mutates service reports and their excluded
// dates. Excluded dates live in a child table and are written inside
// the same transaction as the report row.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

const reportColumns = "id, user_id, site_name, site_color, start_date, end_date, notes, created_at, updated_at"

// Create inserts a report with its excluded dates and returns the new id.
func (r *ReportRepo) Create(ctx context.Context, rep *model.ServiceReport) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO service_reports (user_id, site_name, site_color, start_date, end_date, notes) VALUES (?,?,?,?,?,?)",
		rep.UserID, rep.SiteName, rep.SiteColor, rep.StartDate, rep.EndDate, rep.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := insertExcluded(ctx, tx, uint64(id), rep.ExcludedDates); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites a report's fields and replaces its excluded dates.
// Only the owner may update; the WHERE clause enforces ownership so a
// forged id belonging to someone else updates zero rows.
func (r *ReportRepo) Update(ctx context.Context, rep *model.ServiceReport, ownerID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE service_reports SET site_name=?, site_color=?, start_date=?, end_date=?, notes=? WHERE id=? AND user_id=?",
		rep.SiteName, rep.SiteColor, rep.StartDate, rep.EndDate, rep.Notes, rep.ID, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the report does not exist or it belongs to someone else.
		if exists, err := reportExists(ctx, tx, rep.ID); err != nil {
			return err
		} else if exists {
			return ErrForbidden
		}
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM report_excluded_dates WHERE report_id=?", rep.ID); err != nil {
		return err
	}
	if err := insertExcluded(ctx, tx, rep.ID, rep.ExcludedDates); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID loads one report with its excluded dates.
func (r *ReportRepo) GetByID(ctx context.Context, id uint64) (model.ServiceReport, error) {
	var rep model.ServiceReport
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM service_reports WHERE id=? LIMIT 1", id).
		Scan(&rep.ID, &rep.UserID, &rep.SiteName, &rep.SiteColor, &rep.StartDate,
			&rep.EndDate, &rep.Notes, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return model.ServiceReport{}, err
	}
	rep.ExcludedDates, err = r.excludedDates(ctx, id)
	return rep, err
}

// ListByUser returns a user's reports newest first, excluded dates included.
func (r *ReportRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ServiceReport, error) {
	return r.list(ctx,
		"SELECT "+reportColumns+" FROM service_reports WHERE user_id=? ORDER BY created_at DESC", userID)
}

// ListOverlapping returns a user's reports whose range intersects
// [from, to], for the calendar view.
func (r *ReportRepo) ListOverlapping(ctx context.Context, userID uint64, from, to time.Time) ([]model.ServiceReport, error) {
	return r.list(ctx,
		"SELECT "+reportColumns+" FROM service_reports WHERE user_id=? AND start_date<=? AND end_date>=? ORDER BY start_date",
		userID, to, from)
}

// Delete removes a report owned by ownerID, or any report when the
// caller is an admin (ownerID == 0 skips the ownership check).
func (r *ReportRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	var (
		res sql.Result
		err error
	)
	if ownerID == 0 {
		res, err = r.DB.ExecContext(ctx, "DELETE FROM service_reports WHERE id=?", id)
	} else {
		res, err = r.DB.ExecContext(ctx, "DELETE FROM service_reports WHERE id=? AND user_id=?", id, ownerID)
	}
	return affectedOne(res, err)
}

func (r *ReportRepo) list(ctx context.Context, query string, args ...any) ([]model.ServiceReport, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.ServiceReport
	for rows.Next() {
		var rep model.ServiceReport
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.SiteName, &rep.SiteColor,
			&rep.StartDate, &rep.EndDate, &rep.Notes, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range reports {
		reports[i].ExcludedDates, err = r.excludedDates(ctx, reports[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return reports, nil
}

func (r *ReportRepo) excludedDates(ctx context.Context, reportID uint64) ([]time.Time, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT day FROM report_excluded_dates WHERE report_id=? ORDER BY day", reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func insertExcluded(ctx context.Context, tx *sql.Tx, reportID uint64, days []time.Time) error {
	for _, d := range days {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO report_excluded_dates (report_id, day) VALUES (?,?)", reportID, d); err != nil {
			return err
		}
	}
	return nil
}

func reportExists(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM service_reports WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
