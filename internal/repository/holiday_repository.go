package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/barisbulutdemir/ermakRaporlama/internal/model"
)

// HolidayRepo manages the admin-maintained holiday table consumed by
// the calendar expansion.
type HolidayRepo struct{ DB *sql.DB }

func NewHolidayRepo(db *sql.DB) *HolidayRepo { return &HolidayRepo{DB: db} }

// Create inserts a holiday. Days are unique; inserting the same day
// twice returns ErrHolidayExists.
func (r *HolidayRepo) Create(ctx context.Context, day time.Time, halfDay bool) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO holidays (day, is_half_day) VALUES (?,?)", day, halfDay)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrHolidayExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListRange returns holidays inside [from, to] ascending by day.
func (r *HolidayRepo) ListRange(ctx context.Context, from, to time.Time) ([]model.Holiday, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, day, is_half_day FROM holidays WHERE day>=? AND day<=? ORDER BY day", from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hs []model.Holiday
	for rows.Next() {
		var h model.Holiday
		if err := rows.Scan(&h.ID, &h.Day, &h.IsHalfDay); err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, rows.Err()
}

// Delete removes a holiday by id.
func (r *HolidayRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM holidays WHERE id=?", id)
	return affectedOne(res, err)
}
