package model

import "time"

// ServiceReport models a row in the `service_reports` table. A report
// covers a contiguous date range at a site; individual days inside the
// range can be excluded (days not actually worked). Reports belong to
// the user who created them and are deleted with the user.
type ServiceReport struct {
	ID            uint64      // service_reports.id
	UserID        uint64      // service_reports.user_id
	SiteName      string      // service_reports.site_name
	SiteColor     string      // service_reports.site_color (hex, may be empty)
	StartDate     time.Time   // service_reports.start_date (date only)
	EndDate       time.Time   // service_reports.end_date (date only)
	Notes         string      // service_reports.notes
	ExcludedDates []time.Time // report_excluded_dates.day, ascending
	CreatedAt     time.Time   // service_reports.created_at
	UpdatedAt     time.Time   // service_reports.updated_at
}

// Covers reports whether day falls inside the report's range and is not
// excluded. Comparison is calendar-day based, ignoring time of day.
func (r *ServiceReport) Covers(day time.Time) bool {
	d := truncateDay(day)
	if d.Before(truncateDay(r.StartDate)) || d.After(truncateDay(r.EndDate)) {
		return false
	}
	for _, ex := range r.ExcludedDates {
		if truncateDay(ex).Equal(d) {
			return false
		}
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
