package model

import "time"

// Holiday is a company-wide non-working day shown on the calendar. A
// half-day holiday does not suppress report coverage for that day; a
// full-day one does.
type Holiday struct {
	ID        uint64    // holidays.id
	Day       time.Time // holidays.day (date only, unique)
	IsHalfDay bool      // holidays.is_half_day
}
