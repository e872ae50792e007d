package core

import (
	"fmt"
	"time"
)

// Period identifies a calendar month. Month is 1-12.
type Period struct {
	Year  int
	Month int
}

// CurrentPeriod returns the month containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: int(now.Month())}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year < 1970 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// Start is midnight of the first day of the month in local time.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.Local)
}

// End is 23:59:59 of the last day of the month. Queries treat it as an
// inclusive upper bound.
func (p Period) End() time.Time {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 23, 59, 59, 0, time.Local)
}

// Days returns the number of days in the month.
func (p Period) Days() int {
	return time.Date(p.Year, time.Month(p.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Contains reports whether t falls inside the month, bounds included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start()) && !t.After(p.End())
}

// Label returns the Vietnamese month label, e.g. "Tháng 3/2025".
func (p Period) Label() string {
	return fmt.Sprintf("Tháng %d/%d", p.Month, p.Year)
}

// Key is a stable cache key such as "2025-03".
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
