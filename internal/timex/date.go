package timex

import (
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
)

// ParseDate parses a strict YYYY-MM-DD calendar date. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(common.DateLayout, s, time.UTC)
}

// FormatDate renders the calendar fields of t as YYYY-MM-DD, ignoring its
// location, so a DATE column read back with any offset keeps its day.
func FormatDate(t time.Time) string {
	return CivilDay(t).Format(common.DateLayout)
}

// CivilDay drops the clock and location of t and returns midnight UTC of the
// same calendar day.
func CivilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return CivilDay(now.In(loc))
}

// DaysBetween returns the number of whole calendar days from a to b.
// It is negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(CivilDay(b).Sub(CivilDay(a)).Hours() / 24)
}

// MonthRange returns [first day of month, first day of next month).
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
