package core

import "time"

const (
	// StoreLayout is how transaction dates and filter bounds are written to
	// the store. Bounds are compared as text, so every stored value uses it.
	StoreLayout = "2006-01-02 15:04:05"

	// DayLayout is the calendar-day form accepted from users.
	DayLayout = "2006-01-02"

	// DisplayLayout is used in filter titles and messages.
	DisplayLayout = "Jan 02, 2006"
)

// DefaultTimezone pins date boundaries independently of the host locale.
const DefaultTimezone = "America/New_York"

// StartOfDay formats the first second of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) string {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Format(StoreLayout)
}

// EndOfDay formats the last second of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) string {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, 0, loc).Format(StoreLayout)
}

// ParseDay parses a YYYY-MM-DD string as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, invalid("date", err)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
