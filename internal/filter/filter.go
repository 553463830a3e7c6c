// Package filter holds the immutable description of the active transaction
// query: date bounds, bank, category, type and ordering, together with the
// title and empty-state message shown for it.
//
// A Filter is always replaced as a whole. Callers build a new one from
// Params with New, or go back to Default; fields are never merged.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finledger/internal/core"
)

const (
	Ascending  Order = "ascending"
	Descending Order = "descending"
)

const (
	PresetNone      Preset = "none"
	PresetToday     Preset = "today"
	PresetSingleDay Preset = "singleDay"
	PresetThisWeek  Preset = "thisWeek"
	PresetCustom    Preset = "custom"
)

type (
	// Order sorts by transaction date.
	Order string

	// Preset records how the date range was chosen.
	Preset string

	// DateRange bounds are inclusive StoreLayout strings in the reference
	// timezone. An empty bound is open.
	DateRange struct {
		Start string
		End   string
	}

	Filter struct {
		DateRange  DateRange
		BankID     *int64
		CategoryID *int64
		Type       *core.TransactionType
		Order      Order
		Preset     Preset
		Title      string
		Message    string
	}

	// Params is the raw input of the filter form. Only the fields relevant
	// to Preset are read: Day for PresetSingleDay, Start and End for
	// PresetCustom.
	Params struct {
		Preset     Preset
		Day        time.Time
		Start      time.Time
		End        time.Time
		BankID     *int64
		CategoryID *int64
		Type       *core.TransactionType
		Order      Order
	}
)

var (
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidOrder     = errors.New("order must be ascending or descending")
	ErrInvalidPreset    = errors.New("unknown date range preset")
	ErrMissingDay       = errors.New("a day is required for the single day preset")
	ErrInvalidReference = errors.New("bank and category ids must be positive")
)

func invalid(field string, err error) error {
	return &core.ValidationError{Field: field, Err: err}
}

// Default is the unconstrained, newest-first filter titled after the
// current month.
func Default(now time.Time, loc *time.Location) Filter {
	now = now.In(loc)
	return Filter{
		Order:   Descending,
		Preset:  PresetNone,
		Title:   fmt.Sprintf("%s, %d - Summary", now.Format("January"), now.Year()),
		Message: fmt.Sprintf("No transactions for %s yet.", now.Format("January")),
	}
}

// New validates p and builds the Filter it describes. This is the only
// place date ordering is checked; the query builder trusts its input.
func New(p Params, now time.Time, loc *time.Location) (Filter, error) {
	order, err := resolveOrder(p.Order)
	if err != nil {
		return Filter{}, err
	}
	if (p.BankID != nil && *p.BankID <= 0) || (p.CategoryID != nil && *p.CategoryID <= 0) {
		return Filter{}, invalid("filter", ErrInvalidReference)
	}
	if p.Type != nil && !p.Type.Valid() {
		return Filter{}, invalid("type", core.ErrInvalidType)
	}

	preset := p.Preset
	if preset == "" {
		preset = PresetNone
		if !p.Start.IsZero() || !p.End.IsZero() {
			preset = PresetCustom
		}
	}

	var start, end time.Time
	switch preset {
	case PresetNone:
	case PresetToday:
		start, end = now, now
	case PresetSingleDay:
		if p.Day.IsZero() {
			return Filter{}, invalid("day", ErrMissingDay)
		}
		start, end = p.Day, p.Day
	case PresetThisWeek:
		start, end = WeekBounds(now, loc)
	case PresetCustom:
		start, end = p.Start, p.End
		if !start.IsZero() && !end.IsZero() && dayAfter(start, end, loc) {
			return Filter{}, invalid("date_range", ErrInvalidDateRange)
		}
	default:
		return Filter{}, invalid("preset", ErrInvalidPreset)
	}

	f := Filter{
		BankID:     p.BankID,
		CategoryID: p.CategoryID,
		Type:       p.Type,
		Order:      order,
		Preset:     preset,
	}
	if !start.IsZero() {
		f.DateRange.Start = core.StartOfDay(start, loc)
	}
	if !end.IsZero() {
		f.DateRange.End = core.EndOfDay(end, loc)
	}
	f.Title, f.Message = describe(start, end, now, loc)
	return f, nil
}

// WeekBounds returns the Sunday and Saturday of the week containing now.
func WeekBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := now.In(loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	return start, start.AddDate(0, 0, 6)
}

// ParseOrder accepts ascending/descending and their asc/desc short forms.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	}
	return "", invalid("order", ErrInvalidOrder)
}

// ParsePreset accepts the preset names case-insensitively.
func ParsePreset(s string) (Preset, error) {
	for _, p := range []Preset{PresetNone, PresetToday, PresetSingleDay, PresetThisWeek, PresetCustom} {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", invalid("preset", ErrInvalidPreset)
}

// HasConstraints reports whether f narrows the transaction set at all.
func (f Filter) HasConstraints() bool {
	return f.DateRange.Start != "" || f.DateRange.End != "" ||
		f.BankID != nil || f.CategoryID != nil || f.Type != nil
}

func (f Filter) Ascending() bool {
	return f.Order == Ascending
}

// Clone returns a copy of f whose reference fields point at fresh values.
func (f Filter) Clone() Filter {
	f.BankID = clonePtr(f.BankID)
	f.CategoryID = clonePtr(f.CategoryID)
	f.Type = clonePtr(f.Type)
	return f
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func resolveOrder(o Order) (Order, error) {
	switch o {
	case "":
		return Descending, nil
	case Ascending, Descending:
		return o, nil
	}
	return "", invalid("order", ErrInvalidOrder)
}

func dayAfter(a, b time.Time, loc *time.Location) bool {
	return core.StartOfDay(a, loc) > core.StartOfDay(b, loc)
}

func describe(start, end, now time.Time, loc *time.Location) (title, message string) {
	format := func(t time.Time) string { return t.In(loc).Format(core.DisplayLayout) }

	switch {
	case !start.IsZero() && !end.IsZero():
		if core.SameDay(start, end, loc) {
			return format(start), "No transactions for " + format(start)
		}
		span := format(start) + " - " + format(end)
		return span, "No transactions from " + span
	case !start.IsZero():
		span := format(start) + " - Today"
		return span, "No transactions for " + span
	case !end.IsZero():
		span := "All - " + format(end)
		return span, "No transactions for " + span
	}
	d := Default(now, loc)
	return d.Title, d.Message
}
