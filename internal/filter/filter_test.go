package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
)

// Wednesday.
var now = time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 30, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestDefault(t *testing.T) {
	f := Default(now, time.UTC)

	assert.False(t, f.HasConstraints())
	assert.Equal(t, Descending, f.Order)
	assert.Equal(t, PresetNone, f.Preset)
	assert.Equal(t, "March, 2024 - Summary", f.Title)
	assert.Equal(t, "No transactions for March yet.", f.Message)
}

func TestNew_Presets(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		want    DateRange
		title   string
		message string
	}{
		{
			name:    "none ignores dates",
			params:  Params{Preset: PresetNone, Start: day(2024, 1, 1)},
			want:    DateRange{},
			title:   "March, 2024 - Summary",
			message: "No transactions for March yet.",
		},
		{
			name:    "today",
			params:  Params{Preset: PresetToday},
			want:    DateRange{Start: "2024-03-06 00:00:00", End: "2024-03-06 23:59:59"},
			title:   "Mar 06, 2024",
			message: "No transactions for Mar 06, 2024",
		},
		{
			name:    "single day",
			params:  Params{Preset: PresetSingleDay, Day: day(2024, 1, 1)},
			want:    DateRange{Start: "2024-01-01 00:00:00", End: "2024-01-01 23:59:59"},
			title:   "Jan 01, 2024",
			message: "No transactions for Jan 01, 2024",
		},
		{
			name:    "this week starts on sunday",
			params:  Params{Preset: PresetThisWeek},
			want:    DateRange{Start: "2024-03-03 00:00:00", End: "2024-03-09 23:59:59"},
			title:   "Mar 03, 2024 - Mar 09, 2024",
			message: "No transactions from Mar 03, 2024 - Mar 09, 2024",
		},
		{
			name:    "custom both bounds",
			params:  Params{Preset: PresetCustom, Start: day(2024, 1, 1), End: day(2024, 1, 31)},
			want:    DateRange{Start: "2024-01-01 00:00:00", End: "2024-01-31 23:59:59"},
			title:   "Jan 01, 2024 - Jan 31, 2024",
			message: "No transactions from Jan 01, 2024 - Jan 31, 2024",
		},
		{
			name:    "custom start only is open ended",
			params:  Params{Preset: PresetCustom, Start: day(2024, 2, 1)},
			want:    DateRange{Start: "2024-02-01 00:00:00"},
			title:   "Feb 01, 2024 - Today",
			message: "No transactions for Feb 01, 2024 - Today",
		},
		{
			name:    "custom end only is open ended",
			params:  Params{Preset: PresetCustom, End: day(2024, 2, 1)},
			want:    DateRange{End: "2024-02-01 23:59:59"},
			title:   "All - Feb 01, 2024",
			message: "No transactions for All - Feb 01, 2024",
		},
		{
			name:    "empty preset with bounds means custom",
			params:  Params{Start: day(2024, 2, 1), End: day(2024, 2, 1)},
			want:    DateRange{Start: "2024-02-01 00:00:00", End: "2024-02-01 23:59:59"},
			title:   "Feb 01, 2024",
			message: "No transactions for Feb 01, 2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.params, now, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.DateRange)
			assert.Equal(t, tt.title, f.Title)
			assert.Equal(t, tt.message, f.Message)
			assert.Equal(t, Descending, f.Order)
		})
	}
}

func TestNew_KeepsReferencesAndOrder(t *testing.T) {
	typ := core.Income
	f, err := New(Params{BankID: ptr[int64](3), CategoryID: ptr[int64](11), Type: &typ, Order: Ascending}, now, time.UTC)
	require.NoError(t, err)

	assert.True(t, f.HasConstraints())
	assert.True(t, f.Ascending())
	assert.Equal(t, int64(3), *f.BankID)
	assert.Equal(t, int64(11), *f.CategoryID)
	assert.Equal(t, core.Income, *f.Type)
	assert.Equal(t, PresetNone, f.Preset)
}

func TestNew_Rejects(t *testing.T) {
	bad := core.TransactionType("Transfer")
	tests := []struct {
		name   string
		params Params
		want   error
	}{
		{"start after end", Params{Preset: PresetCustom, Start: day(2024, 2, 2), End: day(2024, 2, 1)}, ErrInvalidDateRange},
		{"single day without day", Params{Preset: PresetSingleDay}, ErrMissingDay},
		{"unknown preset", Params{Preset: "lastYear"}, ErrInvalidPreset},
		{"unknown order", Params{Order: "random"}, ErrInvalidOrder},
		{"zero bank", Params{BankID: ptr[int64](0)}, ErrInvalidReference},
		{"negative category", Params{CategoryID: ptr[int64](-1)}, ErrInvalidReference},
		{"unknown type", Params{Type: &bad}, core.ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params, now, time.UTC)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, core.IsValidation(err))
		})
	}
}

func TestNew_SameDayCustomRangeIsAccepted(t *testing.T) {
	// Different times on the same calendar day must not count as reversed.
	start := time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	f, err := New(Params{Preset: PresetCustom, Start: start, End: end}, now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "Feb 01, 2024", f.Title)
}

func TestNew_UsesReferenceTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 02:00 UTC on Mar 7 is still Mar 6 five hours west.
	late := time.Date(2024, 3, 7, 2, 0, 0, 0, time.UTC)
	f, err := New(Params{Preset: PresetToday}, late, loc)
	require.NoError(t, err)
	assert.Equal(t, DateRange{Start: "2024-03-06 00:00:00", End: "2024-03-06 23:59:59"}, f.DateRange)
}

func TestWeekBounds_OnSunday(t *testing.T) {
	sunday := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)
	start, end := WeekBounds(sunday, time.UTC)
	assert.Equal(t, "2024-03-03", start.Format(core.DayLayout))
	assert.Equal(t, "2024-03-09", end.Format(core.DayLayout))
}

func TestParseOrderAndPreset(t *testing.T) {
	o, err := ParseOrder("asc")
	require.NoError(t, err)
	assert.Equal(t, Ascending, o)

	o, err = ParseOrder("")
	require.NoError(t, err)
	assert.Equal(t, Descending, o)

	_, err = ParseOrder("sideways")
	assert.ErrorIs(t, err, ErrInvalidOrder)

	p, err := ParsePreset("thisweek")
	require.NoError(t, err)
	assert.Equal(t, PresetThisWeek, p)

	_, err = ParsePreset("fortnight")
	assert.ErrorIs(t, err, ErrInvalidPreset)
}
