// Package weeks provides Monday-aligned week bucketing for daily observations.
//
// The engine works with ordinal week indices rather than raw dates: index 0 is
// the week containing the earliest date in the dataset, and every later week
// counts up from there.
package weeks

import (
	"time"

	"github.com/pricelab/repricing-effect/pkg/constants"
)

// DateLayout is the format expected for dates in input tables.
const DateLayout = constants.DateLayout

// MustParseDate parses a date string using DateLayout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(dateStr string) time.Time {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// WeekStart returns the Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// Index returns the ordinal week index of t relative to origin. Both are
// aligned to their week start first, so any two dates in the same calendar
// week map to the same index.
func Index(t, origin time.Time) int {
	ws := WeekStart(t)
	os := WeekStart(origin)
	return int(ws.Sub(os).Hours() / (24 * constants.DaysPerWeek))
}

// StartOf returns the week-start date for the given ordinal index relative to
// origin.
func StartOf(index int, origin time.Time) time.Time {
	return WeekStart(origin).AddDate(0, 0, index*constants.DaysPerWeek)
}
