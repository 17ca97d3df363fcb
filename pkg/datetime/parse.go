// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/iwvelando/sba-spread/pkg/constants"
)

const (
	// DateTimeLayout is the month format used for schedule keys.
	DateTimeLayout = constants.DateTimeLayout

	// DisplayLayout is the format maturity dates are rendered in.
	DisplayLayout = constants.MaturityDisplayLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// AddMonths moves t forward by the given number of calendar months. The day is
// pinned to the first of the month so that e.g. Jan 31 + 1 month lands in
// February rather than spilling into March.
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, months, 0)
}

// FormatDisplay renders a date for maturity columns.
func FormatDisplay(t time.Time) string {
	return t.Format(DisplayLayout)
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}
