// Package testutil provides common utility functions for testing.
package testutil

import (
	"encoding/csv"
	"io"
	"math"

	"github.com/iwvelando/sba-spread/pkg/dscr"
)

// DefaultTolerance is the absolute difference accepted between currency
// figures in baseline comparisons.
const DefaultTolerance = 0.01

// FindCoverage finds the coverage column with the given label among the
// full-year, interim and projection results. Returns nil when no column
// carries that label.
func FindCoverage(a dscr.Analysis, label string) *dscr.PeriodDSCR {
	if a.FullYear != nil && a.FullYear.Label == label {
		return a.FullYear
	}
	if a.Interim != nil && a.Interim.Label == label {
		return a.Interim
	}
	for i := range a.Projections {
		if a.Projections[i].Label == label {
			return &a.Projections[i]
		}
	}
	return nil
}

// ParseCSV reads long-form spread CSV into a lookup keyed by section, line
// and period.
func ParseCSV(r io.Reader) (map[[3]string]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	values := make(map[[3]string]string, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) != 4 {
			continue
		}
		values[[3]string{rec[0], rec[1], rec[2]}] = rec[3]
	}
	return values, nil
}

// Near reports whether got is within tolerance of want.
func Near(got, want, tolerance float64) bool {
	return math.Abs(got-want) <= tolerance
}
