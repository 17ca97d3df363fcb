// Package period tags reporting periods as fiscal-year-end, interim or
// projection and locates the current full-year and interim columns.
package period

import (
	"strings"

	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/spread"
)

// Classification describes one period of a spread.
type Classification struct {
	Index        int    `json:"index"`
	Months       int    `json:"months"`
	Label        string `json:"label"`
	IsInterim    bool   `json:"isInterim"`
	IsProjection bool   `json:"isProjection"`
	IsFYE        bool   `json:"isFYE"`
}

// Classify returns one Classification per period, in order. labels[i] names
// period i; when a label is missing the period's own date is used.
//
// Dates are free text, so recency is positional: a later index is a more
// recent period.
func Classify(periods []spread.BusinessPeriod, labels []string) []Classification {
	out := make([]Classification, len(periods))
	for i, p := range periods {
		label := p.PeriodDate
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		out[i] = classifyOne(i, p.Months(), label, p.IsProjection)
	}
	return out
}

func classifyOne(index, months int, label string, projectionFlag bool) Classification {
	lower := strings.ToLower(label)
	c := Classification{
		Index:  index,
		Months: months,
		Label:  label,
	}
	c.IsInterim = (months > 0 && months < constants.MonthsPerYear) || strings.Contains(lower, "interim")
	c.IsProjection = projectionFlag || strings.Contains(lower, "projection")
	c.IsFYE = months == constants.MonthsPerYear && !c.IsInterim && !c.IsProjection
	return c
}

// FindLastFYEIndex returns the index of the most recent full fiscal year.
func FindLastFYEIndex(cs []Classification) (int, bool) {
	for i := len(cs) - 1; i >= 0; i-- {
		if cs[i].IsFYE {
			return cs[i].Index, true
		}
	}
	return -1, false
}

// FindInterimIndices returns every historical interim period in order.
// Projected interims are excluded.
func FindInterimIndices(cs []Classification) []int {
	var indices []int
	for _, c := range cs {
		if c.IsInterim && !c.IsProjection {
			indices = append(indices, c.Index)
		}
	}
	return indices
}

// FindCurrentInterimIndex returns the most recent historical interim period.
func FindCurrentInterimIndex(cs []Classification) (int, bool) {
	indices := FindInterimIndices(cs)
	if len(indices) == 0 {
		return -1, false
	}
	return indices[len(indices)-1], true
}

// FindProjectionIndices returns the projected periods in order.
func FindProjectionIndices(cs []Classification) []int {
	var indices []int
	for _, c := range cs {
		if c.IsProjection {
			indices = append(indices, c.Index)
		}
	}
	return indices
}
