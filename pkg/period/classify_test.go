package period

import (
	"reflect"
	"testing"

	"github.com/iwvelando/sba-spread/pkg/spread"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		period     spread.BusinessPeriod
		label      string
		interim    bool
		projection bool
		fye        bool
	}{
		{
			name:   "Full year",
			period: spread.BusinessPeriod{PeriodMonths: "12"},
			label:  "FY2023",
			fye:    true,
		},
		{
			name:    "Short month count is interim without the word",
			period:  spread.BusinessPeriod{PeriodMonths: "6"},
			label:   "FY2024",
			interim: true,
		},
		{
			name:    "Interim label overrides twelve months",
			period:  spread.BusinessPeriod{PeriodMonths: "12"},
			label:   "Interim Period",
			interim: true,
		},
		{
			name:       "Projection label",
			period:     spread.BusinessPeriod{PeriodMonths: "12"},
			label:      "2026 Projection",
			projection: true,
		},
		{
			name:       "Projection flag",
			period:     spread.BusinessPeriod{PeriodMonths: "12", IsProjection: true},
			label:      "FY2026",
			projection: true,
		},
		{
			name:       "Projected interim",
			period:     spread.BusinessPeriod{PeriodMonths: "6"},
			label:      "PROJECTION H1",
			interim:    true,
			projection: true,
		},
		{
			name:   "Blank months default to a full year",
			period: spread.BusinessPeriod{},
			label:  "FY2022",
			fye:    true,
		},
		{
			name:   "Unparseable months are inert",
			period: spread.BusinessPeriod{PeriodMonths: "twelve"},
			label:  "FY2022",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := Classify([]spread.BusinessPeriod{tt.period}, []string{tt.label})
			if len(cs) != 1 {
				t.Fatalf("expected 1 classification, got %d", len(cs))
			}
			c := cs[0]
			if c.IsInterim != tt.interim || c.IsProjection != tt.projection || c.IsFYE != tt.fye {
				t.Errorf("Classify() = %+v, expected interim=%v projection=%v fye=%v",
					c, tt.interim, tt.projection, tt.fye)
			}
			if c.Label != tt.label {
				t.Errorf("Label = %q, expected %q", c.Label, tt.label)
			}
		})
	}
}

func TestClassifyFallsBackToPeriodDate(t *testing.T) {
	periods := []spread.BusinessPeriod{
		{PeriodDate: "12/31/2023", PeriodMonths: "12"},
		{PeriodDate: "Interim 6/30/2024", PeriodMonths: "12"},
	}
	cs := Classify(periods, []string{"FY2023"})
	if cs[1].Label != "Interim 6/30/2024" {
		t.Errorf("expected period date as label, got %q", cs[1].Label)
	}
	if !cs[1].IsInterim {
		t.Error("expected period date containing interim to classify as interim")
	}
}

func TestFindLastFYEIndex(t *testing.T) {
	periods := []spread.BusinessPeriod{
		{PeriodMonths: "12"},
		{PeriodMonths: "12"},
		{PeriodMonths: "6"},
		{PeriodMonths: "12", IsProjection: true},
	}
	cs := Classify(periods, []string{"FY2022", "FY2023", "YTD", "FY2025"})

	idx, ok := FindLastFYEIndex(cs)
	if !ok || idx != 1 {
		t.Errorf("FindLastFYEIndex() = %d, %v; expected 1, true", idx, ok)
	}

	none := Classify([]spread.BusinessPeriod{{PeriodMonths: "6"}}, nil)
	if idx, ok := FindLastFYEIndex(none); ok || idx != -1 {
		t.Errorf("FindLastFYEIndex() = %d, %v; expected -1, false", idx, ok)
	}
	if idx, ok := FindLastFYEIndex(nil); ok || idx != -1 {
		t.Errorf("FindLastFYEIndex(nil) = %d, %v; expected -1, false", idx, ok)
	}
}

func TestFindInterimIndices(t *testing.T) {
	periods := []spread.BusinessPeriod{
		{PeriodMonths: "6"},
		{PeriodMonths: "12"},
		{PeriodMonths: "9"},
		{PeriodMonths: "6"},
		{PeriodMonths: "0"},
	}
	cs := Classify(periods, []string{"H1 2023", "FY2023", "Q3 2024", "Projection H1", "Empty"})

	got := FindInterimIndices(cs)
	if !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("FindInterimIndices() = %v, expected [0 2]", got)
	}

	current, ok := FindCurrentInterimIndex(cs)
	if !ok || current != 2 {
		t.Errorf("FindCurrentInterimIndex() = %d, %v; expected 2, true", current, ok)
	}

	if got := FindProjectionIndices(cs); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("FindProjectionIndices() = %v, expected [3]", got)
	}

	if _, ok := FindCurrentInterimIndex(nil); ok {
		t.Error("expected no interim for empty input")
	}
}
