package metrics

import (
	"math"
	"reflect"
	"testing"

	"github.com/iwvelando/sba-spread/pkg/spread"
)

const tolerance = 0.0001

func samplePeriod() spread.BusinessPeriod {
	return spread.BusinessPeriod{
		PeriodDate:        "12/31/2024",
		PeriodMonths:      "12",
		Revenue:           "500000",
		COGS:              "200000",
		OperatingExpenses: "100000",
		RentExpense:       "24000",
		OfficersComp:      "80000",
		Depreciation:      "20000",
		Amortization:      "5000",
		Section179:        "10000",
		Interest:          "8000",
		OtherIncome:       "3000",
		OtherExpenses:     "2000",
		Addbacks:          "1000",
		Taxes:             "12000",
	}
}

func TestComputeBusinessMetricsWaterfall(t *testing.T) {
	m := ComputeBusinessMetrics(samplePeriod())

	expected := map[string][2]float64{
		"GrossProfit": {m.GrossProfit, 300000},
		"GrossMargin": {m.GrossMargin, 60},
		// 503000 - 200000 - 100000 - 24000 - 80000 - 2000 + 1000
		"EBITDA": {m.EBITDA, 98000},
		// Section 179 stays out of EBIT.
		"EBIT":      {m.EBIT, 73000},
		"EBT":       {m.EBT, 65000},
		"NetIncome": {m.NetIncome, 53000},
		"NetMargin": {m.NetMargin, 10.6},
		// 53000 + 20000 + 5000 + 10000 + 8000 + 1000
		"CashFlow": {m.CashFlow, 97000},
	}

	for name, pair := range expected {
		if math.Abs(pair[0]-pair[1]) > tolerance {
			t.Errorf("%s = %.4f, expected %.4f", name, pair[0], pair[1])
		}
	}
	if m.Months != 12 {
		t.Errorf("Months = %d, expected 12", m.Months)
	}
}

func TestEBITReconcilesWithEBITDA(t *testing.T) {
	periods := []spread.BusinessPeriod{
		samplePeriod(),
		{Revenue: "0", Depreciation: "5000"},
		{Revenue: "abc", COGS: "1000", Amortization: "250.50", Section179: "99999"},
		{Revenue: "-100", Depreciation: "-50", Amortization: "75"},
	}

	for i, p := range periods {
		m := ComputeBusinessMetrics(p)
		if m.EBIT != m.EBITDA-m.Depreciation-m.Amortization {
			t.Errorf("period %d: EBIT %.2f != EBITDA %.2f - D %.2f - A %.2f",
				i, m.EBIT, m.EBITDA, m.Depreciation, m.Amortization)
		}
	}
}

func TestMarginsGuardZeroRevenue(t *testing.T) {
	tests := []struct {
		name    string
		revenue string
	}{
		{"Zero revenue", "0"},
		{"Blank revenue", ""},
		{"Negative revenue", "-1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeBusinessMetrics(spread.BusinessPeriod{Revenue: tt.revenue, COGS: "500", Taxes: "10"})
			for name, v := range map[string]float64{"GrossMargin": m.GrossMargin, "NetMargin": m.NetMargin, "EBITDAMargin": m.EBITDAMargin} {
				if v != 0 || math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("%s = %v, expected 0", name, v)
				}
			}
		})
	}
}

func TestAnnualizeIdentityAtTwelveMonths(t *testing.T) {
	periods := []spread.BusinessPeriod{
		samplePeriod(),
		{PeriodMonths: "6", Revenue: "250000", COGS: "100000"},
		{PeriodMonths: "garbage", Revenue: "1"},
	}
	for i, p := range periods {
		m := ComputeBusinessMetrics(p)
		if got := Annualize(m, 12); !reflect.DeepEqual(got, m) {
			t.Errorf("period %d: Annualize(m, 12) changed the metrics", i)
		}
	}
}

func TestAnnualizeInterim(t *testing.T) {
	p := samplePeriod()
	p.PeriodMonths = "6"
	p.Revenue = "250000"
	p.COGS = "100000"

	raw := ComputeBusinessMetrics(p)
	annual := Annualize(raw, 6)

	if annual.Months != 12 || annual.AnnualizedFrom != 6 {
		t.Errorf("Months/AnnualizedFrom = %d/%d, expected 12/6", annual.Months, annual.AnnualizedFrom)
	}
	if math.Abs(annual.Revenue-500000) > tolerance {
		t.Errorf("annualized revenue = %.2f, expected 500000", annual.Revenue)
	}
	if math.Abs(annual.EBITDA-raw.EBITDA*2) > tolerance {
		t.Errorf("annualized EBITDA = %.2f, expected %.2f", annual.EBITDA, raw.EBITDA*2)
	}
	if math.Abs(annual.CashFlow-raw.CashFlow*2) > tolerance {
		t.Errorf("annualized cash flow = %.2f, expected %.2f", annual.CashFlow, raw.CashFlow*2)
	}
	// Ratios are not scaled.
	if math.Abs(annual.GrossMargin-raw.GrossMargin) > tolerance {
		t.Errorf("gross margin changed on annualization: %.4f vs %.4f", annual.GrossMargin, raw.GrossMargin)
	}
	if math.Abs(annual.NetMargin-raw.NetMargin) > tolerance {
		t.Errorf("net margin changed on annualization: %.4f vs %.4f", annual.NetMargin, raw.NetMargin)
	}
	if annual.EBIT != annual.EBITDA-annual.Depreciation-annual.Amortization {
		t.Error("annualized EBIT does not reconcile with annualized EBITDA")
	}
}

func TestAnnualizeTwiceDoesNotDoubleCount(t *testing.T) {
	p := samplePeriod()
	p.PeriodMonths = "6"

	once := Annualize(ComputeBusinessMetrics(p), 6)
	twice := Annualize(once, 6)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second annualization changed the result: revenue %.2f vs %.2f", once.Revenue, twice.Revenue)
	}
}

func TestAnnualizeUsesCallerMonths(t *testing.T) {
	p := samplePeriod()
	p.PeriodMonths = "12"
	p.Revenue = "100"

	m := ComputeBusinessMetrics(p)
	got := Annualize(m, 6)
	if math.Abs(got.Revenue-200) > tolerance {
		t.Errorf("Annualize(m, 6) revenue = %.2f, expected 200", got.Revenue)
	}
	if got.AnnualizedFrom != 6 {
		t.Errorf("AnnualizedFrom = %d, expected 6", got.AnnualizedFrom)
	}
}

func TestAnnualizeByPeriodMonths(t *testing.T) {
	p := samplePeriod()
	p.PeriodMonths = "9"
	p.Revenue = "90000"

	raw := ComputeBusinessMetrics(p)
	m := Annualize(raw, raw.Months)
	if math.Abs(m.Revenue-120000) > tolerance {
		t.Errorf("annualized revenue = %.2f, expected 120000", m.Revenue)
	}

	unannualized := Annualize(raw, 0)
	if unannualized.Revenue != 90000 {
		t.Errorf("zero-month period should not be scaled, got %.2f", unannualized.Revenue)
	}
}

func TestM1TaxableIncome(t *testing.T) {
	p := spread.BusinessPeriod{
		M1BookIncome:            "100000",
		M1FederalTax:            "21000",
		M1NondeductibleExpenses: "4000",
		M1TaxExemptIncome:       "2500",
	}
	if got := ComputeBusinessMetrics(p).M1TaxableIncome; got != 122500 {
		t.Errorf("M1TaxableIncome = %.2f, expected 122500", got)
	}
}
