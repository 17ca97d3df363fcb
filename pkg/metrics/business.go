// Package metrics reduces a single reporting period to its derived figures:
// the income-statement profitability waterfall and the balance-sheet
// solvency and turnover ratios.
package metrics

import (
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/mathutil"
	"github.com/iwvelando/sba-spread/pkg/spread"
)

// BusinessMetrics is the profitability waterfall of one income statement.
// Margins are percentages; every other field is dollars.
type BusinessMetrics struct {
	Months         int `json:"months"`
	AnnualizedFrom int `json:"annualizedFrom,omitempty"`

	Revenue           float64 `json:"revenue"`
	COGS              float64 `json:"cogs"`
	GrossProfit       float64 `json:"grossProfit"`
	GrossMargin       float64 `json:"grossMargin"`
	OtherIncome       float64 `json:"otherIncome"`
	OperatingExpenses float64 `json:"operatingExpenses"`
	RentExpense       float64 `json:"rentExpense"`
	OfficersComp      float64 `json:"officersComp"`
	OtherExpenses     float64 `json:"otherExpenses"`
	Addbacks          float64 `json:"addbacks"`
	EBITDA            float64 `json:"ebitda"`
	EBITDAMargin      float64 `json:"ebitdaMargin"`
	Depreciation      float64 `json:"depreciation"`
	Amortization      float64 `json:"amortization"`
	EBIT              float64 `json:"ebit"`
	Interest          float64 `json:"interest"`
	EBT               float64 `json:"ebt"`
	Taxes             float64 `json:"taxes"`
	NetIncome         float64 `json:"netIncome"`
	NetMargin         float64 `json:"netMargin"`
	Section179        float64 `json:"section179"`
	CashFlow          float64 `json:"cashFlow"`
	M1TaxableIncome   float64 `json:"m1TaxableIncome"`
}

// ComputeBusinessMetrics runs the waterfall over the period's figures as
// reported, without annualizing.
//
// Officer compensation is an operating expense here, so EBITDA is a pure
// operating figure. EBIT excludes Section 179; it only returns as an addback
// in CashFlow. CashFlow also adds interest back because it is measured before
// financing.
func ComputeBusinessMetrics(p spread.BusinessPeriod) BusinessMetrics {
	f := p.Figures()

	m := BusinessMetrics{
		Months:            f.Months,
		Revenue:           f.Revenue,
		COGS:              f.COGS,
		OtherIncome:       f.OtherIncome,
		OperatingExpenses: f.OperatingExpenses,
		RentExpense:       f.RentExpense,
		OfficersComp:      f.OfficersComp,
		OtherExpenses:     f.OtherExpenses,
		Addbacks:          f.Addbacks,
		Depreciation:      f.Depreciation,
		Amortization:      f.Amortization,
		Section179:        f.Section179,
		Interest:          f.Interest,
		Taxes:             f.Taxes,
		M1TaxableIncome:   f.M1BookIncome + f.M1FederalTax + f.M1NondeductibleExpenses - f.M1TaxExemptIncome,
	}

	m.GrossProfit = m.Revenue - m.COGS
	m.EBITDA = (m.Revenue + m.OtherIncome) - m.COGS - m.OperatingExpenses - m.RentExpense -
		m.OfficersComp - m.OtherExpenses + m.Addbacks
	m.EBIT = m.EBITDA - m.Depreciation - m.Amortization
	m.EBT = m.EBIT - m.Interest
	m.NetIncome = m.EBT - m.Taxes
	m.CashFlow = m.NetIncome + m.Depreciation + m.Amortization + m.Section179 + m.Interest + m.Addbacks
	m.setMargins()

	return m
}

// Annualize scales every dollar figure by 12/months and recomputes the
// margins from the scaled values. Metrics produced by an earlier Annualize
// are returned unchanged, so annualizing twice never double-counts.
func Annualize(m BusinessMetrics, months int) BusinessMetrics {
	if months <= 0 || months == constants.MonthsPerYear || m.AnnualizedFrom != 0 {
		return m
	}

	factor := spread.AnnualizationFactor(months)
	out := BusinessMetrics{
		Months:            constants.MonthsPerYear,
		AnnualizedFrom:    months,
		Revenue:           m.Revenue * factor,
		COGS:              m.COGS * factor,
		GrossProfit:       m.GrossProfit * factor,
		OtherIncome:       m.OtherIncome * factor,
		OperatingExpenses: m.OperatingExpenses * factor,
		RentExpense:       m.RentExpense * factor,
		OfficersComp:      m.OfficersComp * factor,
		OtherExpenses:     m.OtherExpenses * factor,
		Addbacks:          m.Addbacks * factor,
		EBITDA:            m.EBITDA * factor,
		Depreciation:      m.Depreciation * factor,
		Amortization:      m.Amortization * factor,
		EBIT:              m.EBIT * factor,
		Interest:          m.Interest * factor,
		EBT:               m.EBT * factor,
		Taxes:             m.Taxes * factor,
		NetIncome:         m.NetIncome * factor,
		Section179:        m.Section179 * factor,
		CashFlow:          m.CashFlow * factor,
		M1TaxableIncome:   m.M1TaxableIncome * factor,
	}
	out.setMargins()
	return out
}

func (m *BusinessMetrics) setMargins() {
	m.GrossMargin = mathutil.CalculatePercentage(m.GrossProfit, m.Revenue)
	m.EBITDAMargin = mathutil.CalculatePercentage(m.EBITDA, m.Revenue)
	m.NetMargin = mathutil.CalculatePercentage(m.NetIncome, m.Revenue)
}
