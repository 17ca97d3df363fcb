package metrics

import (
	"github.com/iwvelando/sba-spread/pkg/mathutil"
	"github.com/iwvelando/sba-spread/pkg/spread"
)

// BalanceSheetMetrics aggregates one balance sheet and its ratios. Any ratio
// whose denominator is zero or negative is reported as 0.
type BalanceSheetMetrics struct {
	CurrentAssets      float64 `json:"currentAssets"`
	NetFixedAssets     float64 `json:"netFixedAssets"`
	TotalAssets        float64 `json:"totalAssets"`
	CurrentLiabilities float64 `json:"currentLiabilities"`
	LongTermDebt       float64 `json:"longTermDebt"`
	TotalLiabilities   float64 `json:"totalLiabilities"`
	Equity             float64 `json:"equity"`
	WorkingCapital     float64 `json:"workingCapital"`

	CurrentRatio float64 `json:"currentRatio"`
	QuickRatio   float64 `json:"quickRatio"`
	DebtToEquity float64 `json:"debtToEquity"`
	DebtToAssets float64 `json:"debtToAssets"`

	ARTurnover          float64 `json:"arTurnover"`
	ARDays              float64 `json:"arDays"`
	InventoryTurnover   float64 `json:"inventoryTurnover"`
	InventoryDays       float64 `json:"inventoryDays"`
	APTurnover          float64 `json:"apTurnover"`
	APDays              float64 `json:"apDays"`
	CashConversionCycle float64 `json:"cashConversionCycle"`

	// OverDepreciated flags accumulated depreciation in excess of the gross
	// fixed assets, which leaves NetFixedAssets negative.
	OverDepreciated bool `json:"overDepreciated"`
}

// ComputeBalanceSheetMetrics derives the aggregates and ratios of a balance
// sheet. Turnovers need the income statement for the same date, passed as
// annualized revenue and COGS.
//
// Debt-to-equity is only computed for positive equity; a negative-equity
// borrower reports 0.
func ComputeBalanceSheetMetrics(p spread.BalanceSheetPeriod, annualRevenue, annualCOGS float64) BalanceSheetMetrics {
	f := p.Figures()

	m := BalanceSheetMetrics{
		CurrentAssets:      f.Cash + f.AccountsReceivable + f.Inventory + f.OtherCurrentAssets,
		NetFixedAssets:     f.RealEstate - f.AccumulatedDepreciation,
		CurrentLiabilities: f.CurrentLiabilities,
		LongTermDebt:       f.LongTermDebt,
	}
	m.OverDepreciated = m.NetFixedAssets < 0
	m.TotalAssets = m.CurrentAssets + m.NetFixedAssets
	m.TotalLiabilities = m.CurrentLiabilities + m.LongTermDebt
	m.Equity = m.TotalAssets - m.TotalLiabilities
	m.WorkingCapital = m.CurrentAssets - m.CurrentLiabilities

	m.CurrentRatio = mathutil.SafeDivide(m.CurrentAssets, m.CurrentLiabilities)
	m.QuickRatio = mathutil.SafeDivide(m.CurrentAssets-f.Inventory, m.CurrentLiabilities)
	m.DebtToEquity = mathutil.SafeDivide(m.TotalLiabilities, m.Equity)
	m.DebtToAssets = mathutil.SafeDivide(m.TotalLiabilities, m.TotalAssets)

	payables := f.AccountsPayable
	if payables == 0 {
		payables = m.CurrentLiabilities
	}

	m.ARTurnover = mathutil.SafeDivide(annualRevenue, f.AccountsReceivable)
	m.InventoryTurnover = mathutil.SafeDivide(annualCOGS, f.Inventory)
	m.APTurnover = mathutil.SafeDivide(annualCOGS, payables)
	m.ARDays = mathutil.DaysFromTurnover(m.ARTurnover)
	m.InventoryDays = mathutil.DaysFromTurnover(m.InventoryTurnover)
	m.APDays = mathutil.DaysFromTurnover(m.APTurnover)
	m.CashConversionCycle = m.ARDays + m.InventoryDays - m.APDays

	return m
}
