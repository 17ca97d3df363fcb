package dscr

import (
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/loans"
	"github.com/iwvelando/sba-spread/pkg/period"
	"github.com/iwvelando/sba-spread/pkg/spread"
)

// BusinessResult is coverage from the business alone: no personal income,
// expenses or personal debt.
type BusinessResult struct {
	BusinessEbitda             float64 `json:"businessEbitda"`
	OfficersComp               float64 `json:"officersComp"`
	BusinessCashFlow           float64 `json:"businessCashFlow"`
	EstimatedTaxOnOfficersComp float64 `json:"estimatedTaxOnOfficersComp"`
	CashAvailable              float64 `json:"cashAvailable"`
	ExistingDebtPayment        float64 `json:"existingDebtPayment"`
	ProposedDebtPayment        float64 `json:"proposedDebtPayment"`
	AnnualDebtService          float64 `json:"annualDebtService"`
	DSCR                       float64 `json:"dscr"`
}

// ComputeBusinessDSCR computes the business-only ratio over existing business
// debt and the proposed loan.
func ComputeBusinessDSCR(bp spread.BusinessPeriod, debts []spread.Debt, uses []spread.UseOfFunds, terms spread.LoanTerms) BusinessResult {
	b := computeBusinessFlows(bp)

	r := BusinessResult{
		BusinessEbitda:      b.ebitda,
		OfficersComp:        b.officersComp,
		BusinessCashFlow:    b.cashFlow,
		ExistingDebtPayment: loans.ExistingAnnualDebtService(debts),
		ProposedDebtPayment: loans.LoanAnnualDebtService(uses, terms),
	}
	r.EstimatedTaxOnOfficersComp = r.OfficersComp * constants.OfficersCompTaxRate
	r.CashAvailable = r.BusinessCashFlow + r.OfficersComp - r.EstimatedTaxOnOfficersComp
	r.AnnualDebtService = r.ExistingDebtPayment + r.ProposedDebtPayment
	r.DSCR = coverage(r.CashAvailable, r.AnnualDebtService)
	return r
}

// AffiliateCashFlow is the annualized business cash flow of an affiliate's
// most recent fiscal year, or of its latest period when no full year exists.
func AffiliateCashFlow(a spread.AffiliateEntity) float64 {
	if len(a.IncomePeriods) == 0 {
		return 0
	}
	idx, ok := period.FindLastFYEIndex(period.Classify(a.IncomePeriods, a.Labels))
	if !ok {
		idx = len(a.IncomePeriods) - 1
	}
	return computeBusinessFlows(a.IncomePeriods[idx]).cashFlow
}

// TotalAffiliateCashFlow sums AffiliateCashFlow across affiliates.
func TotalAffiliateCashFlow(affiliates []spread.AffiliateEntity) float64 {
	total := 0.0
	for _, a := range affiliates {
		total += AffiliateCashFlow(a)
	}
	return total
}
