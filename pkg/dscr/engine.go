// Package dscr computes debt service coverage for a deal: the global ratio that
// blends business, owner and personal cash flow, the business-only ratio, and
// the full-year and interim analyses built on them.
package dscr

import (
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/loans"
	"github.com/iwvelando/sba-spread/pkg/spread"
)

// Options toggles the optional components of the global ratio.
type Options struct {
	IncludeRentAddback bool    `json:"includeRentAddback"`
	IncludeScheduleE   bool    `json:"includeScheduleE"`
	AffiliateCashFlow  float64 `json:"affiliateCashFlow"`
}

// Inputs is everything one global DSCR computation reads.
type Inputs struct {
	Business            spread.BusinessPeriod
	Personal            spread.PersonalPeriod
	Debts               []spread.Debt
	PersonalLiabilities spread.PersonalLiabilities
	Uses                []spread.UseOfFunds
	Terms               spread.LoanTerms
	Options             Options
}

// Result keeps every intermediate of the global ratio so it can be audited
// line by line.
type Result struct {
	AnnualizationFactor float64 `json:"annualizationFactor"`

	BusinessEbitda      float64 `json:"businessEbitda"`
	OfficersComp        float64 `json:"officersComp"`
	DepreciationAddback float64 `json:"depreciationAddback"`
	AmortizationAddback float64 `json:"amortizationAddback"`
	Section179Addback   float64 `json:"section179Addback"`
	OtherAddbacks       float64 `json:"otherAddbacks"`
	BusinessCashFlow    float64 `json:"businessCashFlow"`

	PersonalW2Income  float64 `json:"personalW2Income"`
	SchedCCashFlow    float64 `json:"schedCCashFlow"`
	SchedECashFlow    float64 `json:"schedECashFlow"`
	AffiliateCashFlow float64 `json:"affiliateCashFlow"`

	TotalIncomeAvailable       float64 `json:"totalIncomeAvailable"`
	PersonalExpenses           float64 `json:"personalExpenses"`
	EstimatedTaxOnOfficersComp float64 `json:"estimatedTaxOnOfficersComp"`
	RentAddback                float64 `json:"rentAddback"`
	NetCashAvailable           float64 `json:"netCashAvailable"`

	ExistingDebtPayment float64 `json:"existingDebtPayment"`
	PersonalDebtPayment float64 `json:"personalDebtPayment"`
	ProposedLoanAmount  float64 `json:"proposedLoanAmount"`
	ProposedDebtPayment float64 `json:"proposedDebtPayment"`
	AnnualDebtService   float64 `json:"annualDebtService"`

	DSCR float64 `json:"dscr"`
}

// businessFlows is the annualized business side of the ratio.
type businessFlows struct {
	factor       float64
	ebitda       float64
	officersComp float64
	depreciation float64
	amortization float64
	section179   float64
	other        float64
	rent         float64
	cashFlow     float64
}

// computeBusinessFlows annualizes the period once. Officer compensation is
// carved out of EBITDA here and reported on its own line.
func computeBusinessFlows(p spread.BusinessPeriod) businessFlows {
	f := p.Figures()
	factor := p.AnnualizationFactor()

	b := businessFlows{
		factor:       factor,
		ebitda:       (f.Revenue + f.OtherIncome - f.COGS - f.OperatingExpenses - f.RentExpense - f.OtherExpenses) * factor,
		officersComp: f.OfficersComp * factor,
		depreciation: f.Depreciation * factor,
		amortization: f.Amortization * factor,
		section179:   f.Section179 * factor,
		other:        f.Addbacks * factor,
		rent:         f.RentExpense * factor,
	}
	b.cashFlow = b.ebitda + b.depreciation + b.amortization + b.section179 + b.other
	return b
}

// ComputeDSCR computes the global debt service coverage ratio. Personal
// figures are taken as already annual. The proposed loan is priced with
// loans.ScheduleB.
func ComputeDSCR(in Inputs) Result {
	b := computeBusinessFlows(in.Business)
	pf := in.Personal.Figures()

	r := Result{
		AnnualizationFactor: b.factor,
		BusinessEbitda:      b.ebitda,
		OfficersComp:        b.officersComp,
		DepreciationAddback: b.depreciation,
		AmortizationAddback: b.amortization,
		Section179Addback:   b.section179,
		OtherAddbacks:       b.other,
		BusinessCashFlow:    b.cashFlow,
		AffiliateCashFlow:   in.Options.AffiliateCashFlow,
	}

	r.PersonalW2Income = pf.Salary + pf.Bonuses + pf.Investments + pf.RentalIncome + pf.RetirementIncome + pf.OtherIncome
	r.SchedCCashFlow = (pf.SchedCRevenue - pf.SchedCCOGS - pf.SchedCExpenses) +
		pf.SchedCInterest + pf.SchedCDepreciation + pf.SchedCAmortization + pf.SchedCOther
	r.SchedECashFlow = pf.SchedERents - pf.SchedEExpenses + pf.SchedEInterest + pf.SchedEDepreciation + pf.K1OrdinaryIncome

	r.TotalIncomeAvailable = r.BusinessCashFlow + r.OfficersComp + r.PersonalW2Income + r.SchedCCashFlow + r.AffiliateCashFlow
	if in.Options.IncludeScheduleE {
		r.TotalIncomeAvailable += r.SchedECashFlow
	}

	r.PersonalExpenses = pf.CostOfLiving + pf.PersonalTaxes
	r.EstimatedTaxOnOfficersComp = r.OfficersComp * constants.OfficersCompTaxRate
	if in.Options.IncludeRentAddback {
		r.RentAddback = b.rent
	}
	r.NetCashAvailable = r.TotalIncomeAvailable - r.PersonalExpenses - r.EstimatedTaxOnOfficersComp + r.RentAddback

	proposed := loans.SummarizeLoan(spread.PrimaryRequest(in.Uses), in.Terms, loans.ScheduleB)
	r.ExistingDebtPayment = loans.ExistingAnnualDebtService(in.Debts)
	r.PersonalDebtPayment = in.PersonalLiabilities.Monthly() * constants.MonthsPerYear
	r.ProposedLoanAmount = proposed.FinalLoanAmount
	r.ProposedDebtPayment = proposed.AnnualDebtService
	r.AnnualDebtService = r.ExistingDebtPayment + r.PersonalDebtPayment + r.ProposedDebtPayment

	r.DSCR = coverage(r.NetCashAvailable, r.AnnualDebtService)
	return r
}

// coverage divides cash by debt service, returning 0 with no debt service.
func coverage(cash, debtService float64) float64 {
	if debtService <= 0 {
		return 0
	}
	return cash / debtService
}
