package loans

import (
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/mathutil"
	"github.com/iwvelando/sba-spread/pkg/spread"
	"github.com/shopspring/decimal"
)

// FeeSchedule prices the upfront SBA guarantee fee for a loan request.
//
// Two schedules coexist: ScheduleA feeds the loan summary and ScheduleB feeds
// the DSCR engine's proposed debt service. They disagree for most amounts.
type FeeSchedule interface {
	Name() string
	UpfrontFee(amount, guaranteePercent float64, termMonths int) float64
}

type scheduleA struct{}

type scheduleB struct{}

// ScheduleA tiers the fee on the primary request itself:
//
//	<= $150,000            no fee
//	<= $700,000            3% of the amount over $150,000
//	>  $700,000            $16,500 plus 3.5% of the amount over $700,000
var ScheduleA FeeSchedule = scheduleA{}

// ScheduleB tiers the fee marginally on the primary request, with a flat
// short-term rate on the guaranteed portion:
//
//	term <= 12 months      0.25% of the guaranteed portion
//	first $150,000         2%
//	$150,000 - $500,000    3%
//	$500,000 - $1,000,000  3.5%
//	above $1,000,000       3.75%
var ScheduleB FeeSchedule = scheduleB{}

func (scheduleA) Name() string { return "A" }

func (scheduleA) UpfrontFee(amount, _ float64, _ int) float64 {
	a := decimal.NewFromFloat(amount)
	tier1 := decimal.NewFromFloat(constants.FeeATier1Ceiling)
	tier2 := decimal.NewFromFloat(constants.FeeATier2Ceiling)

	var fee decimal.Decimal
	switch {
	case a.LessThanOrEqual(tier1):
		fee = decimal.Zero
	case a.LessThanOrEqual(tier2):
		fee = a.Sub(tier1).Mul(decimal.NewFromFloat(constants.FeeATier2Rate))
	default:
		fee = tier2.Sub(tier1).Mul(decimal.NewFromFloat(constants.FeeATier2Rate)).
			Add(a.Sub(tier2).Mul(decimal.NewFromFloat(constants.FeeATier3Rate)))
	}
	return fee.Round(2).InexactFloat64()
}

func (scheduleB) Name() string { return "B" }

func (scheduleB) UpfrontFee(amount, guaranteePercent float64, termMonths int) float64 {
	a := decimal.NewFromFloat(amount)
	if !a.IsPositive() {
		return 0
	}
	if termMonths <= constants.FeeBShortTermMonths {
		guaranteed := a.Mul(decimal.NewFromFloat(guaranteePercent)).Div(decimal.NewFromFloat(constants.PercentageMultiplier))
		return guaranteed.Mul(decimal.NewFromFloat(constants.FeeBShortTermRate)).Round(2).InexactFloat64()
	}

	tiers := []struct{ ceiling, rate float64 }{
		{constants.FeeBSmallLoanCeiling, constants.FeeBSmallLoanRate},
		{constants.FeeBMidCeiling, constants.FeeBMidRate},
		{constants.FeeBLargeCeiling, constants.FeeBLargeRate},
	}
	fee := decimal.Zero
	floor := decimal.Zero
	for _, tier := range tiers {
		ceiling := decimal.NewFromFloat(tier.ceiling)
		if a.LessThanOrEqual(floor) {
			break
		}
		fee = fee.Add(decimal.Min(a, ceiling).Sub(floor).Mul(decimal.NewFromFloat(tier.rate)))
		floor = ceiling
	}
	if a.GreaterThan(floor) {
		fee = fee.Add(a.Sub(floor).Mul(decimal.NewFromFloat(constants.FeeBAboveCeilingRate)))
	}
	return fee.Round(2).InexactFloat64()
}

// LoanSummary describes the proposed loan once the guarantee fee is financed
// into it.
type LoanSummary struct {
	FeeSchedule        string  `json:"feeSchedule"`
	PrimaryRequest     float64 `json:"primaryRequest"`
	GuaranteePercent   float64 `json:"guaranteePercent"`
	GuaranteedAmount   float64 `json:"guaranteedAmount"`
	UpfrontFee         float64 `json:"upfrontFee"`
	FinalLoanAmount    float64 `json:"finalLoanAmount"`
	InterestRate       float64 `json:"interestRate"`
	TermMonths         int     `json:"termMonths"`
	MonthlyPayment     float64 `json:"monthlyPayment"`
	AnnualDebtService  float64 `json:"annualDebtService"`
	AnnualServicingFee float64 `json:"annualServicingFee"`
}

// SummarizeLoan prices the proposed loan with the given fee schedule. The fee
// is computed on the primary request and then added to the amortized
// principal. The annual servicing fee is informational and is not part of the
// payment.
func SummarizeLoan(primaryRequest float64, terms spread.LoanTerms, schedule FeeSchedule) LoanSummary {
	guaranteePct := terms.Guarantee()
	term := terms.Term()
	rate := terms.Rate()

	guaranteed := mathutil.ApplyPercentage(primaryRequest, guaranteePct)
	fee := schedule.UpfrontFee(primaryRequest, guaranteePct, term)
	final := primaryRequest + fee
	payment := CalculateMonthlyPayment(final, rate, term)

	return LoanSummary{
		FeeSchedule:        schedule.Name(),
		PrimaryRequest:     primaryRequest,
		GuaranteePercent:   guaranteePct,
		GuaranteedAmount:   guaranteed,
		UpfrontFee:         fee,
		FinalLoanAmount:    final,
		InterestRate:       rate,
		TermMonths:         term,
		MonthlyPayment:     payment,
		AnnualDebtService:  AnnualDebtService(payment),
		AnnualServicingFee: guaranteed * constants.AnnualServicingFeeRate,
	}
}

// LoanAnnualDebtService is the yearly payment on the proposed loan as the
// DSCR engine sees it, priced with ScheduleB.
func LoanAnnualDebtService(uses []spread.UseOfFunds, terms spread.LoanTerms) float64 {
	return SummarizeLoan(spread.PrimaryRequest(uses), terms, ScheduleB).AnnualDebtService
}
