package loans

import (
	"math"
	"time"

	"github.com/iwvelando/sba-spread/pkg/datetime"
	"github.com/iwvelando/sba-spread/pkg/spread"
)

// termEpsilon absorbs floating error so an exact payoff month is not rounded
// up to the next one.
const termEpsilon = 1e-9

// SolveRemainingTerm returns the number of months left on a debt given its
// balance, payment and annual rate. A zero balance is already paid. When the
// payment does not cover the monthly interest, or is missing, the original
// term is returned instead.
func SolveRemainingTerm(balance, payment, annualInterestRate float64, originalTerm int) int {
	if balance <= 0 {
		return 0
	}
	if payment <= 0 {
		return originalTerm
	}

	r := MonthlyRate(annualInterestRate)
	if r <= 0 {
		return int(math.Ceil(balance/payment - termEpsilon))
	}

	ratio := balance * r / payment
	if ratio >= 1 {
		return originalTerm
	}
	n := -math.Log(1-ratio) / math.Log(1+r)
	return int(math.Ceil(n - termEpsilon))
}

// MaturityDate is the month a debt pays off, counted from now.
func MaturityDate(now time.Time, remainingMonths int) time.Time {
	return datetime.AddMonths(now, remainingMonths)
}

// FormatMaturity renders a maturity date, or "Paid" for a settled debt.
func FormatMaturity(now time.Time, remainingMonths int) string {
	if remainingMonths <= 0 {
		return "Paid"
	}
	return datetime.FormatDisplay(MaturityDate(now, remainingMonths))
}

// DebtAnalysis is the derived view of one existing debt.
type DebtAnalysis struct {
	ID                   string  `json:"id"`
	Creditor             string  `json:"creditor"`
	Balance              float64 `json:"balance"`
	Payment              float64 `json:"payment"`
	Rate                 float64 `json:"rate"`
	OriginalTerm         int     `json:"originalTerm"`
	SuggestedPayment     float64 `json:"suggestedPayment"`
	RemainingTerm        int     `json:"remainingTerm"`
	Maturity             string  `json:"maturity"`
	AnnualDebtService    float64 `json:"annualDebtService"`
	NegativeAmortization bool    `json:"negativeAmortization"`
}

// AnalyzeDebt solves the remaining term and maturity of an existing debt.
func AnalyzeDebt(d spread.Debt, now time.Time) DebtAnalysis {
	f := d.Figures()
	remaining := SolveRemainingTerm(f.Balance, f.Payment, f.Rate, f.Term)

	return DebtAnalysis{
		ID:                   d.ID,
		Creditor:             d.Creditor,
		Balance:              f.Balance,
		Payment:              f.Payment,
		Rate:                 f.Rate,
		OriginalTerm:         f.Term,
		SuggestedPayment:     MonthlyPaymentFor(f.Balance, f.Rate, f.Term),
		RemainingTerm:        remaining,
		Maturity:             FormatMaturity(now, remaining),
		AnnualDebtService:    AnnualDebtService(f.Payment),
		NegativeAmortization: f.Balance > 0 && f.Payment > 0 && f.Payment <= CalculateInterestPayment(f.Balance, f.Rate),
	}
}

// ExistingAnnualDebtService sums twelve months of payments across debts.
func ExistingAnnualDebtService(debts []spread.Debt) float64 {
	total := 0.0
	for _, d := range debts {
		total += AnnualDebtService(d.Figures().Payment)
	}
	return total
}
