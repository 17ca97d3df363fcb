package loans

import (
	"fmt"

	"github.com/iwvelando/sba-spread/pkg/datetime"
	"github.com/iwvelando/sba-spread/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment is one month of an amortization schedule.
type Payment struct {
	Date               string  `json:"date"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// LoanConfig describes a fully amortizing loan.
type LoanConfig struct {
	Name         string
	StartDate    string
	Principal    float64
	InterestRate float64
	Term         int
}

// AmortizationScheduleGenerator builds month-by-month payment schedules.
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator. A nil logger is
// replaced with a no-op logger.
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule amortizes the loan from its start date. When through is
// non-empty, generation stops after that month. The final payment absorbs any
// rounding left on the balance.
func (g *AmortizationScheduleGenerator) GenerateSchedule(loan *LoanConfig, through string) ([]Payment, error) {
	term := loan.Term
	if term <= 0 {
		term = 1
	}
	monthlyPayment := CalculateMonthlyPayment(loan.Principal, loan.InterestRate, term)

	schedule := make([]Payment, 0, term)
	remaining := loan.Principal
	currentMonth := loan.StartDate

	for month := 1; month <= term; month++ {
		if through != "" {
			past, err := datetime.DateBeforeDate(through, currentMonth)
			if err != nil {
				return nil, err
			}
			if past {
				g.logger.Debug(fmt.Sprintf("loan %s reached %s, stopping schedule generation", loan.Name, through),
					zap.String("op", "loans.GenerateSchedule"),
				)
				break
			}
		}

		var p Payment
		p.Date = currentMonth
		p.Interest = CalculateInterestPayment(remaining, loan.InterestRate)
		p.Principal = monthlyPayment - p.Interest
		p.Payment = monthlyPayment

		if month == term || mathutil.Round(remaining-p.Principal) <= 0 {
			p.Principal = remaining
			p.Payment = p.Principal + p.Interest
			p.RemainingPrincipal = 0
			schedule = append(schedule, p)
			break
		}

		remaining -= p.Principal
		p.RemainingPrincipal = remaining
		schedule = append(schedule, p)

		next, err := datetime.OffsetDate(currentMonth, datetime.DateTimeLayout, 1)
		if err != nil {
			return nil, err
		}
		currentMonth = next
	}

	g.logger.Debug(fmt.Sprintf("generated %d payments for loan %s", len(schedule), loan.Name),
		zap.String("op", "loans.GenerateSchedule"),
	)
	return schedule, nil
}

// ScheduleTotals sums the principal and interest of a schedule.
func ScheduleTotals(schedule []Payment) (principal, interest float64) {
	for _, p := range schedule {
		principal += p.Principal
		interest += p.Interest
	}
	return principal, interest
}
