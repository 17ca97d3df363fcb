package spread

import (
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/money"
	"github.com/shopspring/decimal"
)

// Debt is an existing obligation of the business.
type Debt struct {
	ID       string `yaml:"id" json:"id"`
	Creditor string `yaml:"creditor" json:"creditor"`
	Balance  string `yaml:"balance" json:"balance"`
	Payment  string `yaml:"payment" json:"payment"` // monthly
	Rate     string `yaml:"rate" json:"rate"`       // annual %
	Term     string `yaml:"term" json:"term"`       // original months
}

// DebtFigures is a Debt with its fields parsed.
type DebtFigures struct {
	Balance float64
	Payment float64
	Rate    float64
	Term    int
}

// Figures parses the debt's fields.
func (d Debt) Figures() DebtFigures {
	return DebtFigures{
		Balance: money.ParseMoney(d.Balance),
		Payment: money.ParseMoney(d.Payment),
		Rate:    money.ParsePercent(d.Rate),
		Term:    money.ParseMonths(d.Term),
	}
}

// UseOfFunds is one line of the proposed loan's use-of-proceeds schedule.
type UseOfFunds struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	Amount      string `yaml:"amount" json:"amount"`
}

// PrimaryRequest sums the uses of funds to the cent.
func PrimaryRequest(uses []UseOfFunds) float64 {
	total := decimal.Zero
	for _, use := range uses {
		total = total.Add(money.ParseDecimal(use.Amount))
	}
	return total.InexactFloat64()
}

// PersonalLiabilities holds the guarantor's monthly personal debt payments.
type PersonalLiabilities struct {
	MortgagePayment    string `yaml:"mortgagePayment" json:"mortgagePayment"`
	AutoLoanPayment    string `yaml:"autoLoanPayment" json:"autoLoanPayment"`
	CreditCardPayment  string `yaml:"creditCardPayment" json:"creditCardPayment"`
	StudentLoanPayment string `yaml:"studentLoanPayment" json:"studentLoanPayment"`
	OtherPayment       string `yaml:"otherPayment" json:"otherPayment"`
}

// Monthly sums the monthly payment fields.
func (l PersonalLiabilities) Monthly() float64 {
	return money.ParseMoney(l.MortgagePayment) +
		money.ParseMoney(l.AutoLoanPayment) +
		money.ParseMoney(l.CreditCardPayment) +
		money.ParseMoney(l.StudentLoanPayment) +
		money.ParseMoney(l.OtherPayment)
}

// LoanTerms are the proposed loan's pricing parameters.
type LoanTerms struct {
	InterestRate     string `yaml:"interestRate" json:"interestRate"`
	TermMonths       string `yaml:"termMonths" json:"termMonths"`
	GuaranteePercent string `yaml:"guaranteePercent" json:"guaranteePercent"`
}

// Rate returns the annual interest rate in percent.
func (t LoanTerms) Rate() float64 {
	return money.ParsePercent(t.InterestRate)
}

// Term returns the term in months.
func (t LoanTerms) Term() int {
	return money.ParseMonths(t.TermMonths)
}

// Guarantee returns the guarantee share in percent, defaulting to 75 when the
// field is blank.
func (t LoanTerms) Guarantee() float64 {
	if t.GuaranteePercent == "" {
		return constants.DefaultGuaranteePercent
	}
	return money.ParsePercent(t.GuaranteePercent)
}

// AffiliateEntity is a related business consolidated into the global analysis.
type AffiliateEntity struct {
	ID            string               `yaml:"id" json:"id"`
	Name          string               `yaml:"name" json:"name"`
	Labels        []string             `yaml:"labels" json:"labels"`
	IncomePeriods []BusinessPeriod     `yaml:"incomePeriods" json:"incomePeriods"`
	BalanceSheets []BalanceSheetPeriod `yaml:"balanceSheets" json:"balanceSheets"`
}
