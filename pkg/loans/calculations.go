// Package loans provides loan amortization, SBA guarantee fee and existing
// debt term calculations.
package loans

import (
	"math"

	"github.com/iwvelando/sba-spread/pkg/constants"
)

// CalculateMonthlyPayment calculates the monthly payment for a loan using the
// standard amortization formula. A non-positive term is treated as a single
// month.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		termMonths = 1
	}

	periodicInterestRate := MonthlyRate(annualInterestRate)
	if periodicInterestRate == 0 {
		return principal / float64(termMonths)
	}

	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	return principal * periodicInterestRate * power / (power - 1.00)
}

// MonthlyPaymentFor is the payment an existing debt should carry given its
// balance, rate and term. Used to auto-fill the payment column.
func MonthlyPaymentFor(balance, annualInterestRate float64, termMonths int) float64 {
	return CalculateMonthlyPayment(balance, annualInterestRate, termMonths)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * MonthlyRate(annualInterestRate)
}

// MonthlyRate converts an annual percentage rate into a monthly fraction.
func MonthlyRate(annualInterestRate float64) float64 {
	return annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// AnnualDebtService annualizes a monthly payment.
func AnnualDebtService(monthlyPayment float64) float64 {
	return monthlyPayment * constants.MonthsPerYear
}
