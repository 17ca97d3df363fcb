// Package validation checks deal inputs and report settings before a spread
// is run. Problems with a deal are warnings; only unusable settings are errors.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/loans"
	"github.com/iwvelando/sba-spread/pkg/money"
	"github.com/iwvelando/sba-spread/pkg/period"
	"github.com/iwvelando/sba-spread/pkg/spread"
)

// ValidatePeriodMonths warns when a stated period length cannot be used. A
// blank length means a full year and is not flagged.
func ValidatePeriodMonths(label, months string) []string {
	if strings.TrimSpace(months) == "" {
		return nil
	}
	n := money.ParseMonths(months)
	switch {
	case n <= 0:
		return []string{fmt.Sprintf("Period '%s' has an unusable length %q and will not be annualized", label, months)}
	case n > constants.MonthsPerYear:
		return []string{fmt.Sprintf("Period '%s' covers %d months; annualizing will scale it down", label, n)}
	}
	return nil
}

// ValidateLoanTerms checks the proposed loan's pricing parameters.
func ValidateLoanTerms(terms spread.LoanTerms, uses []spread.UseOfFunds) []string {
	var warnings []string

	if spread.PrimaryRequest(uses) <= 0 {
		warnings = append(warnings, "No uses of funds entered; the proposed loan carries no debt service")
	}
	if terms.Term() <= 0 {
		warnings = append(warnings, fmt.Sprintf("Loan term %q is not a positive number of months; a single-month term is assumed", terms.TermMonths))
	}
	if terms.Rate() < 0 {
		warnings = append(warnings, fmt.Sprintf("Loan interest rate %q is negative", terms.InterestRate))
	}
	if g := terms.Guarantee(); g < 0 || g > constants.PercentageMultiplier {
		warnings = append(warnings, fmt.Sprintf("Guarantee percent %q is outside 0-100", terms.GuaranteePercent))
	}

	return warnings
}

// ValidateDebt warns about an existing debt whose payment cannot retire it.
func ValidateDebt(d spread.Debt) []string {
	f := d.Figures()
	name := d.Creditor
	if name == "" {
		name = d.ID
	}

	var warnings []string
	if f.Balance > 0 && f.Payment <= 0 {
		warnings = append(warnings, fmt.Sprintf("Debt '%s' has a balance but no payment", name))
	}
	monthlyInterest := loans.CalculateInterestPayment(f.Balance, f.Rate)
	if f.Payment > 0 && f.Rate > 0 && f.Payment <= monthlyInterest {
		warnings = append(warnings, fmt.Sprintf("Debt '%s' payment %.2f does not cover monthly interest %.2f; the original term is used",
			name, f.Payment, monthlyInterest))
	}
	return warnings
}

// ValidateDeal performs general validation of a deal and returns warnings.
func ValidateDeal(d spread.Deal) []string {
	var warnings []string

	if len(d.BusinessPeriods) == 0 {
		warnings = append(warnings, "No business periods entered")
	}
	if len(d.Labels) > 0 && len(d.Labels) != len(d.BusinessPeriods) {
		warnings = append(warnings, fmt.Sprintf("%d labels for %d business periods", len(d.Labels), len(d.BusinessPeriods)))
	}
	if len(d.BusinessPeriods) > 0 {
		labels := make([]string, len(d.BusinessPeriods))
		for i := range labels {
			labels[i] = d.Label(i)
		}
		if _, ok := period.FindLastFYEIndex(period.Classify(d.BusinessPeriods, labels)); !ok {
			warnings = append(warnings, "No full fiscal year period; only interim coverage can be computed")
		}
	}
	if len(d.PersonalPeriods) > 0 && len(d.PersonalPeriods) != len(d.BusinessPeriods) {
		warnings = append(warnings, fmt.Sprintf("%d personal periods for %d business periods; the last personal period is reused",
			len(d.PersonalPeriods), len(d.BusinessPeriods)))
	}
	if len(d.BalanceSheets) > len(d.BusinessPeriods) {
		warnings = append(warnings, "More balance sheets than business periods; extra columns have no revenue for turnover ratios")
	}

	for i, p := range d.BusinessPeriods {
		warnings = append(warnings, ValidatePeriodMonths(d.Label(i), p.PeriodMonths)...)
	}
	for _, a := range d.Affiliates {
		for i, p := range a.IncomePeriods {
			warnings = append(warnings, ValidatePeriodMonths(fmt.Sprintf("%s #%d", a.Name, i+1), p.PeriodMonths)...)
		}
	}

	warnings = append(warnings, ValidateLoanTerms(d.LoanTerms, d.UsesOfFunds)...)
	for _, debt := range d.Debts {
		warnings = append(warnings, ValidateDebt(debt)...)
	}

	return warnings
}
