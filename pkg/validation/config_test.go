package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/sba-spread/pkg/spread"
)

func TestValidatePeriodMonths(t *testing.T) {
	tests := []struct {
		name       string
		months     string
		expectWarn bool
	}{
		{"Blank means full year", "", false},
		{"Full year", "12", false},
		{"Interim", "6", false},
		{"Unparseable", "six", true},
		{"Zero", "0", true},
		{"Longer than a year", "18", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidatePeriodMonths("FY2024", tt.months)
			if (len(warnings) > 0) != tt.expectWarn {
				t.Errorf("ValidatePeriodMonths(%q) warnings = %v, expectWarn %v", tt.months, warnings, tt.expectWarn)
			}
		})
	}
}

func TestValidateLoanTerms(t *testing.T) {
	uses := []spread.UseOfFunds{{Amount: "100000"}}

	tests := []struct {
		name          string
		terms         spread.LoanTerms
		uses          []spread.UseOfFunds
		expectedCount int
	}{
		{"Valid", spread.LoanTerms{InterestRate: "6", TermMonths: "120"}, uses, 0},
		{"No uses", spread.LoanTerms{InterestRate: "6", TermMonths: "120"}, nil, 1},
		{"Missing term", spread.LoanTerms{InterestRate: "6"}, uses, 1},
		{"Negative rate", spread.LoanTerms{InterestRate: "-1", TermMonths: "120"}, uses, 1},
		{"Guarantee over 100", spread.LoanTerms{InterestRate: "6", TermMonths: "120", GuaranteePercent: "110"}, uses, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateLoanTerms(tt.terms, tt.uses)
			if len(warnings) != tt.expectedCount {
				t.Errorf("ValidateLoanTerms() warnings = %v, expected %d", warnings, tt.expectedCount)
			}
		})
	}
}

func TestValidateDebt(t *testing.T) {
	tests := []struct {
		name       string
		debt       spread.Debt
		expectWarn string
	}{
		{"Healthy", spread.Debt{Creditor: "Bank", Balance: "10000", Payment: "500", Rate: "6"}, ""},
		{"No payment", spread.Debt{Creditor: "Bank", Balance: "10000"}, "no payment"},
		{"Interest only", spread.Debt{ID: "d-1", Balance: "100000", Payment: "500", Rate: "6"}, "does not cover monthly interest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateDebt(tt.debt)
			if tt.expectWarn == "" {
				if len(warnings) != 0 {
					t.Errorf("unexpected warnings: %v", warnings)
				}
				return
			}
			if len(warnings) != 1 || !strings.Contains(warnings[0], tt.expectWarn) {
				t.Errorf("warnings = %v, expected one containing %q", warnings, tt.expectWarn)
			}
		})
	}
}

func TestValidateDeal(t *testing.T) {
	deal := spread.Deal{
		Labels:          []string{"FY2024", "Interim"},
		BusinessPeriods: []spread.BusinessPeriod{{PeriodMonths: "12"}},
		BalanceSheets:   []spread.BalanceSheetPeriod{{}, {}},
		UsesOfFunds:     []spread.UseOfFunds{{Amount: "100000"}},
		LoanTerms:       spread.LoanTerms{InterestRate: "6", TermMonths: "120"},
		Affiliates: []spread.AffiliateEntity{{
			Name:          "Affiliate",
			IncomePeriods: []spread.BusinessPeriod{{PeriodMonths: "abc"}},
		}},
	}

	warnings := ValidateDeal(deal)
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[2], "Affiliate #1") {
		t.Errorf("expected the affiliate period warning last, got %q", warnings[2])
	}

	interimOnly := spread.Deal{
		BusinessPeriods: []spread.BusinessPeriod{{PeriodMonths: "6"}},
		PersonalPeriods: []spread.PersonalPeriod{{}, {}},
		UsesOfFunds:     []spread.UseOfFunds{{Amount: "100000"}},
		LoanTerms:       spread.LoanTerms{InterestRate: "6", TermMonths: "120"},
	}
	if got := ValidateDeal(interimOnly); len(got) != 2 {
		t.Errorf("expected no-FYE and personal count warnings, got %v", got)
	}

	if got := ValidateDeal(spread.Deal{}); len(got) != 3 {
		t.Errorf("empty deal should warn about periods, uses and term, got %v", got)
	}
}
