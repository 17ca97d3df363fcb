// Package money converts the string-typed fields of spreadsheet records into
// numbers. Every parser here is total: input that cannot be read as a number
// yields zero, the same way a blank or half-typed spreadsheet cell does.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var stripper = strings.NewReplacer("$", "", ",", "", "_", "", " ", "")

// ParseMoney parses a dollar amount. Currency symbols and thousands separators
// are ignored and "(1,200)" reads as -1200. Anything else that fails to parse
// returns 0.
func ParseMoney(s string) float64 {
	d, ok := parseDecimal(s)
	if !ok {
		return 0
	}
	return d.InexactFloat64()
}

// ParseDecimal is ParseMoney without the float conversion, for callers that
// keep doing exact arithmetic.
func ParseDecimal(s string) decimal.Decimal {
	d, ok := parseDecimal(s)
	if !ok {
		return decimal.Zero
	}
	return d
}

// ParsePercent parses a percentage such as "6.5" or "6.5%" into 6.5.
func ParsePercent(s string) float64 {
	return ParseMoney(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

// ParseMonths parses a month count. Fractions are truncated and anything
// unparseable or negative is 0.
func ParseMonths(s string) int {
	m := int(ParseMoney(s))
	if m < 0 {
		return 0
	}
	return m
}

// MonthsOrDefault returns ParseMonths(s), substituting def when the field is
// blank. A field that holds garbage still yields 0.
func MonthsOrDefault(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return ParseMonths(s)
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	cleaned := stripper.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
