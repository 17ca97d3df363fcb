// Package format renders spread figures using the report conventions:
// whole-dollar currency, two-decimal ratios and one-decimal percentages.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns a whole-dollar string with thousands separators (e.g., "-$1,235").
func Currency(amount float64) string {
	rounded := wholeDollars(amount)
	if rounded < 0 {
		return "-$" + printer.Sprintf("%.0f", -rounded)
	}
	return "$" + printer.Sprintf("%.0f", rounded)
}

// Ratio renders a ratio with two decimals (e.g., "1.25").
func Ratio(value float64) string {
	return printer.Sprintf("%.2f", value)
}

// Coverage renders a coverage ratio with the conventional "x" suffix.
func Coverage(value float64) string {
	return Ratio(value) + "x"
}

// Percent renders a percentage with one decimal (e.g., "60.0%").
func Percent(value float64) string {
	return printer.Sprintf("%.1f", value) + "%"
}

// Days renders a day count rounded to whole days.
func Days(value float64) string {
	return printer.Sprintf("%.0f", math.Round(value))
}

// wholeDollars rounds to the dollar and normalizes negative zero.
func wholeDollars(amount float64) float64 {
	rounded := math.Round(amount)
	if rounded == 0 {
		return 0
	}
	return rounded
}
