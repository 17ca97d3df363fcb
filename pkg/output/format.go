// Package output renders a deal analysis as terminal tables or CSV.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/sba-spread/pkg/dscr"
	"github.com/iwvelando/sba-spread/pkg/format"
	"github.com/iwvelando/sba-spread/pkg/metrics"
)

// line is one labeled figure of a report section.
type line struct {
	name  string
	value func(i int) float64
	kind  string
}

const (
	kindCurrency = "currency"
	kindPercent  = "percent"
	kindRatio    = "ratio"
	kindDays     = "days"
	kindMonths   = "months"
)

func render(kind string, v float64) string {
	switch kind {
	case kindPercent:
		return format.Percent(v)
	case kindRatio:
		return format.Ratio(v)
	case kindDays:
		return format.Days(v)
	case kindMonths:
		return strconv.Itoa(int(v))
	default:
		return format.Currency(v)
	}
}

func raw(kind string, v float64) string {
	if kind == kindMonths {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func incomeLines(ms []metrics.BusinessMetrics) []line {
	m := func(f func(metrics.BusinessMetrics) float64) func(int) float64 {
		return func(i int) float64 { return f(ms[i]) }
	}
	return []line{
		{"Months", m(func(x metrics.BusinessMetrics) float64 { return float64(x.Months) }), kindMonths},
		{"Revenue", m(func(x metrics.BusinessMetrics) float64 { return x.Revenue }), kindCurrency},
		{"COGS", m(func(x metrics.BusinessMetrics) float64 { return x.COGS }), kindCurrency},
		{"Gross Profit", m(func(x metrics.BusinessMetrics) float64 { return x.GrossProfit }), kindCurrency},
		{"Gross Margin", m(func(x metrics.BusinessMetrics) float64 { return x.GrossMargin }), kindPercent},
		{"Other Income", m(func(x metrics.BusinessMetrics) float64 { return x.OtherIncome }), kindCurrency},
		{"Operating Expenses", m(func(x metrics.BusinessMetrics) float64 { return x.OperatingExpenses }), kindCurrency},
		{"Rent", m(func(x metrics.BusinessMetrics) float64 { return x.RentExpense }), kindCurrency},
		{"Officers Comp", m(func(x metrics.BusinessMetrics) float64 { return x.OfficersComp }), kindCurrency},
		{"Other Expenses", m(func(x metrics.BusinessMetrics) float64 { return x.OtherExpenses }), kindCurrency},
		{"Addbacks", m(func(x metrics.BusinessMetrics) float64 { return x.Addbacks }), kindCurrency},
		{"EBITDA", m(func(x metrics.BusinessMetrics) float64 { return x.EBITDA }), kindCurrency},
		{"EBITDA Margin", m(func(x metrics.BusinessMetrics) float64 { return x.EBITDAMargin }), kindPercent},
		{"Depreciation", m(func(x metrics.BusinessMetrics) float64 { return x.Depreciation }), kindCurrency},
		{"Amortization", m(func(x metrics.BusinessMetrics) float64 { return x.Amortization }), kindCurrency},
		{"EBIT", m(func(x metrics.BusinessMetrics) float64 { return x.EBIT }), kindCurrency},
		{"Interest", m(func(x metrics.BusinessMetrics) float64 { return x.Interest }), kindCurrency},
		{"EBT", m(func(x metrics.BusinessMetrics) float64 { return x.EBT }), kindCurrency},
		{"Taxes", m(func(x metrics.BusinessMetrics) float64 { return x.Taxes }), kindCurrency},
		{"Net Income", m(func(x metrics.BusinessMetrics) float64 { return x.NetIncome }), kindCurrency},
		{"Net Margin", m(func(x metrics.BusinessMetrics) float64 { return x.NetMargin }), kindPercent},
		{"Section 179", m(func(x metrics.BusinessMetrics) float64 { return x.Section179 }), kindCurrency},
		{"Cash Flow", m(func(x metrics.BusinessMetrics) float64 { return x.CashFlow }), kindCurrency},
	}
}

func balanceLines(bs []metrics.BalanceSheetMetrics) []line {
	m := func(f func(metrics.BalanceSheetMetrics) float64) func(int) float64 {
		return func(i int) float64 { return f(bs[i]) }
	}
	return []line{
		{"Current Assets", m(func(x metrics.BalanceSheetMetrics) float64 { return x.CurrentAssets }), kindCurrency},
		{"Net Fixed Assets", m(func(x metrics.BalanceSheetMetrics) float64 { return x.NetFixedAssets }), kindCurrency},
		{"Total Assets", m(func(x metrics.BalanceSheetMetrics) float64 { return x.TotalAssets }), kindCurrency},
		{"Current Liabilities", m(func(x metrics.BalanceSheetMetrics) float64 { return x.CurrentLiabilities }), kindCurrency},
		{"Long-Term Debt", m(func(x metrics.BalanceSheetMetrics) float64 { return x.LongTermDebt }), kindCurrency},
		{"Total Liabilities", m(func(x metrics.BalanceSheetMetrics) float64 { return x.TotalLiabilities }), kindCurrency},
		{"Equity", m(func(x metrics.BalanceSheetMetrics) float64 { return x.Equity }), kindCurrency},
		{"Working Capital", m(func(x metrics.BalanceSheetMetrics) float64 { return x.WorkingCapital }), kindCurrency},
		{"Current Ratio", m(func(x metrics.BalanceSheetMetrics) float64 { return x.CurrentRatio }), kindRatio},
		{"Quick Ratio", m(func(x metrics.BalanceSheetMetrics) float64 { return x.QuickRatio }), kindRatio},
		{"Debt to Equity", m(func(x metrics.BalanceSheetMetrics) float64 { return x.DebtToEquity }), kindRatio},
		{"Debt to Assets", m(func(x metrics.BalanceSheetMetrics) float64 { return x.DebtToAssets }), kindRatio},
		{"AR Days", m(func(x metrics.BalanceSheetMetrics) float64 { return x.ARDays }), kindDays},
		{"Inventory Days", m(func(x metrics.BalanceSheetMetrics) float64 { return x.InventoryDays }), kindDays},
		{"AP Days", m(func(x metrics.BalanceSheetMetrics) float64 { return x.APDays }), kindDays},
		{"Cash Conversion Cycle", m(func(x metrics.BalanceSheetMetrics) float64 { return x.CashConversionCycle }), kindDays},
	}
}

func dscrLines(rs []dscr.PeriodDSCR) []line {
	m := func(f func(dscr.PeriodDSCR) float64) func(int) float64 {
		return func(i int) float64 { return f(rs[i]) }
	}
	return []line{
		{"Business EBITDA", m(func(x dscr.PeriodDSCR) float64 { return x.Global.BusinessEbitda }), kindCurrency},
		{"Depreciation", m(func(x dscr.PeriodDSCR) float64 { return x.Global.DepreciationAddback }), kindCurrency},
		{"Amortization", m(func(x dscr.PeriodDSCR) float64 { return x.Global.AmortizationAddback }), kindCurrency},
		{"Section 179", m(func(x dscr.PeriodDSCR) float64 { return x.Global.Section179Addback }), kindCurrency},
		{"Other Addbacks", m(func(x dscr.PeriodDSCR) float64 { return x.Global.OtherAddbacks }), kindCurrency},
		{"Business Cash Flow", m(func(x dscr.PeriodDSCR) float64 { return x.Global.BusinessCashFlow }), kindCurrency},
		{"Officers Comp", m(func(x dscr.PeriodDSCR) float64 { return x.Global.OfficersComp }), kindCurrency},
		{"Personal Income", m(func(x dscr.PeriodDSCR) float64 { return x.Global.PersonalW2Income }), kindCurrency},
		{"Schedule C", m(func(x dscr.PeriodDSCR) float64 { return x.Global.SchedCCashFlow }), kindCurrency},
		{"Schedule E / K-1", m(func(x dscr.PeriodDSCR) float64 { return x.Global.SchedECashFlow }), kindCurrency},
		{"Affiliates", m(func(x dscr.PeriodDSCR) float64 { return x.Global.AffiliateCashFlow }), kindCurrency},
		{"Total Income Available", m(func(x dscr.PeriodDSCR) float64 { return x.Global.TotalIncomeAvailable }), kindCurrency},
		{"Personal Expenses", m(func(x dscr.PeriodDSCR) float64 { return x.Global.PersonalExpenses }), kindCurrency},
		{"Est. Tax on Officers Comp", m(func(x dscr.PeriodDSCR) float64 { return x.Global.EstimatedTaxOnOfficersComp }), kindCurrency},
		{"Rent Addback", m(func(x dscr.PeriodDSCR) float64 { return x.Global.RentAddback }), kindCurrency},
		{"Net Cash Available", m(func(x dscr.PeriodDSCR) float64 { return x.Global.NetCashAvailable }), kindCurrency},
		{"Existing Debt", m(func(x dscr.PeriodDSCR) float64 { return x.Global.ExistingDebtPayment }), kindCurrency},
		{"Personal Debt", m(func(x dscr.PeriodDSCR) float64 { return x.Global.PersonalDebtPayment }), kindCurrency},
		{"Proposed Loan", m(func(x dscr.PeriodDSCR) float64 { return x.Global.ProposedDebtPayment }), kindCurrency},
		{"Annual Debt Service", m(func(x dscr.PeriodDSCR) float64 { return x.Global.AnnualDebtService }), kindCurrency},
		{"Global DSCR", m(func(x dscr.PeriodDSCR) float64 { return x.Global.DSCR }), kindRatio},
		{"Business DSCR", m(func(x dscr.PeriodDSCR) float64 { return x.Business.DSCR }), kindRatio},
	}
}

// coverageColumns gathers the full-year, interim and projection coverage in
// display order.
func coverageColumns(a dscr.Analysis) []dscr.PeriodDSCR {
	var cols []dscr.PeriodDSCR
	if a.FullYear != nil {
		cols = append(cols, *a.FullYear)
	}
	if a.Interim != nil {
		cols = append(cols, *a.Interim)
	}
	return append(cols, a.Projections...)
}

func periodLabels(a dscr.Analysis) []string {
	labels := make([]string, len(a.Classifications))
	for i, c := range a.Classifications {
		labels[i] = c.Label
	}
	return labels
}

func balanceLabels(a dscr.Analysis) []string {
	labels := make([]string, len(a.BalanceSheets))
	for i := range labels {
		if i < len(a.Classifications) {
			labels[i] = a.Classifications[i].Label
		} else {
			labels[i] = fmt.Sprintf("Column %d", i+1)
		}
	}
	return labels
}

func buildTable(title string, headers []string, lines []line) Table {
	t := Table{Title: title, Headers: append([]string{""}, headers...)}
	for _, l := range lines {
		row := []string{l.name}
		for i := range headers {
			row = append(row, render(l.kind, l.value(i)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// PrettyFormat writes human-readable tables for an analysis.
func PrettyFormat(w io.Writer, a dscr.Analysis) error {
	title := "SBA Spread"
	if a.DealName != "" {
		title += ": " + a.DealName
	}
	if _, err := fmt.Fprintln(w, RenderTitle(title)); err != nil {
		return err
	}

	var tables []Table
	if len(a.Metrics) > 0 {
		tables = append(tables, buildTable("Income Statement", periodLabels(a), incomeLines(a.Metrics)))
	}
	if len(a.BalanceSheets) > 0 {
		tables = append(tables, buildTable("Balance Sheet", balanceLabels(a), balanceLines(a.BalanceSheets)))
	}
	if cols := coverageColumns(a); len(cols) > 0 {
		headers := make([]string, len(cols))
		for i, c := range cols {
			headers[i] = c.Label
		}
		tables = append(tables, buildTable("Debt Service Coverage (annualized)", headers, dscrLines(cols)))
	}

	loan := a.Loan
	tables = append(tables, Table{
		Title:   "Proposed Loan",
		Headers: []string{"Term", "Value"},
		Rows: [][]string{
			{"Primary Request", format.Currency(loan.PrimaryRequest)},
			{"Guarantee", format.Percent(loan.GuaranteePercent)},
			{"Guaranteed Amount", format.Currency(loan.GuaranteedAmount)},
			{"Upfront Fee", format.Currency(loan.UpfrontFee)},
			{"Final Loan Amount", format.Currency(loan.FinalLoanAmount)},
			{separatorRow},
			{"Rate", format.Percent(loan.InterestRate)},
			{"Term (months)", strconv.Itoa(loan.TermMonths)},
			{"Monthly Payment", format.Currency(loan.MonthlyPayment)},
			{"Annual Debt Service", format.Currency(loan.AnnualDebtService)},
			{"Annual Servicing Fee", format.Currency(loan.AnnualServicingFee)},
			{separatorRow},
			{"First-Year Principal", format.Currency(a.FirstYearTotals.Principal)},
			{"First-Year Interest", format.Currency(a.FirstYearTotals.Interest)},
		},
	})

	if len(a.Debts) > 0 {
		t := Table{
			Title:   "Existing Debt",
			Headers: []string{"Creditor", "Balance", "Payment", "Rate", "Remaining", "Maturity", "Annual"},
		}
		for _, d := range a.Debts {
			maturity := d.Maturity
			if d.NegativeAmortization {
				maturity += " *"
			}
			t.Rows = append(t.Rows, []string{
				d.Creditor,
				format.Currency(d.Balance),
				format.Currency(d.Payment),
				format.Percent(d.Rate),
				strconv.Itoa(d.RemainingTerm),
				maturity,
				format.Currency(d.AnnualDebtService),
			})
		}
		tables = append(tables, t)
	}

	if len(a.Affiliates) > 0 {
		t := Table{Title: "Affiliates", Headers: []string{"Entity", "Cash Flow"}}
		for _, af := range a.Affiliates {
			t.Rows = append(t.Rows, []string{af.Name, format.Currency(af.CashFlow)})
		}
		tables = append(tables, t)
	}

	for _, t := range tables {
		if _, err := fmt.Fprintln(w, RenderTable(t)); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormat writes the full analysis as indented JSON.
func JSONFormat(w io.Writer, a dscr.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// CsvFormat writes the analysis as long-form CSV: one row per section, line
// and column. Values are unformatted with two decimals.
func CsvFormat(w io.Writer, a dscr.Analysis) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "line", "period", "value"}); err != nil {
		return err
	}

	section := func(name string, labels []string, lines []line) error {
		for _, l := range lines {
			for i, label := range labels {
				if err := cw.Write([]string{name, l.name, label, raw(l.kind, l.value(i))}); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := section("income", periodLabels(a), incomeLines(a.Metrics)); err != nil {
		return err
	}
	if err := section("balance", balanceLabels(a), balanceLines(a.BalanceSheets)); err != nil {
		return err
	}
	cols := coverageColumns(a)
	colLabels := make([]string, len(cols))
	for i, c := range cols {
		colLabels[i] = c.Label
	}
	if err := section("dscr", colLabels, dscrLines(cols)); err != nil {
		return err
	}

	loan := a.Loan
	loanRows := [][2]string{
		{"Primary Request", raw(kindCurrency, loan.PrimaryRequest)},
		{"Upfront Fee", raw(kindCurrency, loan.UpfrontFee)},
		{"Final Loan Amount", raw(kindCurrency, loan.FinalLoanAmount)},
		{"Monthly Payment", raw(kindCurrency, loan.MonthlyPayment)},
		{"Annual Debt Service", raw(kindCurrency, loan.AnnualDebtService)},
		{"First-Year Principal", raw(kindCurrency, a.FirstYearTotals.Principal)},
		{"First-Year Interest", raw(kindCurrency, a.FirstYearTotals.Interest)},
	}
	for _, r := range loanRows {
		if err := cw.Write([]string{"loan", r[0], "", r[1]}); err != nil {
			return err
		}
	}
	for _, d := range a.Debts {
		if err := cw.Write([]string{"debt", d.Creditor, d.Maturity, raw(kindCurrency, d.AnnualDebtService)}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CsvString renders CsvFormat into a string.
func CsvString(a dscr.Analysis) (string, error) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, a); err != nil {
		return "", err
	}
	return buf.String(), nil
}
