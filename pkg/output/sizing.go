package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/sba-spread/pkg/format"
	"github.com/iwvelando/sba-spread/pkg/optimization"
)

// SizingTable lays out a loan sizing result.
func SizingTable(s optimization.Summary) Table {
	converged := "yes"
	if !s.Converged {
		converged = "no"
	}
	return Table{
		Title:   "Loan Sizing (" + s.Period + ")",
		Headers: []string{"", "Value"},
		Rows: [][]string{
			{"Target DSCR", format.Ratio(s.TargetDSCR)},
			{separatorRow},
			{"Requested", s.OriginalDisplay},
			{"Requested DSCR", format.Ratio(s.OriginalDSCR)},
			{separatorRow},
			{"Maximum Supportable", s.ValueDisplay},
			{"Monthly Payment", format.Currency(s.MonthlyPayment)},
			{"DSCR at Maximum", format.Ratio(s.DSCR)},
			{"Headroom", format.Ratio(s.Headroom)},
			{"Iterations", strconv.Itoa(s.Iterations)},
			{"Converged", converged},
		},
	}
}

// SizingFormat writes the sizing table followed by any search notes.
func SizingFormat(w io.Writer, s optimization.Summary) error {
	if _, err := fmt.Fprintln(w, RenderTable(SizingTable(s))); err != nil {
		return err
	}
	if len(s.Notes) > 0 {
		if _, err := fmt.Fprint(w, RenderWarnings(s.Notes)); err != nil {
			return err
		}
	}
	return nil
}
