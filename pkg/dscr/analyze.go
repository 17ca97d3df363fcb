package dscr

import (
	"context"
	"fmt"
	"time"

	"github.com/iwvelando/sba-spread/pkg/datetime"
	"github.com/iwvelando/sba-spread/pkg/loans"
	"github.com/iwvelando/sba-spread/pkg/metrics"
	"github.com/iwvelando/sba-spread/pkg/period"
	"github.com/iwvelando/sba-spread/pkg/spread"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PeriodDSCR is the global and business-only coverage of one period.
type PeriodDSCR struct {
	Index    int            `json:"index"`
	Label    string         `json:"label"`
	Months   int            `json:"months"`
	Global   Result         `json:"global"`
	Business BusinessResult `json:"business"`
}

// AffiliateSummary is the cash flow one affiliate contributes.
type AffiliateSummary struct {
	Name     string  `json:"name"`
	CashFlow float64 `json:"cashFlow"`
}

// Analysis is the complete credit picture of a deal.
type Analysis struct {
	DealName        string                        `json:"dealName"`
	AsOf            string                        `json:"asOf"`
	Classifications []period.Classification       `json:"classifications"`
	Metrics         []metrics.BusinessMetrics     `json:"metrics"`
	Annualized      []metrics.BusinessMetrics     `json:"annualized"`
	BalanceSheets   []metrics.BalanceSheetMetrics `json:"balanceSheets"`
	FullYear        *PeriodDSCR                   `json:"fullYear,omitempty"`
	Interim         *PeriodDSCR                   `json:"interim,omitempty"`
	Projections     []PeriodDSCR                  `json:"projections,omitempty"`
	Loan            loans.LoanSummary             `json:"loan"`
	FirstYear       []loans.Payment               `json:"firstYear,omitempty"`
	FirstYearTotals FirstYearTotals               `json:"firstYearTotals"`
	Debts           []loans.DebtAnalysis          `json:"debts"`
	Affiliates      []AffiliateSummary            `json:"affiliates,omitempty"`
}

// FirstYearTotals splits the proposed loan's first twelve payments.
type FirstYearTotals struct {
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
}

// Analyzer runs the full analysis of a deal.
type Analyzer struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyzer creates a new Analyzer. A nil logger is replaced with a no-op
// logger.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger, now: time.Now}
}

// WithClock fixes the date maturities and the first-year schedule are counted
// from.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Analyze classifies the deal's periods, computes metrics for every period and
// coverage for the latest full year, the current interim and each projection.
func (a *Analyzer) Analyze(ctx context.Context, deal spread.Deal) (Analysis, error) {
	now := a.now()
	labels := make([]string, len(deal.BusinessPeriods))
	for i := range labels {
		labels[i] = deal.Label(i)
	}

	out := Analysis{
		DealName:        deal.Name,
		AsOf:            now.Format(datetime.DateTimeLayout),
		Classifications: period.Classify(deal.BusinessPeriods, labels),
		Metrics:         make([]metrics.BusinessMetrics, len(deal.BusinessPeriods)),
		Annualized:      make([]metrics.BusinessMetrics, len(deal.BusinessPeriods)),
		BalanceSheets:   make([]metrics.BalanceSheetMetrics, len(deal.BalanceSheets)),
		Debts:           make([]loans.DebtAnalysis, len(deal.Debts)),
	}

	// Each goroutine writes only its own index.
	g, gctx := errgroup.WithContext(ctx)
	for i, bp := range deal.BusinessPeriods {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out.Metrics[i] = metrics.ComputeBusinessMetrics(bp)
			out.Annualized[i] = metrics.Annualize(out.Metrics[i], out.Metrics[i].Months)
			return nil
		})
	}
	for i, d := range deal.Debts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out.Debts[i] = loans.AnalyzeDebt(d, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Analysis{}, fmt.Errorf("computing period metrics: %w", err)
	}

	// Turnovers read the annualized income statement of the same column.
	for i, bs := range deal.BalanceSheets {
		var revenue, cogs float64
		if i < len(out.Annualized) {
			revenue, cogs = out.Annualized[i].Revenue, out.Annualized[i].COGS
		}
		out.BalanceSheets[i] = metrics.ComputeBalanceSheetMetrics(bs, revenue, cogs)
	}

	opts := Options{
		IncludeRentAddback: deal.Options.IncludeRentAddback,
		IncludeScheduleE:   deal.Options.IncludeScheduleE,
	}
	if deal.Options.IncludeAffiliates {
		for _, affiliate := range deal.Affiliates {
			out.Affiliates = append(out.Affiliates, AffiliateSummary{Name: affiliate.Name, CashFlow: AffiliateCashFlow(affiliate)})
		}
		opts.AffiliateCashFlow = TotalAffiliateCashFlow(deal.Affiliates)
	}

	if idx, ok := period.FindLastFYEIndex(out.Classifications); ok {
		r := a.periodDSCR(deal, out.Classifications[idx], opts)
		out.FullYear = &r
	} else {
		a.logger.Debug(fmt.Sprintf("deal %s has no full fiscal year period", deal.Name),
			zap.String("op", "dscr.Analyze"),
		)
	}
	if idx, ok := period.FindCurrentInterimIndex(out.Classifications); ok {
		r := a.periodDSCR(deal, out.Classifications[idx], opts)
		out.Interim = &r
	}
	for _, idx := range period.FindProjectionIndices(out.Classifications) {
		out.Projections = append(out.Projections, a.periodDSCR(deal, out.Classifications[idx], opts))
	}

	out.Loan = loans.SummarizeLoan(spread.PrimaryRequest(deal.UsesOfFunds), deal.LoanTerms, loans.ScheduleA)
	firstYear, err := a.firstYear(out.Loan, now)
	if err != nil {
		return Analysis{}, err
	}
	out.FirstYear = firstYear
	out.FirstYearTotals.Principal, out.FirstYearTotals.Interest = loans.ScheduleTotals(firstYear)

	a.logger.Debug(fmt.Sprintf("analyzed deal %s: %d business periods, %d balance sheets, %d debts",
		deal.Name, len(deal.BusinessPeriods), len(deal.BalanceSheets), len(deal.Debts)),
		zap.String("op", "dscr.Analyze"),
	)
	return out, nil
}

// periodDSCR pairs a business period with the personal period at the same
// index, clamped to the last one available.
func (a *Analyzer) periodDSCR(deal spread.Deal, c period.Classification, opts Options) PeriodDSCR {
	bp := deal.BusinessPeriods[c.Index]

	var pp spread.PersonalPeriod
	if n := len(deal.PersonalPeriods); n > 0 {
		pp = deal.PersonalPeriods[min(c.Index, n-1)]
	}

	return PeriodDSCR{
		Index:  c.Index,
		Label:  c.Label,
		Months: c.Months,
		Global: ComputeDSCR(Inputs{
			Business:            bp,
			Personal:            pp,
			Debts:               deal.Debts,
			PersonalLiabilities: deal.PersonalLiabilities,
			Uses:                deal.UsesOfFunds,
			Terms:               deal.LoanTerms,
			Options:             opts,
		}),
		Business: ComputeBusinessDSCR(bp, deal.Debts, deal.UsesOfFunds, deal.LoanTerms),
	}
}

// firstYear amortizes the proposed loan for its first twelve payments.
func (a *Analyzer) firstYear(summary loans.LoanSummary, now time.Time) ([]loans.Payment, error) {
	if summary.FinalLoanAmount <= 0 {
		return nil, nil
	}
	start := datetime.AddMonths(now, 1).Format(datetime.DateTimeLayout)
	through, err := datetime.OffsetDate(start, datetime.DateTimeLayout, 11)
	if err != nil {
		return nil, err
	}

	generator := loans.NewAmortizationScheduleGenerator(a.logger)
	schedule, err := generator.GenerateSchedule(&loans.LoanConfig{
		Name:         "proposed",
		StartDate:    start,
		Principal:    summary.FinalLoanAmount,
		InterestRate: summary.InterestRate,
		Term:         summary.TermMonths,
	}, through)
	if err != nil {
		return nil, fmt.Errorf("amortizing proposed loan: %w", err)
	}
	return schedule, nil
}
