// Package optimizer sizes the proposed loan: it searches for the largest
// request whose coverage still meets a target DSCR.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/dscr"
	"github.com/iwvelando/sba-spread/pkg/format"
	"github.com/iwvelando/sba-spread/pkg/mathutil"
	"github.com/iwvelando/sba-spread/pkg/optimization"
	"github.com/iwvelando/sba-spread/pkg/spread"
	"go.uber.org/zap"
)

// FieldPrimaryRequest names the searched quantity in a Summary.
const FieldPrimaryRequest = "primaryRequest"

// ErrNoCoveragePeriod is returned when the deal has neither a full fiscal
// year nor an interim period to measure coverage on.
var ErrNoCoveragePeriod = errors.New("deal has no full-year or interim period to size against")

// Request bounds a sizing search. Zero fields take the package defaults.
type Request struct {
	TargetDSCR    float64 `json:"targetDscr"`
	MaxAmount     float64 `json:"maxAmount"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"maxIterations"`
}

// Normalize fills unset fields with defaults and rejects impossible bounds.
func (r *Request) Normalize() error {
	if r.TargetDSCR == 0 {
		r.TargetDSCR = constants.DefaultTargetDSCR
	}
	if r.MaxAmount == 0 {
		r.MaxAmount = constants.MaxSBALoanAmount
	}
	if r.Tolerance == 0 {
		r.Tolerance = constants.DefaultSizingTolerance
	}
	if r.MaxIterations == 0 {
		r.MaxIterations = constants.DefaultSizingIterations
	}
	switch {
	case r.TargetDSCR < 0:
		return fmt.Errorf("target DSCR must be positive, got %.2f", r.TargetDSCR)
	case r.MaxAmount < 0:
		return fmt.Errorf("maximum loan amount must be positive, got %.2f", r.MaxAmount)
	case r.Tolerance < 0:
		return fmt.Errorf("tolerance must be positive, got %.2f", r.Tolerance)
	case r.MaxIterations < 0:
		return fmt.Errorf("max iterations must be positive, got %d", r.MaxIterations)
	}
	return nil
}

type Runner struct {
	logger   *zap.Logger
	deal     spread.Deal
	analyzer *dscr.Analyzer
}

type evaluation struct {
	value   float64
	dscr    float64
	payment float64
	target  float64
}

// An empty request is always supportable.
func (e evaluation) feasible() bool {
	return mathutil.IsZero(e.value) || e.dscr >= e.target
}

func (e evaluation) headroom() float64 {
	return e.dscr - e.target
}

// NewRunner constructs a Runner for the deal. A nil clock uses time.Now.
func NewRunner(logger *zap.Logger, deal spread.Deal, now func() time.Time) (*Runner, error) {
	if len(deal.BusinessPeriods) == 0 {
		return nil, fmt.Errorf("deal %q has no business periods", deal.Name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	analyzer := dscr.NewAnalyzer(logger)
	if now != nil {
		analyzer = analyzer.WithClock(now)
	}
	return &Runner{logger: logger, deal: deal, analyzer: analyzer}, nil
}

// Run bisects the primary request between zero and req.MaxAmount. The deal's
// uses of funds are replaced by a single use of the trial amount on each
// evaluation; the Runner's deal itself is never modified.
func (r *Runner) Run(ctx context.Context, req Request) (optimization.Summary, error) {
	if err := req.Normalize(); err != nil {
		return optimization.Summary{}, err
	}

	original := spread.PrimaryRequest(r.deal.UsesOfFunds)
	originalEval, label, err := r.evaluate(ctx, r.deal, original, req.TargetDSCR)
	if err != nil {
		return optimization.Summary{}, err
	}

	summary := optimization.Summary{
		Period:          label,
		Field:           FieldPrimaryRequest,
		Original:        original,
		OriginalDisplay: format.Currency(original),
		TargetDSCR:      req.TargetDSCR,
		OriginalDSCR:    originalEval.dscr,
	}

	lowerEval, err := r.evaluateAmount(ctx, 0, req.TargetDSCR)
	if err != nil {
		return optimization.Summary{}, err
	}
	upperEval, err := r.evaluateAmount(ctx, req.MaxAmount, req.TargetDSCR)
	if err != nil {
		return optimization.Summary{}, err
	}

	var finalEval evaluation
	switch {
	case upperEval.feasible():
		finalEval = upperEval
		summary.Converged = true
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"coverage meets %s at the maximum loan amount %s",
			format.Ratio(req.TargetDSCR), format.Currency(req.MaxAmount)))
	case !mathutil.IsZero(lowerEval.dscr) && lowerEval.dscr < req.TargetDSCR:
		finalEval = lowerEval
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"existing obligations alone cover only %s, below the %s target",
			format.Ratio(lowerEval.dscr), format.Ratio(req.TargetDSCR)))
	default:
		finalEval = lowerEval
		lower, upper := 0.0, req.MaxAmount
		for summary.Iterations < req.MaxIterations && !mathutil.WithinTolerance(upper, lower, req.Tolerance) {
			mid := lower + (upper-lower)/2
			midEval, err := r.evaluateAmount(ctx, mid, req.TargetDSCR)
			if err != nil {
				return optimization.Summary{}, err
			}
			summary.Iterations++
			if midEval.feasible() {
				finalEval = midEval
				lower = mid
			} else {
				upper = mid
			}
		}
		summary.Converged = mathutil.WithinTolerance(upper, lower, req.Tolerance)
		if !summary.Converged {
			summary.Notes = append(summary.Notes, fmt.Sprintf(
				"search stopped after %d iterations within %s of the limit",
				summary.Iterations, format.Currency(upper-lower)))
		}
	}

	summary.Value = finalEval.value
	summary.ValueDisplay = format.Currency(finalEval.value)
	summary.DSCR = finalEval.dscr
	summary.Headroom = finalEval.headroom()
	summary.MonthlyPayment = finalEval.payment

	r.logger.Info("sized proposed loan",
		zap.String("op", "optimizer.Run"),
		zap.String("deal", r.deal.Name),
		zap.String("period", summary.Period),
		zap.Float64("targetDscr", summary.TargetDSCR),
		zap.Float64("original", summary.Original),
		zap.Float64("value", summary.Value),
		zap.Float64("dscr", summary.DSCR),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)
	return summary, nil
}

func (r *Runner) evaluateAmount(ctx context.Context, amount, target float64) (evaluation, error) {
	trial := r.deal
	trial.UsesOfFunds = nil
	if amount > 0 {
		trial.UsesOfFunds = []spread.UseOfFunds{{
			ID:          "sized-request",
			Description: "Sized request",
			Amount:      strconv.FormatFloat(amount, 'f', 2, 64),
		}}
	}
	e, _, err := r.evaluate(ctx, trial, amount, target)
	return e, err
}

func (r *Runner) evaluate(ctx context.Context, d spread.Deal, amount, target float64) (evaluation, string, error) {
	if err := ctx.Err(); err != nil {
		return evaluation{}, "", err
	}
	analysis, err := r.analyzer.Analyze(ctx, d)
	if err != nil {
		return evaluation{}, "", fmt.Errorf("sizing evaluation failed: %w", err)
	}

	col := analysis.FullYear
	if col == nil {
		col = analysis.Interim
	}
	if col == nil {
		return evaluation{}, "", ErrNoCoveragePeriod
	}
	return evaluation{
		value:   amount,
		dscr:    col.Global.DSCR,
		payment: col.Global.ProposedDebtPayment / constants.MonthsPerYear,
		target:  target,
	}, col.Label, nil
}
