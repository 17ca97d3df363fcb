package integration

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/iwvelando/sba-spread/internal/config"
	"github.com/iwvelando/sba-spread/pkg/dscr"
	"github.com/iwvelando/sba-spread/pkg/output"
	"github.com/iwvelando/sba-spread/pkg/spread"
	"go.uber.org/zap"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// largeDeal builds a deal with many fiscal years, an interim and projections,
// plus a long debt schedule and several affiliates.
func largeDeal(years, debts, affiliates int) spread.Deal {
	d := spread.Deal{
		Name: "Large Co",
		LoanTerms: spread.LoanTerms{
			InterestRate:     "10.25",
			TermMonths:       "300",
			GuaranteePercent: "75",
		},
		UsesOfFunds: []spread.UseOfFunds{
			{ID: "use-1", Description: "Real estate", Amount: "1,500,000"},
			{ID: "use-2", Description: "Equipment", Amount: "350,000"},
		},
		PersonalLiabilities: spread.PersonalLiabilities{MortgagePayment: "3200"},
		Options:             spread.DealOptions{IncludeAffiliates: true, IncludeRentAddback: true},
	}

	addPeriod := func(label, months string, projection bool, i int) {
		revenue := 1000000 + 50000*i
		d.Labels = append(d.Labels, label)
		d.BusinessPeriods = append(d.BusinessPeriods, spread.BusinessPeriod{
			PeriodMonths:      months,
			IsProjection:      projection,
			Revenue:           strconv.Itoa(revenue),
			COGS:              strconv.Itoa(revenue * 2 / 5),
			OperatingExpenses: strconv.Itoa(revenue / 4),
			RentExpense:       "48000",
			OfficersComp:      "120000",
			Depreciation:      "30000",
			Interest:          "15000",
		})
		d.PersonalPeriods = append(d.PersonalPeriods, spread.PersonalPeriod{
			Salary:        "90000",
			CostOfLiving:  "48000",
			PersonalTaxes: "14000",
		})
		d.BalanceSheets = append(d.BalanceSheets, spread.BalanceSheetPeriod{
			Cash:               strconv.Itoa(100000 + 1000*i),
			AccountsReceivable: "80000",
			Inventory:          "60000",
			CurrentLiabilities: "90000",
			LongTermDebt:       "400000",
		})
	}

	for i := 0; i < years; i++ {
		addPeriod(fmt.Sprintf("FY%d", 2000+i), "12", false, i)
	}
	addPeriod("Interim", "9", false, years)
	for i := 1; i <= 3; i++ {
		addPeriod(fmt.Sprintf("Projection Year %d", i), "12", true, years+i)
	}

	for i := 0; i < debts; i++ {
		d.Debts = append(d.Debts, spread.Debt{
			ID:       fmt.Sprintf("debt-%d", i),
			Creditor: fmt.Sprintf("Lender %d", i),
			Balance:  strconv.Itoa(50000 + 1000*i),
			Payment:  "900",
			Rate:     "6.5",
			Term:     "120",
		})
	}

	for i := 0; i < affiliates; i++ {
		d.Affiliates = append(d.Affiliates, spread.AffiliateEntity{
			ID:     fmt.Sprintf("affiliate-%d", i),
			Name:   fmt.Sprintf("Affiliate %d", i),
			Labels: []string{"FY2024"},
			IncomePeriods: []spread.BusinessPeriod{{
				PeriodMonths:      "12",
				Revenue:           "240000",
				OperatingExpenses: "180000",
				Depreciation:      "10000",
			}},
		})
	}
	return d
}

// TestBasicFunctionality tests basic functionality works
func TestBasicFunctionality(t *testing.T) {
	conf, err := config.LoadConfiguration(testDealPath)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}

	analysis, err := dscr.NewAnalyzer(zap.NewNop()).Analyze(context.Background(), conf.Deal)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if analysis.FullYear == nil {
		t.Fatal("expected full-year coverage")
	}

	t.Logf("Successfully analyzed %d periods", len(analysis.Classifications))
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	deal := largeDeal(40, 200, 25)
	analyzer := dscr.NewAnalyzer(zap.NewNop()).WithClock(fixedClock)

	start := time.Now()
	analysis, err := analyzer.Analyze(context.Background(), deal)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	analyzeTime := time.Since(start)

	start = time.Now()
	if _, err := output.CsvString(analysis); err != nil {
		t.Fatalf("CsvString failed: %v", err)
	}
	outputTime := time.Since(start)

	totalTime := analyzeTime + outputTime

	t.Logf("Performance metrics:")
	t.Logf("  Analyze: %v", analyzeTime)
	t.Logf("  CSV output: %v", outputTime)
	t.Logf("  Total time: %v", totalTime)

	if totalTime > 5*time.Second {
		t.Errorf("Total processing time %v exceeds 5 second threshold", totalTime)
	}

	if len(analysis.Classifications) != 44 {
		t.Errorf("expected 44 classified periods, got %d", len(analysis.Classifications))
	}
	if len(analysis.Projections) != 3 {
		t.Errorf("expected 3 projections, got %d", len(analysis.Projections))
	}
	if len(analysis.Debts) != 200 {
		t.Errorf("expected 200 analyzed debts, got %d", len(analysis.Debts))
	}
	if analysis.FullYear == nil || analysis.FullYear.Label != "FY2039" {
		t.Errorf("expected FY2039 as the full year, got %+v", analysis.FullYear)
	}
	if analysis.Interim == nil || analysis.Interim.Months != 9 {
		t.Errorf("expected a 9-month interim, got %+v", analysis.Interim)
	}
}

// TestMemoryUsage performs basic memory usage validation
func TestMemoryUsage(t *testing.T) {
	deal := largeDeal(10, 50, 5)
	analyzer := dscr.NewAnalyzer(zap.NewNop()).WithClock(fixedClock)

	for i := 0; i < 10; i++ {
		if _, err := analyzer.Analyze(context.Background(), deal); err != nil {
			t.Fatalf("Analyze failed on iteration %d: %v", i, err)
		}
	}

	t.Log("Successfully completed 10 iterations without memory issues")
}

// TestDataConsistency validates that multiple runs produce identical results
func TestDataConsistency(t *testing.T) {
	deal := largeDeal(10, 50, 5)
	analyzer := dscr.NewAnalyzer(zap.NewNop()).WithClock(fixedClock)

	first, err := analyzer.Analyze(context.Background(), deal)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	for run := 1; run < 3; run++ {
		got, err := analyzer.Analyze(context.Background(), deal)
		if err != nil {
			t.Fatalf("Analyze failed on run %d: %v", run, err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Errorf("run %d produced a different analysis", run)
		}
	}
}

// TestAnalyzeCanceled checks a canceled context stops the analysis.
func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := dscr.NewAnalyzer(zap.NewNop()).Analyze(ctx, largeDeal(5, 5, 5)); err == nil {
		t.Error("expected an error for a canceled context")
	}
}
