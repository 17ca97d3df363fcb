package dscr

import (
	"math"
	"testing"

	"github.com/iwvelando/sba-spread/pkg/loans"
	"github.com/iwvelando/sba-spread/pkg/spread"
)

const tolerance = 0.0001

func scenarioInputs() Inputs {
	return Inputs{
		Business: spread.BusinessPeriod{
			PeriodMonths:      "12",
			Revenue:           "500000",
			COGS:              "200000",
			OperatingExpenses: "100000",
			RentExpense:       "24000",
			OfficersComp:      "80000",
			OtherExpenses:     "0",
			OtherIncome:       "0",
			Addbacks:          "0",
			Depreciation:      "20000",
			Amortization:      "0",
			Section179:        "0",
		},
		Personal: spread.PersonalPeriod{Salary: "60000"},
		Uses:     []spread.UseOfFunds{{Description: "Acquisition", Amount: "300,000"}},
		Terms:    spread.LoanTerms{InterestRate: "6", TermMonths: "120", GuaranteePercent: "75"},
	}
}

func TestComputeDSCRScenario(t *testing.T) {
	r := ComputeDSCR(scenarioInputs())

	expected := map[string][2]float64{
		"AnnualizationFactor":        {r.AnnualizationFactor, 1},
		"BusinessEbitda":             {r.BusinessEbitda, 176000},
		"OfficersComp":               {r.OfficersComp, 80000},
		"BusinessCashFlow":           {r.BusinessCashFlow, 196000},
		"PersonalW2Income":           {r.PersonalW2Income, 60000},
		"TotalIncomeAvailable":       {r.TotalIncomeAvailable, 336000},
		"PersonalExpenses":           {r.PersonalExpenses, 0},
		"EstimatedTaxOnOfficersComp": {r.EstimatedTaxOnOfficersComp, 24000},
		"RentAddback":                {r.RentAddback, 0},
		"NetCashAvailable":           {r.NetCashAvailable, 312000},
		"ExistingDebtPayment":        {r.ExistingDebtPayment, 0},
		"PersonalDebtPayment":        {r.PersonalDebtPayment, 0},
		// 2% of the first $150,000 and 3% of the next $150,000 are financed.
		"ProposedLoanAmount": {r.ProposedLoanAmount, 307500},
	}
	for name, pair := range expected {
		if math.Abs(pair[0]-pair[1]) > tolerance {
			t.Errorf("%s = %.4f, expected %.4f", name, pair[0], pair[1])
		}
	}

	proposed := 12 * loans.CalculateMonthlyPayment(307500, 6, 120)
	if math.Abs(r.ProposedDebtPayment-proposed) > tolerance {
		t.Errorf("ProposedDebtPayment = %.4f, expected %.4f", r.ProposedDebtPayment, proposed)
	}
	if r.AnnualDebtService != r.ExistingDebtPayment+r.PersonalDebtPayment+r.ProposedDebtPayment {
		t.Error("AnnualDebtService does not sum its components")
	}
	if math.Abs(r.DSCR-r.NetCashAvailable/r.AnnualDebtService) > 1e-12 {
		t.Errorf("DSCR = %.6f is not reproducible from its intermediates", r.DSCR)
	}
	if math.Abs(r.DSCR-7.616) > 0.001 {
		t.Errorf("DSCR = %.4f, expected about 7.616", r.DSCR)
	}
}

func TestComputeDSCROfficersCompCarvedOut(t *testing.T) {
	in := scenarioInputs()
	in.Business.OfficersComp = "0"
	without := ComputeDSCR(in)
	with := ComputeDSCR(scenarioInputs())

	if with.BusinessEbitda != without.BusinessEbitda {
		t.Errorf("officer compensation should not reduce the engine's EBITDA: %.2f vs %.2f",
			with.BusinessEbitda, without.BusinessEbitda)
	}
	// Adding officer comp adds 70% of it after the flat tax estimate.
	if diff := with.NetCashAvailable - without.NetCashAvailable; math.Abs(diff-56000) > tolerance {
		t.Errorf("net cash difference = %.2f, expected 56000", diff)
	}
}

func TestComputeDSCRInterimAnnualization(t *testing.T) {
	in := scenarioInputs()
	in.Business.PeriodMonths = "6"
	in.Business.Revenue = "250000"
	in.Business.COGS = "100000"
	in.Business.OperatingExpenses = "50000"
	in.Business.RentExpense = "12000"
	in.Business.OfficersComp = "40000"
	in.Business.Depreciation = "10000"

	r := ComputeDSCR(in)
	if r.AnnualizationFactor != 2 {
		t.Errorf("AnnualizationFactor = %.2f, expected 2", r.AnnualizationFactor)
	}
	if math.Abs(r.BusinessEbitda-176000) > tolerance || math.Abs(r.BusinessCashFlow-196000) > tolerance {
		t.Errorf("annualized ebitda/cash flow = %.2f/%.2f, expected 176000/196000", r.BusinessEbitda, r.BusinessCashFlow)
	}
	// Personal income is not annualized.
	if r.PersonalW2Income != 60000 {
		t.Errorf("PersonalW2Income = %.2f, expected 60000", r.PersonalW2Income)
	}
}

func TestComputeDSCROptions(t *testing.T) {
	in := scenarioInputs()
	in.Personal.SchedERents = "36000"
	in.Personal.SchedEExpenses = "20000"
	in.Personal.SchedEInterest = "4000"
	in.Personal.SchedEDepreciation = "6000"
	in.Personal.K1OrdinaryIncome = "10000"

	base := ComputeDSCR(in)
	if base.SchedECashFlow != 36000 {
		t.Errorf("SchedECashFlow = %.2f, expected 36000", base.SchedECashFlow)
	}

	in.Options = Options{IncludeRentAddback: true, IncludeScheduleE: true, AffiliateCashFlow: 15000}
	opt := ComputeDSCR(in)

	if opt.RentAddback != 24000 {
		t.Errorf("RentAddback = %.2f, expected 24000", opt.RentAddback)
	}
	if diff := opt.NetCashAvailable - base.NetCashAvailable; math.Abs(diff-(24000+36000+15000)) > tolerance {
		t.Errorf("options added %.2f to net cash, expected 75000", diff)
	}
	if opt.AffiliateCashFlow != 15000 {
		t.Errorf("AffiliateCashFlow = %.2f, expected 15000", opt.AffiliateCashFlow)
	}
}

func TestComputeDSCRScheduleC(t *testing.T) {
	in := scenarioInputs()
	in.Personal.SchedCRevenue = "50000"
	in.Personal.SchedCCOGS = "10000"
	in.Personal.SchedCExpenses = "15000"
	in.Personal.SchedCInterest = "1000"
	in.Personal.SchedCDepreciation = "2000"
	in.Personal.SchedCAmortization = "500"
	in.Personal.SchedCOther = "500"

	if got := ComputeDSCR(in).SchedCCashFlow; got != 29000 {
		t.Errorf("SchedCCashFlow = %.2f, expected 29000", got)
	}
}

func TestComputeDSCRDebtService(t *testing.T) {
	in := scenarioInputs()
	in.Debts = []spread.Debt{{Payment: "2000"}, {Payment: "500"}}
	in.PersonalLiabilities = spread.PersonalLiabilities{MortgagePayment: "1500", AutoLoanPayment: "400"}
	in.Personal.CostOfLiving = "36000"
	in.Personal.PersonalTaxes = "12000"

	r := ComputeDSCR(in)
	if r.ExistingDebtPayment != 30000 {
		t.Errorf("ExistingDebtPayment = %.2f, expected 30000", r.ExistingDebtPayment)
	}
	if r.PersonalDebtPayment != 22800 {
		t.Errorf("PersonalDebtPayment = %.2f, expected 22800", r.PersonalDebtPayment)
	}
	if r.PersonalExpenses != 48000 {
		t.Errorf("PersonalExpenses = %.2f, expected 48000", r.PersonalExpenses)
	}
}

func TestDSCRMonotonicity(t *testing.T) {
	base := ComputeDSCR(scenarioInputs())

	heavier := scenarioInputs()
	heavier.Debts = []spread.Debt{{Payment: "1000"}}
	if got := ComputeDSCR(heavier); got.DSCR >= base.DSCR {
		t.Errorf("more debt service should lower DSCR: %.4f >= %.4f", got.DSCR, base.DSCR)
	}

	richer := scenarioInputs()
	richer.Personal.Bonuses = "10000"
	if got := ComputeDSCR(richer); got.DSCR <= base.DSCR {
		t.Errorf("more cash should raise DSCR: %.4f <= %.4f", got.DSCR, base.DSCR)
	}
}

func TestDSCRZeroDebtService(t *testing.T) {
	in := scenarioInputs()
	in.Uses = nil

	r := ComputeDSCR(in)
	if r.AnnualDebtService != 0 || r.DSCR != 0 {
		t.Errorf("no debt service should give DSCR 0, got %.4f over %.2f", r.DSCR, r.AnnualDebtService)
	}
}

func TestComputeBusinessDSCR(t *testing.T) {
	in := scenarioInputs()
	r := ComputeBusinessDSCR(in.Business, nil, in.Uses, in.Terms)

	if math.Abs(r.CashAvailable-252000) > tolerance {
		t.Errorf("CashAvailable = %.2f, expected 252000", r.CashAvailable)
	}
	if math.Abs(r.DSCR-r.CashAvailable/r.AnnualDebtService) > 1e-12 {
		t.Errorf("DSCR = %.6f is not reproducible from its intermediates", r.DSCR)
	}
	if global := ComputeDSCR(in); r.DSCR >= global.DSCR {
		t.Errorf("business-only DSCR %.4f should be below global %.4f with personal income", r.DSCR, global.DSCR)
	}
}

func TestAffiliateCashFlow(t *testing.T) {
	tests := []struct {
		name      string
		affiliate spread.AffiliateEntity
		expected  float64
	}{
		{
			name:      "No periods",
			affiliate: spread.AffiliateEntity{Name: "Empty"},
			expected:  0,
		},
		{
			name: "Most recent full year",
			affiliate: spread.AffiliateEntity{
				Labels: []string{"FY2024", "Interim 2025"},
				IncomePeriods: []spread.BusinessPeriod{
					{PeriodMonths: "12", Revenue: "100000", COGS: "40000", Depreciation: "5000"},
					{PeriodMonths: "6", Revenue: "90000"},
				},
			},
			expected: 65000,
		},
		{
			name: "Latest period when no full year",
			affiliate: spread.AffiliateEntity{
				IncomePeriods: []spread.BusinessPeriod{
					{PeriodMonths: "6", Revenue: "50000"},
				},
			},
			expected: 100000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AffiliateCashFlow(tt.affiliate); math.Abs(got-tt.expected) > tolerance {
				t.Errorf("AffiliateCashFlow() = %.2f, expected %.2f", got, tt.expected)
			}
		})
	}
}
