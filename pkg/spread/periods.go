// Package spread defines the raw records of a loan spread. Every monetary or
// rate field is kept as the string the user typed; the Figures methods parse
// them with money.ParseMoney at computation time.
package spread

import (
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/money"
)

// BusinessPeriod is one reporting period of a business income statement.
type BusinessPeriod struct {
	PeriodDate        string `yaml:"periodDate" json:"periodDate"`
	PeriodMonths      string `yaml:"periodMonths" json:"periodMonths"`
	IsProjection      bool   `yaml:"isProjection" json:"isProjection"`
	Revenue           string `yaml:"revenue" json:"revenue"`
	COGS              string `yaml:"cogs" json:"cogs"`
	OperatingExpenses string `yaml:"operatingExpenses" json:"operatingExpenses"`
	RentExpense       string `yaml:"rentExpense" json:"rentExpense"`
	OfficersComp      string `yaml:"officersComp" json:"officersComp"`
	Depreciation      string `yaml:"depreciation" json:"depreciation"`
	Amortization      string `yaml:"amortization" json:"amortization"`
	Section179        string `yaml:"section179" json:"section179"`
	Interest          string `yaml:"interest" json:"interest"`
	OtherIncome       string `yaml:"otherIncome" json:"otherIncome"`
	OtherExpenses     string `yaml:"otherExpenses" json:"otherExpenses"`
	Addbacks          string `yaml:"addbacks" json:"addbacks"`
	Taxes             string `yaml:"taxes" json:"taxes"`

	// Schedule M-1 book-to-tax reconciliation.
	M1BookIncome            string `yaml:"m1BookIncome" json:"m1BookIncome"`
	M1FederalTax            string `yaml:"m1FederalTax" json:"m1FederalTax"`
	M1NondeductibleExpenses string `yaml:"m1NondeductibleExpenses" json:"m1NondeductibleExpenses"`
	M1TaxExemptIncome       string `yaml:"m1TaxExemptIncome" json:"m1TaxExemptIncome"`
}

// BusinessFigures is a BusinessPeriod with every field parsed.
type BusinessFigures struct {
	Months            int
	Revenue           float64
	COGS              float64
	OperatingExpenses float64
	RentExpense       float64
	OfficersComp      float64
	Depreciation      float64
	Amortization      float64
	Section179        float64
	Interest          float64
	OtherIncome       float64
	OtherExpenses     float64
	Addbacks          float64
	Taxes             float64

	M1BookIncome            float64
	M1FederalTax            float64
	M1NondeductibleExpenses float64
	M1TaxExemptIncome       float64
}

// Months returns the period length. A blank field means a full year; a field
// that cannot be parsed is 0 months.
func (p BusinessPeriod) Months() int {
	return money.MonthsOrDefault(p.PeriodMonths, constants.DefaultPeriodMonths)
}

// AnnualizationFactor returns 12/months, or 1 when months is not positive.
func (p BusinessPeriod) AnnualizationFactor() float64 {
	return AnnualizationFactor(p.Months())
}

// Figures parses every field of the period.
func (p BusinessPeriod) Figures() BusinessFigures {
	return BusinessFigures{
		Months:                  p.Months(),
		Revenue:                 money.ParseMoney(p.Revenue),
		COGS:                    money.ParseMoney(p.COGS),
		OperatingExpenses:       money.ParseMoney(p.OperatingExpenses),
		RentExpense:             money.ParseMoney(p.RentExpense),
		OfficersComp:            money.ParseMoney(p.OfficersComp),
		Depreciation:            money.ParseMoney(p.Depreciation),
		Amortization:            money.ParseMoney(p.Amortization),
		Section179:              money.ParseMoney(p.Section179),
		Interest:                money.ParseMoney(p.Interest),
		OtherIncome:             money.ParseMoney(p.OtherIncome),
		OtherExpenses:           money.ParseMoney(p.OtherExpenses),
		Addbacks:                money.ParseMoney(p.Addbacks),
		Taxes:                   money.ParseMoney(p.Taxes),
		M1BookIncome:            money.ParseMoney(p.M1BookIncome),
		M1FederalTax:            money.ParseMoney(p.M1FederalTax),
		M1NondeductibleExpenses: money.ParseMoney(p.M1NondeductibleExpenses),
		M1TaxExemptIncome:       money.ParseMoney(p.M1TaxExemptIncome),
	}
}

// PersonalPeriod is one reporting period of a guarantor's personal income.
// Personal periods are treated as annual figures.
type PersonalPeriod struct {
	PeriodDate       string `yaml:"periodDate" json:"periodDate"`
	PeriodMonths     string `yaml:"periodMonths" json:"periodMonths"`
	Salary           string `yaml:"salary" json:"salary"`
	Bonuses          string `yaml:"bonuses" json:"bonuses"`
	Investments      string `yaml:"investments" json:"investments"`
	RentalIncome     string `yaml:"rentalIncome" json:"rentalIncome"`
	RetirementIncome string `yaml:"retirementIncome" json:"retirementIncome"`
	OtherIncome      string `yaml:"otherIncome" json:"otherIncome"`
	CostOfLiving     string `yaml:"costOfLiving" json:"costOfLiving"`
	PersonalTaxes    string `yaml:"personalTaxes" json:"personalTaxes"`

	// Schedule C (sole proprietorship).
	SchedCRevenue      string `yaml:"schedCRevenue" json:"schedCRevenue"`
	SchedCCOGS         string `yaml:"schedCCOGS" json:"schedCCOGS"`
	SchedCExpenses     string `yaml:"schedCExpenses" json:"schedCExpenses"`
	SchedCInterest     string `yaml:"schedCInterest" json:"schedCInterest"`
	SchedCDepreciation string `yaml:"schedCDepreciation" json:"schedCDepreciation"`
	SchedCAmortization string `yaml:"schedCAmortization" json:"schedCAmortization"`
	SchedCOther        string `yaml:"schedCOther" json:"schedCOther"`

	// Schedule E rental real estate and K-1 pass-through income.
	SchedERents        string `yaml:"schedERents" json:"schedERents"`
	SchedEExpenses     string `yaml:"schedEExpenses" json:"schedEExpenses"`
	SchedEInterest     string `yaml:"schedEInterest" json:"schedEInterest"`
	SchedEDepreciation string `yaml:"schedEDepreciation" json:"schedEDepreciation"`
	K1OrdinaryIncome   string `yaml:"k1OrdinaryIncome" json:"k1OrdinaryIncome"`
	K1Distributions    string `yaml:"k1Distributions" json:"k1Distributions"`
}

// PersonalFigures is a PersonalPeriod with every field parsed.
type PersonalFigures struct {
	Salary           float64
	Bonuses          float64
	Investments      float64
	RentalIncome     float64
	RetirementIncome float64
	OtherIncome      float64
	CostOfLiving     float64
	PersonalTaxes    float64

	SchedCRevenue      float64
	SchedCCOGS         float64
	SchedCExpenses     float64
	SchedCInterest     float64
	SchedCDepreciation float64
	SchedCAmortization float64
	SchedCOther        float64

	SchedERents        float64
	SchedEExpenses     float64
	SchedEInterest     float64
	SchedEDepreciation float64
	K1OrdinaryIncome   float64
	K1Distributions    float64
}

// Figures parses every field of the period.
func (p PersonalPeriod) Figures() PersonalFigures {
	return PersonalFigures{
		Salary:             money.ParseMoney(p.Salary),
		Bonuses:            money.ParseMoney(p.Bonuses),
		Investments:        money.ParseMoney(p.Investments),
		RentalIncome:       money.ParseMoney(p.RentalIncome),
		RetirementIncome:   money.ParseMoney(p.RetirementIncome),
		OtherIncome:        money.ParseMoney(p.OtherIncome),
		CostOfLiving:       money.ParseMoney(p.CostOfLiving),
		PersonalTaxes:      money.ParseMoney(p.PersonalTaxes),
		SchedCRevenue:      money.ParseMoney(p.SchedCRevenue),
		SchedCCOGS:         money.ParseMoney(p.SchedCCOGS),
		SchedCExpenses:     money.ParseMoney(p.SchedCExpenses),
		SchedCInterest:     money.ParseMoney(p.SchedCInterest),
		SchedCDepreciation: money.ParseMoney(p.SchedCDepreciation),
		SchedCAmortization: money.ParseMoney(p.SchedCAmortization),
		SchedCOther:        money.ParseMoney(p.SchedCOther),
		SchedERents:        money.ParseMoney(p.SchedERents),
		SchedEExpenses:     money.ParseMoney(p.SchedEExpenses),
		SchedEInterest:     money.ParseMoney(p.SchedEInterest),
		SchedEDepreciation: money.ParseMoney(p.SchedEDepreciation),
		K1OrdinaryIncome:   money.ParseMoney(p.K1OrdinaryIncome),
		K1Distributions:    money.ParseMoney(p.K1Distributions),
	}
}

// BalanceSheetPeriod is one balance-sheet date.
type BalanceSheetPeriod struct {
	PeriodDate              string `yaml:"periodDate" json:"periodDate"`
	Cash                    string `yaml:"cash" json:"cash"`
	AccountsReceivable      string `yaml:"accountsReceivable" json:"accountsReceivable"`
	Inventory               string `yaml:"inventory" json:"inventory"`
	OtherCurrentAssets      string `yaml:"otherCurrentAssets" json:"otherCurrentAssets"`
	RealEstate              string `yaml:"realEstate" json:"realEstate"`
	AccumulatedDepreciation string `yaml:"accumulatedDepreciation" json:"accumulatedDepreciation"`
	CurrentLiabilities      string `yaml:"currentLiabilities" json:"currentLiabilities"`
	AccountsPayable         string `yaml:"accountsPayable" json:"accountsPayable"`
	AccruedExpenses         string `yaml:"accruedExpenses" json:"accruedExpenses"`
	ShortTermDebt           string `yaml:"shortTermDebt" json:"shortTermDebt"`
	LongTermDebt            string `yaml:"longTermDebt" json:"longTermDebt"`
}

// BalanceSheetFigures is a BalanceSheetPeriod with every field parsed.
type BalanceSheetFigures struct {
	Cash                    float64
	AccountsReceivable      float64
	Inventory               float64
	OtherCurrentAssets      float64
	RealEstate              float64
	AccumulatedDepreciation float64
	CurrentLiabilities      float64
	AccountsPayable         float64
	AccruedExpenses         float64
	ShortTermDebt           float64
	LongTermDebt            float64
}

// Figures parses every field of the balance sheet. CurrentLiabilities is the
// effective figure: the decomposed payables, accruals and short-term debt when
// any of those are present, otherwise the single current-liabilities field.
func (p BalanceSheetPeriod) Figures() BalanceSheetFigures {
	f := BalanceSheetFigures{
		Cash:                    money.ParseMoney(p.Cash),
		AccountsReceivable:      money.ParseMoney(p.AccountsReceivable),
		Inventory:               money.ParseMoney(p.Inventory),
		OtherCurrentAssets:      money.ParseMoney(p.OtherCurrentAssets),
		RealEstate:              money.ParseMoney(p.RealEstate),
		AccumulatedDepreciation: money.ParseMoney(p.AccumulatedDepreciation),
		AccountsPayable:         money.ParseMoney(p.AccountsPayable),
		AccruedExpenses:         money.ParseMoney(p.AccruedExpenses),
		ShortTermDebt:           money.ParseMoney(p.ShortTermDebt),
		LongTermDebt:            money.ParseMoney(p.LongTermDebt),
	}
	decomposed := f.AccountsPayable + f.AccruedExpenses + f.ShortTermDebt
	if decomposed != 0 {
		f.CurrentLiabilities = decomposed
	} else {
		f.CurrentLiabilities = money.ParseMoney(p.CurrentLiabilities)
	}
	return f
}

// AnnualizationFactor returns 12/months, or 1 when months is not positive.
func AnnualizationFactor(months int) float64 {
	if months <= 0 {
		return 1
	}
	return float64(constants.MonthsPerYear) / float64(months)
}
