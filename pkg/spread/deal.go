package spread

// Deal gathers every raw input of one loan spread. Income and balance-sheet
// periods are addressed by position and share the Labels slice; debts, uses of
// funds and affiliates are list-backed rows.
type Deal struct {
	Name                string               `yaml:"name" json:"name"`
	Labels              []string             `yaml:"labels" json:"labels"`
	BusinessPeriods     []BusinessPeriod     `yaml:"businessPeriods" json:"businessPeriods"`
	PersonalPeriods     []PersonalPeriod     `yaml:"personalPeriods" json:"personalPeriods"`
	BalanceSheets       []BalanceSheetPeriod `yaml:"balanceSheets" json:"balanceSheets"`
	Debts               []Debt               `yaml:"debts" json:"debts"`
	PersonalLiabilities PersonalLiabilities  `yaml:"personalLiabilities" json:"personalLiabilities"`
	UsesOfFunds         []UseOfFunds         `yaml:"usesOfFunds" json:"usesOfFunds"`
	LoanTerms           LoanTerms            `yaml:"loanTerms" json:"loanTerms"`
	Affiliates          []AffiliateEntity    `yaml:"affiliates" json:"affiliates"`
	Options             DealOptions          `yaml:"options" json:"options"`
}

// DealOptions toggles the optional DSCR adjustments.
type DealOptions struct {
	IncludeRentAddback bool `yaml:"includeRentAddback" json:"includeRentAddback"`
	IncludeScheduleE   bool `yaml:"includeScheduleE" json:"includeScheduleE"`
	IncludeAffiliates  bool `yaml:"includeAffiliates" json:"includeAffiliates"`
}

// Label returns the label for period i, falling back to the period date.
func (d Deal) Label(i int) string {
	if i >= 0 && i < len(d.Labels) && d.Labels[i] != "" {
		return d.Labels[i]
	}
	if i >= 0 && i < len(d.BusinessPeriods) {
		return d.BusinessPeriods[i].PeriodDate
	}
	return ""
}

// Clone returns a deep copy so callers can hand out snapshots without sharing
// backing arrays.
func (d Deal) Clone() Deal {
	out := d
	out.Labels = append([]string(nil), d.Labels...)
	out.BusinessPeriods = append([]BusinessPeriod(nil), d.BusinessPeriods...)
	out.PersonalPeriods = append([]PersonalPeriod(nil), d.PersonalPeriods...)
	out.BalanceSheets = append([]BalanceSheetPeriod(nil), d.BalanceSheets...)
	out.Debts = append([]Debt(nil), d.Debts...)
	out.UsesOfFunds = append([]UseOfFunds(nil), d.UsesOfFunds...)
	out.Affiliates = make([]AffiliateEntity, len(d.Affiliates))
	for i, a := range d.Affiliates {
		a.Labels = append([]string(nil), a.Labels...)
		a.IncomePeriods = append([]BusinessPeriod(nil), a.IncomePeriods...)
		a.BalanceSheets = append([]BalanceSheetPeriod(nil), a.BalanceSheets...)
		out.Affiliates[i] = a
	}
	if d.Affiliates == nil {
		out.Affiliates = nil
	}
	return out
}
