// Package constants provides shared constants for the sba-spread application.
package constants

// DateTimeLayout is the month layout used for amortization schedules and
// maturity arithmetic.
const DateTimeLayout = "2006-01"

// MaturityDisplayLayout is the human-readable maturity date format.
const MaturityDisplayLayout = "Jan 2006"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerYear is used to convert turnover ratios into days
	DaysPerYear = 365.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Underwriting defaults
const (
	// DefaultPeriodMonths applies when a period does not state its length
	DefaultPeriodMonths = 12

	// DefaultGuaranteePercent is the standard SBA 7(a) guarantee share
	DefaultGuaranteePercent = 75.0

	// OfficersCompTaxRate is the flat estimate of tax owed on owner compensation
	OfficersCompTaxRate = 0.30

	// AnnualServicingFeeRate is charged yearly on the guaranteed portion
	AnnualServicingFeeRate = 0.0055
)

// Fee Schedule A tiers, applied to the primary request.
const (
	FeeATier1Ceiling = 150000.0
	FeeATier2Ceiling = 700000.0
	FeeATier2Rate    = 0.03
	FeeATier3Rate    = 0.035
)

// Fee Schedule B tiers. Rates are marginal on the primary request; short-term
// loans pay a flat rate on the guaranteed portion instead.
const (
	FeeBShortTermMonths  = 12
	FeeBShortTermRate    = 0.0025
	FeeBSmallLoanCeiling = 150000.0
	FeeBSmallLoanRate    = 0.02
	FeeBMidCeiling       = 500000.0
	FeeBMidRate          = 0.03
	FeeBLargeCeiling     = 1000000.0
	FeeBLargeRate        = 0.035
	FeeBAboveCeilingRate = 0.0375
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable analysis
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default deal file name
	DefaultConfigFile = "deal.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultDatabaseFile is the default SQLite file for saved deals
	DefaultDatabaseFile = "sba-spread.db"

	// EnvPrefix scopes environment overrides read by viper
	EnvPrefix = "SBASPREAD"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for deal files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Persistence defaults
const (
	// DefaultSaveDebounceMillis is how long the saver waits for edits to settle
	DefaultSaveDebounceMillis = 500
)

// Loan sizing defaults
const (
	// DefaultTargetDSCR is the coverage most SBA lenders require
	DefaultTargetDSCR = 1.25

	// MaxSBALoanAmount is the SBA 7(a) program ceiling
	MaxSBALoanAmount = 5000000.0

	// DefaultSizingTolerance is the loan amount resolution of the sizing search (dollars)
	DefaultSizingTolerance = 100.0

	// DefaultSizingIterations caps the bisection steps of the sizing search
	DefaultSizingIterations = 60
)
