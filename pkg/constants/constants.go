// Package constants provides shared constants for the lifecare-forecast application.
package constants

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// ReconciliationTolerance is the maximum acceptable discrepancy between
	// the by-item and by-year total cost paths
	ReconciliationTolerance = 1.00

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML plans (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Plan validation constants
const (
	// MaxEvalueeAge is the largest accepted evaluee age
	MaxEvalueeAge = 120.0

	// TypicalInflationCeiling is the inflation rate above which an item is
	// flagged as atypical
	TypicalInflationCeiling = 0.15

	// TypicalDiscountCeiling is the discount rate above which settings are
	// flagged as atypical
	TypicalDiscountCeiling = 0.10

	// OutlierSigma is the number of standard deviations beyond which a year
	// total is flagged as an outlier
	OutlierSigma = 3.0

	// GrowthVolatilityCeiling is the standard deviation of year-over-year
	// growth rates above which a schedule is flagged as volatile
	GrowthVolatilityCeiling = 0.5
)
