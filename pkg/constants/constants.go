// Package constants provides shared constants for the repricing-effect application.
package constants

// DateLayout is the format expected for dates in input tables.
const DateLayout = "2006-01-02"

// Analysis defaults
const (
	// DefaultWaveTolerance is the relative price deviation above which a step
	// change counts as a repricing wave (1%).
	DefaultWaveTolerance = 0.01

	// DefaultMinBaselineWeeks is the minimum number of usable pre-wave weeks
	// required to establish a baseline gap.
	DefaultMinBaselineWeeks = 2

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// DaysPerWeek is used when folding daily stock observations into weekly
	// in-stock indicators.
	DaysPerWeek = 7
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Input source constants
const (
	// InputSourceCSV reads the three input tables from CSV files
	InputSourceCSV = "csv"

	// InputSourceMySQL reads the three input tables from a MySQL database
	InputSourceMySQL = "mysql"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
)
