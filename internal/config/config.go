// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"math"

	"github.com/pricelab/repricing-effect/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for repricing-effect.
type Configuration struct {
	Analysis AnalysisConfig
	Input    InputConfig
	Logging  LoggingConfig `yaml:"logging,omitempty"`
	Output   OutputConfig  `yaml:"output,omitempty"`
}

// AnalysisConfig holds the engine parameters.
type AnalysisConfig struct {
	StartWeek          int
	EndWeek            int
	WaveTolerance      float64
	MinBaselineWeeks   int
	StockFilterEnabled bool
}

// InputConfig describes where the three input tables come from.
type InputConfig struct {
	Source          string // csv, mysql
	TestPricesFile  string
	SalesFile       string
	CostsFile       string
	DSN             string
	TestPricesTable string
	SalesTable      string
	CostsTable      string
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// ApplyDefaults fills unset analysis and input parameters with their
// documented defaults. An EndWeek of zero means "through the last observed
// week" and becomes an open upper bound; zero doubles as the unset value, so
// the single-week window [0, 0] is not expressible.
func (conf *Configuration) ApplyDefaults() {
	if conf.Analysis.WaveTolerance == 0 {
		conf.Analysis.WaveTolerance = constants.DefaultWaveTolerance
	}
	if conf.Analysis.MinBaselineWeeks == 0 {
		conf.Analysis.MinBaselineWeeks = constants.DefaultMinBaselineWeeks
	}
	if conf.Analysis.EndWeek == 0 {
		conf.Analysis.EndWeek = math.MaxInt
	}
	if conf.Input.Source == "" {
		conf.Input.Source = constants.InputSourceCSV
	}
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if conf.Analysis.WaveTolerance < 0 {
		warnings = append(warnings, fmt.Sprintf(
			"waveTolerance %.4f is negative; every price fluctuation will register as a wave",
			conf.Analysis.WaveTolerance))
	}
	if conf.Analysis.WaveTolerance >= 1 {
		warnings = append(warnings, fmt.Sprintf(
			"waveTolerance %.2f is at or above 100%%; genuine repricings may go undetected",
			conf.Analysis.WaveTolerance))
	}
	if conf.Analysis.MinBaselineWeeks < 1 {
		warnings = append(warnings, fmt.Sprintf(
			"minBaselineWeeks %d allows baselines without any pre-wave data",
			conf.Analysis.MinBaselineWeeks))
	}
	if conf.Analysis.StartWeek > conf.Analysis.EndWeek {
		warnings = append(warnings, fmt.Sprintf(
			"analysis window [%d, %d] is empty", conf.Analysis.StartWeek, conf.Analysis.EndWeek))
	}
	if conf.Analysis.StartWeek < 0 {
		warnings = append(warnings, fmt.Sprintf(
			"startWeek %d is negative; week indices are derived from the data's minimum date",
			conf.Analysis.StartWeek))
	}

	switch conf.Input.Source {
	case constants.InputSourceCSV:
		if conf.Input.TestPricesFile == "" || conf.Input.SalesFile == "" || conf.Input.CostsFile == "" {
			warnings = append(warnings, "csv input selected but not all three table files are set")
		}
	case constants.InputSourceMySQL:
		if conf.Input.DSN == "" {
			warnings = append(warnings, "mysql input selected but no DSN is set")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("unrecognized input source %q", conf.Input.Source))
	}

	return warnings
}
