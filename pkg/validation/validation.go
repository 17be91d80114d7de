// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/pricelab/repricing-effect/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateInputSource checks if the input source is one of the supported sources.
func ValidateInputSource(source string) error {
	if source != constants.InputSourceCSV && source != constants.InputSourceMySQL {
		return fmt.Errorf("expected input source of %s or %s, got %s",
			constants.InputSourceCSV, constants.InputSourceMySQL, source)
	}
	return nil
}
