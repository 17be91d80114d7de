// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/pricelab/repricing-effect/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// RelDiff returns the relative difference of val against ref, |val-ref|/|ref|.
// A zero reference yields +Inf for any differing value and 0 otherwise, so
// callers comparing against a tolerance always see a genuine step.
func RelDiff(val, ref float64) float64 {
	if ref == 0 {
		if val == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(val-ref) / math.Abs(ref)
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
