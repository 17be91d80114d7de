// Package diag defines the error and warning taxonomy for a calculation run.
//
// A DataError is fatal: the run aborts before any partial result is produced.
// Warnings narrow the included position/week set but the run completes and the
// warnings travel with the result so the caller can disclose them.
package diag

import "fmt"

// WarningKind enumerates the non-fatal conditions a run can surface.
type WarningKind int

const (
	// WarnInsufficientBaseline marks a position with fewer usable pre-wave
	// weeks than the configured minimum. The position stays in coverage
	// denominators but is excluded from effect totals.
	WarnInsufficientBaseline WarningKind = iota

	// WarnStockGap marks a single (position, week) excluded by the stock
	// filter. The position remains eligible for its other weeks.
	WarnStockGap

	// WarnMissingCost marks a (position, week) whose profit contribution is
	// undefined because a cost figure is missing. Revenue is unaffected.
	WarnMissingCost

	// WarnControlPriceStep marks a control position whose price series shows
	// a step exceeding tolerance. Control positions are not repriced by
	// construction, so this is a data-quality note and nothing more.
	WarnControlPriceStep
)

// String returns a short stable label for the kind.
func (k WarningKind) String() string {
	switch k {
	case WarnInsufficientBaseline:
		return "insufficient-baseline"
	case WarnStockGap:
		return "stock-gap"
	case WarnMissingCost:
		return "missing-cost"
	case WarnControlPriceStep:
		return "control-price-step"
	default:
		return "unknown"
	}
}

// Warning is one non-fatal finding attached to a run's result.
type Warning struct {
	Kind    WarningKind
	Store   string
	Item    string
	Week    int // -1 when the warning is position-scoped
	Message string
}

// NewWarning builds a position-scoped warning.
func NewWarning(kind WarningKind, store, item, message string) Warning {
	return Warning{Kind: kind, Store: store, Item: item, Week: -1, Message: message}
}

// NewWeekWarning builds a (position, week)-scoped warning.
func NewWeekWarning(kind WarningKind, store, item string, week int, message string) Warning {
	return Warning{Kind: kind, Store: store, Item: item, Week: week, Message: message}
}

// String renders the warning for logs and reports.
func (w Warning) String() string {
	if w.Week >= 0 {
		return fmt.Sprintf("%s: %s/%s week %d: %s", w.Kind, w.Store, w.Item, w.Week, w.Message)
	}
	return fmt.Sprintf("%s: %s/%s: %s", w.Kind, w.Store, w.Item, w.Message)
}

// DataError reports malformed or ambiguous input. It is fatal to the whole
// run: no partial result may be returned alongside one.
type DataError struct {
	Store  string
	Item   string
	Reason string
}

func (e *DataError) Error() string {
	if e.Store == "" && e.Item == "" {
		return fmt.Sprintf("data error: %s", e.Reason)
	}
	return fmt.Sprintf("data error: position %s/%s: %s", e.Store, e.Item, e.Reason)
}

// NewDataError builds a DataError for the given position.
func NewDataError(store, item, reason string) *DataError {
	return &DataError{Store: store, Item: item, Reason: reason}
}
