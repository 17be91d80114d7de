// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/pricelab/repricing-effect/pkg/diag"
	"github.com/pricelab/repricing-effect/pkg/mathutil"
	"github.com/pricelab/repricing-effect/pkg/series"
)

// Row builds a fully-populated raw input row with a known cost.
func Row(store, item string, group series.Group, week int, units, revenue, cost, price float64) series.Row {
	return series.Row{
		Store:   store,
		Item:    item,
		Group:   group,
		Week:    week,
		Units:   units,
		Revenue: revenue,
		Cost:    cost,
		HasCost: true,
		Price:   price,
		InStock: true,
	}
}

// RowNoCost builds a raw input row whose cost side is unknown.
func RowNoCost(store, item string, group series.Group, week int, units, revenue, price float64) series.Row {
	row := Row(store, item, group, week, units, revenue, 0, price)
	row.HasCost = false
	return row
}

// FlatControlRows builds a control position with constant revenue and cost
// across weeks [0, weeks).
func FlatControlRows(store, item string, weeks int, revenue, cost float64) []series.Row {
	rows := make([]series.Row, 0, weeks)
	for w := 0; w < weeks; w++ {
		rows = append(rows, Row(store, item, series.GroupControl, w, revenue/10, revenue, cost, 10))
	}
	return rows
}

// ApproxEqual reports whether two floats match at the precision the
// calculation tests assert at.
func ApproxEqual(a, b float64) bool {
	return mathutil.WithinTolerance(a, b, 1e-9)
}

// HasWarning reports whether a warning of the given kind exists in the slice.
func HasWarning(warnings []diag.Warning, kind diag.WarningKind) bool {
	for _, w := range warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// CountWarnings returns the number of warnings of the given kind.
func CountWarnings(warnings []diag.Warning, kind diag.WarningKind) int {
	n := 0
	for _, w := range warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
