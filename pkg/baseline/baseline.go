// Package baseline computes the pre-wave gap between a test position and the
// control aggregate, used to neutralize structural differences unrelated to
// the price change.
package baseline

import (
	"fmt"

	"github.com/pricelab/repricing-effect/pkg/diag"
	"github.com/pricelab/repricing-effect/pkg/series"
)

// Gap is the per-metric mean(test) - mean(control) difference over the weeks
// strictly before the first wave. The profit side has independent
// completeness: it is valid only when enough pre-wave weeks carried cost
// figures on both sides.
type Gap struct {
	Revenue     float64
	Profit      float64
	ProfitValid bool
	Weeks       []int // weeks that fed the revenue gap, ascending
}

// Options control the baseline computation.
type Options struct {
	MinWeeks    int
	StockFilter bool
}

// Compute derives the baseline gap for one test position. A week contributes
// only when the position has a record, the control aggregate has that week,
// and the stock filter (when enabled) passes. The second return collects
// week-level warnings (stock gaps, missing costs); the third reports whether
// enough weeks survived to establish a baseline at all.
//
// Iteration runs in ascending week order, so the result is independent of
// the order records were supplied in.
func Compute(pos *series.PositionSeries, control map[int]series.ControlWeek, firstWaveWeek int, opts Options) (Gap, []diag.Warning, bool) {
	var gap Gap
	var warnings []diag.Warning

	testRevSum, ctrlRevSum := 0.0, 0.0
	testProfitSum, ctrlProfitSum := 0.0, 0.0
	profitWeeks := 0

	for _, week := range pos.Weeks() {
		if week >= firstWaveWeek {
			break
		}
		rec, _ := pos.Record(week)
		cw, ok := control[week]
		if !ok {
			continue
		}
		if opts.StockFilter && !rec.InStock {
			warnings = append(warnings, diag.NewWeekWarning(
				diag.WarnStockGap, pos.Key.Store, pos.Key.Item, week,
				"out of stock; week excluded from baseline"))
			continue
		}

		gap.Weeks = append(gap.Weeks, week)
		testRevSum += rec.Revenue
		ctrlRevSum += cw.Revenue

		testProfit, testOK := rec.Profit()
		ctrlProfit, ctrlOK := cw.Profit()
		if testOK && ctrlOK {
			testProfitSum += testProfit
			ctrlProfitSum += ctrlProfit
			profitWeeks++
		} else {
			warnings = append(warnings, diag.NewWeekWarning(
				diag.WarnMissingCost, pos.Key.Store, pos.Key.Item, week,
				"cost missing; week excluded from profit baseline"))
		}
	}

	n := len(gap.Weeks)
	if n < opts.MinWeeks {
		warnings = append(warnings, diag.NewWarning(
			diag.WarnInsufficientBaseline, pos.Key.Store, pos.Key.Item,
			fmt.Sprintf("%d usable pre-wave weeks, need %d", n, opts.MinWeeks)))
		return Gap{}, warnings, false
	}

	gap.Revenue = testRevSum/float64(n) - ctrlRevSum/float64(n)
	if profitWeeks >= opts.MinWeeks {
		gap.Profit = testProfitSum/float64(profitWeeks) - ctrlProfitSum/float64(profitWeeks)
		gap.ProfitValid = true
	}
	return gap, warnings, true
}
