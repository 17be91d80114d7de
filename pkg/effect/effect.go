// Package effect computes counterfactual-adjusted treatment effects for
// repriced positions.
package effect

import (
	"go.uber.org/zap"

	"github.com/pricelab/repricing-effect/pkg/baseline"
	"github.com/pricelab/repricing-effect/pkg/diag"
	"github.com/pricelab/repricing-effect/pkg/mathutil"
	"github.com/pricelab/repricing-effect/pkg/series"
)

// Record is the adjusted effect for one (position, week) at or after the
// first wave. Immutable once computed. The two metrics have independent
// validity: a missing cost voids profit for the week while revenue proceeds.
type Record struct {
	Key         series.PositionKey
	Week        int
	Revenue     float64
	Profit      float64
	ProfitValid bool
}

// PositionTotal is the per-position sum over post-wave weeks.
type PositionTotal struct {
	Key         series.PositionKey
	Revenue     float64
	Profit      float64
	ProfitValid bool    // at least one week contributed to the profit sum
	Weeks       int     // weeks contributing to the revenue sum
	FactRevenue float64 // observed revenue over contributing weeks, for rate scaling
}

// Estimator derives effect records for positions with a valid baseline and
// at least one wave.
type Estimator struct {
	logger *zap.Logger
}

// NewEstimator creates an estimator with the given logger. A nil logger is
// replaced with a no-op logger.
func NewEstimator(logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{logger: logger}
}

// Estimate walks the position's weeks at or after the first wave. For each
// week with a record and a control aggregate, the expected test value is the
// control value plus the baseline gap, and the effect is observed minus
// expected. Stock-filtered weeks are skipped per (position, week) and remain
// eligible elsewhere. Weeks without a control counterpart have no
// counterfactual and are skipped. Effects are currency and are rounded to two
// decimals per week.
func (e *Estimator) Estimate(pos *series.PositionSeries, control map[int]series.ControlWeek, gap baseline.Gap, firstWaveWeek int, stockFilter bool) ([]Record, PositionTotal, []diag.Warning) {
	var records []Record
	var warnings []diag.Warning
	total := PositionTotal{Key: pos.Key}

	for _, week := range pos.Weeks() {
		if week < firstWaveWeek {
			continue
		}
		rec, _ := pos.Record(week)
		cw, ok := control[week]
		if !ok {
			e.logger.Debug("no control aggregate for week, skipping",
				zap.String("position", pos.Key.String()),
				zap.Int("week", week),
			)
			continue
		}
		if stockFilter && !rec.InStock {
			warnings = append(warnings, diag.NewWeekWarning(
				diag.WarnStockGap, pos.Key.Store, pos.Key.Item, week,
				"out of stock; week excluded from effect"))
			continue
		}

		out := Record{
			Key:     pos.Key,
			Week:    week,
			Revenue: mathutil.Round(rec.Revenue - (cw.Revenue + gap.Revenue)),
		}

		if gap.ProfitValid {
			testProfit, testOK := rec.Profit()
			ctrlProfit, ctrlOK := cw.Profit()
			if testOK && ctrlOK {
				out.Profit = mathutil.Round(testProfit - (ctrlProfit + gap.Profit))
				out.ProfitValid = true
			} else {
				warnings = append(warnings, diag.NewWeekWarning(
					diag.WarnMissingCost, pos.Key.Store, pos.Key.Item, week,
					"cost missing; profit effect undefined for week"))
			}
		}

		e.logger.Debug("effect computed",
			zap.String("position", pos.Key.String()),
			zap.Int("week", week),
			zap.Float64("revenueEffect", out.Revenue),
			zap.Bool("profitValid", out.ProfitValid),
		)

		records = append(records, out)
		total.Revenue += out.Revenue
		total.FactRevenue += rec.Revenue
		total.Weeks++
		if out.ProfitValid {
			total.Profit += out.Profit
			total.ProfitValid = true
		}
	}

	return records, total, warnings
}
