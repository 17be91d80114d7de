// Package engine wires the pipeline together: normalize the raw rows, detect
// repricing waves, establish baselines, estimate effects, and summarize.
// A run is a pure function of its input rows and configuration; nothing is
// retained between invocations.
package engine

import (
	"math"

	"go.uber.org/zap"

	"github.com/pricelab/repricing-effect/internal/config"
	"github.com/pricelab/repricing-effect/pkg/baseline"
	"github.com/pricelab/repricing-effect/pkg/diag"
	"github.com/pricelab/repricing-effect/pkg/effect"
	"github.com/pricelab/repricing-effect/pkg/series"
	"github.com/pricelab/repricing-effect/pkg/summary"
	"github.com/pricelab/repricing-effect/pkg/waves"
)

// PositionWave is one detected wave tagged with its position, for the
// output contract's flat ordered wave list.
type PositionWave struct {
	Key  series.PositionKey
	Wave waves.Wave
}

// Result is everything a run produces. It is owned by the caller after
// return; the engine holds no reference to it afterward.
type Result struct {
	Summary  summary.Result
	Effects  []effect.Record // ordered by position, then week
	Waves    []PositionWave  // ordered by position, then week
	Warnings []diag.Warning
}

// Run executes one calculation over the supplied raw rows. Positions are
// processed in sorted key order and totals accumulate in that fixed order,
// so rerunning on identical input yields a bit-identical result. A
// *diag.DataError aborts the run with no partial result.
func Run(logger *zap.Logger, rows []series.Row, conf config.Configuration) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	window := series.Window{
		StartWeek: conf.Analysis.StartWeek,
		EndWeek:   conf.Analysis.EndWeek,
	}
	ds, err := series.Normalize(rows, window)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	control := ds.ControlSeries()
	estimator := effect.NewEstimator(logger)

	positionWaves := make(map[series.PositionKey][]waves.Wave)
	postStart := math.MaxInt
	zeroWave := 0

	for _, key := range ds.Keys() {
		pos := ds.Positions[key]
		switch pos.Group {
		case series.GroupTest:
			detected := waves.Detect(pos, conf.Analysis.WaveTolerance)
			if len(detected) == 0 {
				zeroWave++
				logger.Debug("position never repriced; excluded from attribution",
					zap.String("position", key.String()),
				)
				continue
			}
			positionWaves[key] = detected
			for _, w := range detected {
				result.Waves = append(result.Waves, PositionWave{Key: key, Wave: w})
			}
			if detected[0].Week < postStart {
				postStart = detected[0].Week
			}
		case series.GroupControl:
			result.Warnings = append(result.Warnings, waves.ScanControl(pos, conf.Analysis.WaveTolerance)...)
		}
	}

	opts := baseline.Options{
		MinWeeks:    conf.Analysis.MinBaselineWeeks,
		StockFilter: conf.Analysis.StockFilterEnabled,
	}

	var included []effect.PositionTotal
	var excluded []series.PositionKey

	for _, key := range ds.Keys() {
		posWaves, ok := positionWaves[key]
		if !ok {
			continue
		}
		pos := ds.Positions[key]
		firstWave := posWaves[0].Week

		gap, gapWarnings, ok := baseline.Compute(pos, control, firstWave, opts)
		result.Warnings = append(result.Warnings, gapWarnings...)
		if !ok {
			excluded = append(excluded, key)
			logger.Info("position excluded: insufficient baseline",
				zap.String("position", key.String()),
				zap.Int("firstWaveWeek", firstWave),
			)
			continue
		}

		records, total, estWarnings := estimator.Estimate(pos, control, gap, firstWave, conf.Analysis.StockFilterEnabled)
		result.Warnings = append(result.Warnings, estWarnings...)
		if total.Weeks == 0 {
			excluded = append(excluded, key)
			logger.Info("position excluded: no measurable post-wave weeks",
				zap.String("position", key.String()),
			)
			continue
		}

		result.Effects = append(result.Effects, records...)
		included = append(included, total)
	}

	result.Summary = summary.Summarize(summary.Input{
		Dataset:   ds,
		Included:  included,
		Excluded:  excluded,
		ZeroWave:  zeroWave,
		PostStart: postStart,
	}, summary.RatePolicy{})

	logger.Info("calculation complete",
		zap.Int("positions", len(ds.Positions)),
		zap.Int("included", len(included)),
		zap.Int("excluded", len(excluded)),
		zap.Int("zeroWave", zeroWave),
		zap.Float64("revenueEffect", result.Summary.TotalRevenueEffect),
		zap.Float64("profitEffect", result.Summary.TotalProfitEffect),
	)

	return result, nil
}
