// Package summary derives coverage ratios and the three bounding scenarios
// from the estimator's output.
package summary

import (
	"fmt"
	"math"
	"sort"

	"github.com/pricelab/repricing-effect/pkg/effect"
	"github.com/pricelab/repricing-effect/pkg/mathutil"
	"github.com/pricelab/repricing-effect/pkg/series"
)

// ScenarioTotals holds one grand-total effect under each of the three
// extrapolation assumptions for excluded positions. The ordering
// Conservative <= Base <= Optimistic is a hard contract.
type ScenarioTotals struct {
	Conservative float64
	Base         float64
	Optimistic   float64
}

// Coverage is the share of total revenue represented by positions whose
// effect could be measured, split by window since the position set may
// differ before and after the first wave.
type Coverage struct {
	PreWave  float64
	PostWave float64
}

// TrendStats aggregates one side of the growth/decline split: the count of
// included positions on that side plus their summed effects.
type TrendStats struct {
	Positions int
	Revenue   float64
	Profit    float64
}

// Result is the aggregate output of a calculation run. Growth collects the
// included positions with a positive total revenue effect; Decline collects
// the rest, zero included.
type Result struct {
	TotalRevenueEffect float64
	TotalProfitEffect  float64
	IncludedPositions  int
	ExcludedPositions  int
	ZeroWavePositions  int
	Coverage           Coverage
	Growth             TrendStats
	Decline            TrendStats
	RevenueScenarios   ScenarioTotals
	ProfitScenarios    ScenarioTotals
}

// Flatten exports the summary as a flat key/value map for downstream
// chart/table rendering and document export.
func (r Result) Flatten() map[string]float64 {
	return map[string]float64{
		"effect.revenue.total":          r.TotalRevenueEffect,
		"effect.profit.total":           r.TotalProfitEffect,
		"positions.included":            float64(r.IncludedPositions),
		"positions.excluded":            float64(r.ExcludedPositions),
		"positions.zeroWave":            float64(r.ZeroWavePositions),
		"coverage.preWave":              r.Coverage.PreWave,
		"coverage.postWave":             r.Coverage.PostWave,
		"growth.positions":              float64(r.Growth.Positions),
		"growth.revenue":                r.Growth.Revenue,
		"growth.profit":                 r.Growth.Profit,
		"decline.positions":             float64(r.Decline.Positions),
		"decline.revenue":               r.Decline.Revenue,
		"decline.profit":                r.Decline.Profit,
		"scenario.revenue.conservative": r.RevenueScenarios.Conservative,
		"scenario.revenue.base":         r.RevenueScenarios.Base,
		"scenario.revenue.optimistic":   r.RevenueScenarios.Optimistic,
		"scenario.profit.conservative":  r.ProfitScenarios.Conservative,
		"scenario.profit.base":          r.ProfitScenarios.Base,
		"scenario.profit.optimistic":    r.ProfitScenarios.Optimistic,
	}
}

// Keys returns the flattened keys in a stable order.
func (r Result) Keys() []string {
	flat := r.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Policy derives the three scenario totals for one metric. The exact
// extrapolation formula is replaceable; only the conservative/base/optimistic
// ordering is fixed.
type Policy interface {
	Scenarios(included []effect.PositionTotal, excludedRevenue float64, metric series.Metric) ScenarioTotals
}

// RatePolicy is the default extrapolation: effects are expressed as
// effect-per-revenue rates over the included set. Conservative assigns
// excluded positions zero effect; Base applies the included set's aggregate
// rate to the excluded revenue; Optimistic applies the maximum per-position
// rate. Increments are clamped so the scenario ordering holds even when the
// measured effect is negative.
type RatePolicy struct{}

// Scenarios implements Policy.
func (RatePolicy) Scenarios(included []effect.PositionTotal, excludedRevenue float64, metric series.Metric) ScenarioTotals {
	grand := 0.0
	includedRevenue := 0.0
	maxRate := math.Inf(-1)
	haveRate := false

	for _, t := range included {
		val, ok := metricValue(t, metric)
		if !ok {
			continue
		}
		grand += val
		includedRevenue += t.FactRevenue
		if t.FactRevenue > 0 {
			rate := val / t.FactRevenue
			if rate > maxRate {
				maxRate = rate
			}
			haveRate = true
		}
	}

	baseExtra := 0.0
	if includedRevenue > 0 {
		baseExtra = mathutil.Max(grand/includedRevenue*excludedRevenue, 0)
	}

	optExtra := baseExtra
	if haveRate {
		optExtra = mathutil.Max(optExtra, maxRate*excludedRevenue)
	}

	return ScenarioTotals{
		Conservative: grand,
		Base:         grand + baseExtra,
		Optimistic:   grand + optExtra,
	}
}

func metricValue(t effect.PositionTotal, metric series.Metric) (float64, bool) {
	switch metric {
	case series.MetricRevenue:
		return t.Revenue, true
	case series.MetricProfit:
		return t.Profit, t.ProfitValid
	default:
		panic(fmt.Sprintf("unknown metric %d", metric))
	}
}

// Input carries everything Summarize needs from the engine.
type Input struct {
	Dataset   *series.Dataset
	Included  []effect.PositionTotal
	Excluded  []series.PositionKey // test positions with waves but no measurable effect
	ZeroWave  int                  // test positions never repriced
	PostStart int                  // earliest first-wave week; math.MaxInt when no waves exist
}

// Summarize computes coverage ratios, the growth/decline split, and scenario
// totals. Revenue for the coverage denominators spans every position in the
// dataset; the numerators span only positions included in the effect total.
func Summarize(in Input, policy Policy) Result {
	res := Result{
		IncludedPositions: len(in.Included),
		ExcludedPositions: len(in.Excluded),
		ZeroWavePositions: in.ZeroWave,
	}

	includedSet := make(map[series.PositionKey]bool, len(in.Included))
	for _, t := range in.Included {
		res.TotalRevenueEffect += t.Revenue
		if t.ProfitValid {
			res.TotalProfitEffect += t.Profit
		}
		includedSet[t.Key] = true

		side := &res.Decline
		if t.Revenue > 0 && !mathutil.IsZero(t.Revenue) {
			side = &res.Growth
		}
		side.Positions++
		side.Revenue += t.Revenue
		if t.ProfitValid {
			side.Profit += t.Profit
		}
	}

	var preIncluded, preAll, postIncluded, postAll float64
	for _, key := range in.Dataset.Keys() {
		pos := in.Dataset.Positions[key]
		for week, rec := range pos.Records {
			if week < in.PostStart {
				preAll += rec.Revenue
				if includedSet[key] {
					preIncluded += rec.Revenue
				}
			} else {
				postAll += rec.Revenue
				if includedSet[key] {
					postIncluded += rec.Revenue
				}
			}
		}
	}
	res.Coverage.PreWave = ratio(preIncluded, preAll)
	res.Coverage.PostWave = ratio(postIncluded, postAll)

	excludedRevenue := 0.0
	for _, key := range in.Excluded {
		pos, ok := in.Dataset.Positions[key]
		if !ok {
			continue
		}
		for week, rec := range pos.Records {
			if week >= in.PostStart {
				excludedRevenue += rec.Revenue
			}
		}
	}

	res.RevenueScenarios = policy.Scenarios(in.Included, excludedRevenue, series.MetricRevenue)
	res.ProfitScenarios = policy.Scenarios(in.Included, excludedRevenue, series.MetricProfit)
	return res
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return mathutil.Min(num/den, 1)
}
