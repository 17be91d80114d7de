package summary

import (
	"math"
	"testing"

	"github.com/pricelab/repricing-effect/pkg/effect"
	"github.com/pricelab/repricing-effect/pkg/series"
)

func key(item string) series.PositionKey {
	return series.PositionKey{Store: "s1", Item: item}
}

func datasetWithRevenue(perWeek map[string]map[int]float64, groups map[string]series.Group) *series.Dataset {
	ds := &series.Dataset{Positions: make(map[series.PositionKey]*series.PositionSeries)}
	for item, weeks := range perWeek {
		pos := &series.PositionSeries{
			Key:     key(item),
			Group:   groups[item],
			Records: make(map[int]series.WeeklyRecord),
		}
		for w, rev := range weeks {
			pos.Records[w] = series.WeeklyRecord{Week: w, Revenue: rev, HasCost: true, InStock: true}
		}
		ds.Positions[key(item)] = pos
	}
	return ds
}

func TestRatePolicyOrdering(t *testing.T) {
	tests := []struct {
		name            string
		included        []effect.PositionTotal
		excludedRevenue float64
	}{
		{
			name: "Positive effects",
			included: []effect.PositionTotal{
				{Key: key("a"), Revenue: 90, Profit: 45, ProfitValid: true, FactRevenue: 390},
				{Key: key("b"), Revenue: 10, Profit: 5, ProfitValid: true, FactRevenue: 200},
			},
			excludedRevenue: 150,
		},
		{
			name: "Negative effects still ordered",
			included: []effect.PositionTotal{
				{Key: key("a"), Revenue: -90, Profit: -45, ProfitValid: true, FactRevenue: 390},
				{Key: key("b"), Revenue: -10, Profit: -5, ProfitValid: true, FactRevenue: 200},
			},
			excludedRevenue: 150,
		},
		{
			name: "Mixed signs",
			included: []effect.PositionTotal{
				{Key: key("a"), Revenue: 50, Profit: 20, ProfitValid: true, FactRevenue: 400},
				{Key: key("b"), Revenue: -80, Profit: -30, ProfitValid: true, FactRevenue: 100},
			},
			excludedRevenue: 300,
		},
		{
			name:            "No included positions",
			included:        nil,
			excludedRevenue: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, metric := range []series.Metric{series.MetricRevenue, series.MetricProfit} {
				got := RatePolicy{}.Scenarios(tt.included, tt.excludedRevenue, metric)
				if got.Conservative > got.Base {
					t.Errorf("%s: conservative %v > base %v", metric, got.Conservative, got.Base)
				}
				if got.Base > got.Optimistic {
					t.Errorf("%s: base %v > optimistic %v", metric, got.Base, got.Optimistic)
				}
			}
		})
	}
}

func TestRatePolicyValues(t *testing.T) {
	included := []effect.PositionTotal{
		{Key: key("a"), Revenue: 90, ProfitValid: true, Profit: 45, FactRevenue: 300},
		{Key: key("b"), Revenue: 30, ProfitValid: true, Profit: 10, FactRevenue: 300},
	}

	got := RatePolicy{}.Scenarios(included, 150, series.MetricRevenue)
	if got.Conservative != 120 {
		t.Errorf("conservative = %v, expected grand total 120", got.Conservative)
	}
	// Aggregate rate 120/600 applied to 150 of excluded revenue.
	if math.Abs(got.Base-(120+30)) > 1e-9 {
		t.Errorf("base = %v, expected 150", got.Base)
	}
	// Max rate 90/300 applied to 150.
	if math.Abs(got.Optimistic-(120+45)) > 1e-9 {
		t.Errorf("optimistic = %v, expected 165", got.Optimistic)
	}
}

func TestSummarizeCoverage(t *testing.T) {
	ds := datasetWithRevenue(map[string]map[int]float64{
		"t1": {0: 100, 1: 100, 2: 100, 3: 130}, // included test position
		"t2": {0: 50, 3: 60},                   // excluded test position
		"c1": {0: 150, 1: 150, 2: 150, 3: 150}, // control
	}, map[string]series.Group{
		"t1": series.GroupTest,
		"t2": series.GroupTest,
		"c1": series.GroupControl,
	})

	in := Input{
		Dataset: ds,
		Included: []effect.PositionTotal{
			{Key: key("t1"), Revenue: 30, ProfitValid: true, Profit: 15, FactRevenue: 130, Weeks: 1},
		},
		Excluded:  []series.PositionKey{key("t2")},
		PostStart: 3,
	}
	res := Summarize(in, RatePolicy{})

	// Pre window (weeks 0-2): included 300 of 300+50+450 = 800.
	if math.Abs(res.Coverage.PreWave-300.0/800.0) > 1e-9 {
		t.Errorf("pre-wave coverage = %v, expected %v", res.Coverage.PreWave, 300.0/800.0)
	}
	// Post window (week 3): included 130 of 130+60+150 = 340.
	if math.Abs(res.Coverage.PostWave-130.0/340.0) > 1e-9 {
		t.Errorf("post-wave coverage = %v, expected %v", res.Coverage.PostWave, 130.0/340.0)
	}
	if res.IncludedPositions != 1 || res.ExcludedPositions != 1 {
		t.Errorf("included/excluded = %d/%d, expected 1/1", res.IncludedPositions, res.ExcludedPositions)
	}
	if res.TotalRevenueEffect != 30 {
		t.Errorf("total revenue effect = %v, expected 30", res.TotalRevenueEffect)
	}
}

func TestSummarizeExcludedRevenueScaling(t *testing.T) {
	ds := datasetWithRevenue(map[string]map[int]float64{
		"t1": {3: 100},
		"t2": {0: 999, 3: 50}, // only post-window revenue counts toward extrapolation
	}, map[string]series.Group{
		"t1": series.GroupTest,
		"t2": series.GroupTest,
	})

	in := Input{
		Dataset: ds,
		Included: []effect.PositionTotal{
			{Key: key("t1"), Revenue: 20, FactRevenue: 100, Weeks: 1},
		},
		Excluded:  []series.PositionKey{key("t2")},
		PostStart: 3,
	}
	res := Summarize(in, RatePolicy{})

	// Base: rate 20/100 applied to excluded post-window revenue 50.
	if math.Abs(res.RevenueScenarios.Base-(20+10)) > 1e-9 {
		t.Errorf("base scenario = %v, expected 30", res.RevenueScenarios.Base)
	}
}

func TestSummarizeGrowthDeclineSplit(t *testing.T) {
	ds := datasetWithRevenue(map[string]map[int]float64{
		"t1": {3: 100},
		"t2": {3: 100},
		"t3": {3: 100},
	}, map[string]series.Group{
		"t1": series.GroupTest,
		"t2": series.GroupTest,
		"t3": series.GroupTest,
	})

	in := Input{
		Dataset: ds,
		Included: []effect.PositionTotal{
			{Key: key("t1"), Revenue: 40, Profit: 15, ProfitValid: true, FactRevenue: 100, Weeks: 1},
			{Key: key("t2"), Revenue: -25, Profit: -10, ProfitValid: true, FactRevenue: 100, Weeks: 1},
			// Sub-cent effect counts as decline, not growth.
			{Key: key("t3"), Revenue: 0.004, FactRevenue: 100, Weeks: 1},
		},
		PostStart: 3,
	}
	res := Summarize(in, RatePolicy{})

	if res.Growth.Positions != 1 {
		t.Errorf("growth positions = %d, expected 1", res.Growth.Positions)
	}
	if math.Abs(res.Growth.Revenue-40) > 1e-9 || math.Abs(res.Growth.Profit-15) > 1e-9 {
		t.Errorf("growth sums = %v revenue / %v profit, expected 40 / 15", res.Growth.Revenue, res.Growth.Profit)
	}
	if res.Decline.Positions != 2 {
		t.Errorf("decline positions = %d, expected 2", res.Decline.Positions)
	}
	if math.Abs(res.Decline.Revenue-(-25+0.004)) > 1e-9 {
		t.Errorf("decline revenue = %v, expected -24.996", res.Decline.Revenue)
	}
	if math.Abs(res.Decline.Profit-(-10)) > 1e-9 {
		t.Errorf("decline profit = %v, expected -10", res.Decline.Profit)
	}

	flat := res.Flatten()
	if flat["growth.positions"] != 1 || flat["decline.positions"] != 2 {
		t.Errorf("flatten growth/decline counts = %v/%v, expected 1/2",
			flat["growth.positions"], flat["decline.positions"])
	}
}

func TestSummarizeNoWaves(t *testing.T) {
	ds := datasetWithRevenue(map[string]map[int]float64{
		"t1": {0: 100},
		"c1": {0: 100},
	}, map[string]series.Group{
		"t1": series.GroupTest,
		"c1": series.GroupControl,
	})

	in := Input{Dataset: ds, ZeroWave: 1, PostStart: math.MaxInt}
	res := Summarize(in, RatePolicy{})

	if res.TotalRevenueEffect != 0 || res.TotalProfitEffect != 0 {
		t.Errorf("effect totals = %v/%v, expected 0/0", res.TotalRevenueEffect, res.TotalProfitEffect)
	}
	if res.Coverage.PostWave != 0 {
		t.Errorf("post-wave coverage = %v, expected 0 with no waves", res.Coverage.PostWave)
	}
	if res.ZeroWavePositions != 1 {
		t.Errorf("zero-wave positions = %d, expected 1", res.ZeroWavePositions)
	}
}

func TestFlattenStable(t *testing.T) {
	res := Result{TotalRevenueEffect: 90}
	flat := res.Flatten()
	if flat["effect.revenue.total"] != 90 {
		t.Errorf("flatten missing effect.revenue.total")
	}
	keys := res.Keys()
	if len(keys) != len(flat) {
		t.Errorf("Keys() returned %d entries, expected %d", len(keys), len(flat))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("Keys() not sorted at %d: %s >= %s", i, keys[i-1], keys[i])
		}
	}
}
