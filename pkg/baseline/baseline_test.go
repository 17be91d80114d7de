package baseline

import (
	"math"
	"testing"

	"github.com/pricelab/repricing-effect/pkg/diag"
	"github.com/pricelab/repricing-effect/pkg/series"
)

func testPosition(records ...series.WeeklyRecord) *series.PositionSeries {
	pos := &series.PositionSeries{
		Key:     series.PositionKey{Store: "s1", Item: "a"},
		Group:   series.GroupTest,
		Records: make(map[int]series.WeeklyRecord),
	}
	for _, rec := range records {
		pos.Records[rec.Week] = rec
	}
	return pos
}

func flatControl(weeks int, revenue, cost float64) map[int]series.ControlWeek {
	control := make(map[int]series.ControlWeek)
	for w := 0; w < weeks; w++ {
		control[w] = series.ControlWeek{Week: w, Revenue: revenue, Cost: cost, HasCost: true}
	}
	return control
}

func TestComputeGap(t *testing.T) {
	pos := testPosition(
		series.WeeklyRecord{Week: 0, Revenue: 120, Cost: 60, HasCost: true, InStock: true},
		series.WeeklyRecord{Week: 1, Revenue: 140, Cost: 70, HasCost: true, InStock: true},
		series.WeeklyRecord{Week: 2, Revenue: 100, Cost: 50, HasCost: true, InStock: true},
		// Post-wave weeks must not contribute.
		series.WeeklyRecord{Week: 3, Revenue: 900, Cost: 500, HasCost: true, InStock: true},
	)
	control := flatControl(6, 100, 40)

	gap, _, ok := Compute(pos, control, 3, Options{MinWeeks: 2})
	if !ok {
		t.Fatalf("Compute() reported insufficient baseline")
	}
	if math.Abs(gap.Revenue-20) > 1e-9 {
		t.Errorf("revenue gap = %v, expected 20 (mean test 120 - mean control 100)", gap.Revenue)
	}
	if !gap.ProfitValid {
		t.Fatalf("profit gap invalid with full cost data")
	}
	if math.Abs(gap.Profit-0) > 1e-9 {
		t.Errorf("profit gap = %v, expected 0 (mean test 60 - mean control 60)", gap.Profit)
	}
	if len(gap.Weeks) != 3 {
		t.Errorf("gap used %d weeks, expected 3", len(gap.Weeks))
	}
}

func TestComputeOrderIndependence(t *testing.T) {
	recs := []series.WeeklyRecord{
		{Week: 0, Revenue: 100, Cost: 50, HasCost: true, InStock: true},
		{Week: 1, Revenue: 130, Cost: 65, HasCost: true, InStock: true},
		{Week: 2, Revenue: 70, Cost: 35, HasCost: true, InStock: true},
	}
	control := flatControl(4, 90, 45)

	forward := testPosition(recs[0], recs[1], recs[2])
	reversed := testPosition(recs[2], recs[1], recs[0])

	gapA, _, okA := Compute(forward, control, 3, Options{MinWeeks: 2})
	gapB, _, okB := Compute(reversed, control, 3, Options{MinWeeks: 2})
	if !okA || !okB {
		t.Fatalf("Compute() unexpectedly reported insufficient baseline")
	}
	if gapA.Revenue != gapB.Revenue || gapA.Profit != gapB.Profit {
		t.Errorf("gap depends on record supply order: %+v vs %+v", gapA, gapB)
	}
}

func TestComputeInsufficientBaseline(t *testing.T) {
	pos := testPosition(
		series.WeeklyRecord{Week: 2, Revenue: 100, Cost: 50, HasCost: true, InStock: true},
	)
	control := flatControl(6, 100, 40)

	_, warnings, ok := Compute(pos, control, 3, Options{MinWeeks: 2})
	if ok {
		t.Fatalf("Compute() accepted a single pre-wave week with MinWeeks=2")
	}
	found := false
	for _, w := range warnings {
		if w.Kind == diag.WarnInsufficientBaseline {
			found = true
		}
	}
	if !found {
		t.Errorf("no WarnInsufficientBaseline among %v", warnings)
	}
}

func TestComputeStockFilterExcludesWeek(t *testing.T) {
	pos := testPosition(
		series.WeeklyRecord{Week: 0, Revenue: 100, Cost: 50, HasCost: true, InStock: true},
		series.WeeklyRecord{Week: 1, Revenue: 500, Cost: 250, HasCost: true, InStock: false},
		series.WeeklyRecord{Week: 2, Revenue: 100, Cost: 50, HasCost: true, InStock: true},
	)
	control := flatControl(6, 100, 40)

	gap, warnings, ok := Compute(pos, control, 3, Options{MinWeeks: 2, StockFilter: true})
	if !ok {
		t.Fatalf("Compute() reported insufficient baseline")
	}
	if math.Abs(gap.Revenue-0) > 1e-9 {
		t.Errorf("revenue gap = %v, expected 0 with the stocked-out week excluded", gap.Revenue)
	}
	foundStock := false
	for _, w := range warnings {
		if w.Kind == diag.WarnStockGap && w.Week == 1 {
			foundStock = true
		}
	}
	if !foundStock {
		t.Errorf("no WarnStockGap for week 1 among %v", warnings)
	}

	// With the filter disabled the same week counts.
	gap, _, ok = Compute(pos, control, 3, Options{MinWeeks: 2, StockFilter: false})
	if !ok {
		t.Fatalf("Compute() reported insufficient baseline without filter")
	}
	want := (100.0+500.0+100.0)/3.0 - 100.0
	if math.Abs(gap.Revenue-want) > 1e-9 {
		t.Errorf("revenue gap = %v, expected %v without stock filter", gap.Revenue, want)
	}
}

func TestComputeProfitIndependentCompleteness(t *testing.T) {
	pos := testPosition(
		series.WeeklyRecord{Week: 0, Revenue: 100, HasCost: false, InStock: true},
		series.WeeklyRecord{Week: 1, Revenue: 100, HasCost: false, InStock: true},
		series.WeeklyRecord{Week: 2, Revenue: 100, Cost: 50, HasCost: true, InStock: true},
	)
	control := flatControl(6, 100, 40)

	gap, warnings, ok := Compute(pos, control, 3, Options{MinWeeks: 2})
	if !ok {
		t.Fatalf("Compute() reported insufficient baseline; revenue side is complete")
	}
	if gap.ProfitValid {
		t.Errorf("profit gap valid with only one costed week and MinWeeks=2")
	}
	costWarnings := 0
	for _, w := range warnings {
		if w.Kind == diag.WarnMissingCost {
			costWarnings++
		}
	}
	if costWarnings != 2 {
		t.Errorf("%d WarnMissingCost warnings, expected 2", costWarnings)
	}
}
