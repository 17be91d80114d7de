// Package ingest joins the three logical input tables (test prices, sales,
// costs) into the raw rows the normalizer consumes. Positions listed in the
// test prices table form the test group; everything else is control.
package ingest

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/pricelab/repricing-effect/pkg/series"
	"github.com/pricelab/repricing-effect/pkg/weeks"
)

// PriceRow is one planned repricing: the new price takes effect on Date.
type PriceRow struct {
	Store string
	Item  string
	Date  time.Time
	Price float64
}

// SalesRow is one raw sales observation.
type SalesRow struct {
	Store   string
	Item    string
	Date    time.Time
	Units   float64
	Revenue float64
}

// CostRow is one cost/stock observation. UnitCost applies from Date; Stock
// is the on-hand quantity that day.
type CostRow struct {
	Store    string
	Item     string
	Date     time.Time
	UnitCost float64
	Stock    float64
}

// Tables holds the three input tables before joining.
type Tables struct {
	Prices []PriceRow
	Sales  []SalesRow
	Costs  []CostRow
}

type posKey struct {
	store, item string
}

// Join collapses the tables into weekly raw rows. Week indices are ordinal,
// derived from the minimum date across all tables. The cost at sale is
// resolved backward first (latest cost row on or before the sale), then
// forward, and is marked unknown when the position has no cost rows at all.
// A week is flagged out of stock when its stock observations exist and none
// of them is positive.
func (t Tables) Join(logger *zap.Logger) ([]series.Row, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(t.Sales) == 0 {
		return nil, fmt.Errorf("sales table is empty")
	}

	origin := t.Sales[0].Date
	for _, s := range t.Sales {
		if s.Date.Before(origin) {
			origin = s.Date
		}
	}
	for _, p := range t.Prices {
		if p.Date.Before(origin) {
			origin = p.Date
		}
	}
	for _, c := range t.Costs {
		if c.Date.Before(origin) {
			origin = c.Date
		}
	}

	testPositions := make(map[posKey]bool)
	pricesByPos := make(map[posKey][]PriceRow)
	for _, p := range t.Prices {
		k := posKey{p.Store, p.Item}
		testPositions[k] = true
		pricesByPos[k] = append(pricesByPos[k], p)
	}
	for _, rows := range pricesByPos {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	}

	costsByPos := make(map[posKey][]CostRow)
	for _, c := range t.Costs {
		k := posKey{c.Store, c.Item}
		costsByPos[k] = append(costsByPos[k], c)
	}
	for _, rows := range costsByPos {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	}

	type weekAgg struct {
		units    float64
		revenue  float64
		cost     float64
		hasCost  bool
		lastSale time.Time
	}
	agg := make(map[posKey]map[int]*weekAgg)

	for _, s := range t.Sales {
		k := posKey{s.Store, s.Item}
		week := weeks.Index(s.Date, origin)
		if agg[k] == nil {
			agg[k] = make(map[int]*weekAgg)
		}
		wa := agg[k][week]
		if wa == nil {
			wa = &weekAgg{hasCost: true}
			agg[k][week] = wa
		}
		wa.units += s.Units
		wa.revenue += s.Revenue
		if s.Date.After(wa.lastSale) {
			wa.lastSale = s.Date
		}

		unitCost, ok := costAtSale(costsByPos[k], s.Date)
		if ok {
			wa.cost += unitCost * s.Units
		} else {
			wa.hasCost = false
		}
	}

	// Weekly stock: a week is out of stock when observations exist and none
	// is positive.
	stocked := make(map[posKey]map[int]bool)
	observed := make(map[posKey]map[int]bool)
	for _, c := range t.Costs {
		k := posKey{c.Store, c.Item}
		week := weeks.Index(c.Date, origin)
		if observed[k] == nil {
			observed[k] = make(map[int]bool)
			stocked[k] = make(map[int]bool)
		}
		observed[k][week] = true
		if c.Stock > 0 {
			stocked[k][week] = true
		}
	}

	var keys []posKey
	for k := range agg {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].store != keys[j].store {
			return keys[i].store < keys[j].store
		}
		return keys[i].item < keys[j].item
	})

	var rows []series.Row
	for _, k := range keys {
		group := series.GroupControl
		if testPositions[k] {
			group = series.GroupTest
		}

		var posWeeks []int
		for w := range agg[k] {
			posWeeks = append(posWeeks, w)
		}
		sort.Ints(posWeeks)

		for _, w := range posWeeks {
			wa := agg[k][w]

			price := 0.0
			if wa.units > 0 {
				price = wa.revenue / wa.units
			}
			// For test positions the planned price active by the end of the
			// week defines the price regime.
			if group == series.GroupTest {
				if planned, ok := activePrice(pricesByPos[k], weeks.StartOf(w+1, origin)); ok {
					price = planned
				}
			}

			inStock := true
			if observed[k][w] && !stocked[k][w] {
				inStock = false
			}

			rows = append(rows, series.Row{
				Store:   k.store,
				Item:    k.item,
				Group:   group,
				Week:    w,
				Units:   wa.units,
				Revenue: wa.revenue,
				Cost:    wa.cost,
				HasCost: wa.hasCost,
				Price:   price,
				InStock: inStock,
			})
		}
	}

	logger.Debug("joined input tables",
		zap.Int("positions", len(keys)),
		zap.Int("rows", len(rows)),
		zap.Int("testPositions", len(testPositions)),
	)
	return rows, nil
}

// costAtSale finds the unit cost applicable to a sale date: the latest cost
// row on or before the date, falling back to the earliest one after it.
func costAtSale(costs []CostRow, date time.Time) (float64, bool) {
	if len(costs) == 0 {
		return 0, false
	}
	// costs are sorted ascending by date.
	idx := sort.Search(len(costs), func(i int) bool { return costs[i].Date.After(date) })
	if idx > 0 {
		return costs[idx-1].UnitCost, true
	}
	return costs[idx].UnitCost, true
}

// activePrice returns the planned price in effect strictly before the given
// boundary, i.e. the latest price row whose date is before it.
func activePrice(prices []PriceRow, boundary time.Time) (float64, bool) {
	idx := sort.Search(len(prices), func(i int) bool { return !prices[i].Date.Before(boundary) })
	if idx == 0 {
		return 0, false
	}
	return prices[idx-1].Price, true
}
