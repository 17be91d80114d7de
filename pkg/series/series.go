// Package series defines the normalized weekly time series the engine
// operates on and the normalizer that builds them from raw input rows.
package series

import (
	"fmt"
	"sort"

	"github.com/pricelab/repricing-effect/pkg/diag"
)

// Group identifies which side of the experiment a position belongs to.
type Group int

const (
	// GroupUnknown is the zero value; a position left in this state is a
	// data error.
	GroupUnknown Group = iota

	// GroupTest positions received the price change.
	GroupTest

	// GroupControl positions kept their price and provide the counterfactual.
	GroupControl
)

// String returns the canonical label for the group.
func (g Group) String() string {
	switch g {
	case GroupTest:
		return "test"
	case GroupControl:
		return "control"
	default:
		return "unknown"
	}
}

// ParseGroup maps an input label onto a Group.
func ParseGroup(s string) (Group, error) {
	switch s {
	case "test":
		return GroupTest, nil
	case "control":
		return GroupControl, nil
	default:
		return GroupUnknown, fmt.Errorf("unrecognized group %q", s)
	}
}

// Metric identifies one of the two effect metrics.
type Metric int

const (
	// MetricRevenue is the revenue effect metric.
	MetricRevenue Metric = iota

	// MetricProfit is the profit effect metric. Profit has independent
	// completeness: a missing cost voids profit for a week without touching
	// revenue.
	MetricProfit
)

// String returns the canonical label for the metric.
func (m Metric) String() string {
	switch m {
	case MetricRevenue:
		return "revenue"
	case MetricProfit:
		return "profit"
	default:
		return "unknown"
	}
}

// PositionKey identifies one (store, item) pair under analysis.
type PositionKey struct {
	Store string
	Item  string
}

// String renders the key as store/item.
func (k PositionKey) String() string {
	return k.Store + "/" + k.Item
}

// Less provides the stable ordering used for deterministic iteration.
func (k PositionKey) Less(other PositionKey) bool {
	if k.Store != other.Store {
		return k.Store < other.Store
	}
	return k.Item < other.Item
}

// Row is one raw input observation for a (position, week), already joined
// from the three source tables by the ingestion collaborator. Duplicate rows
// for the same key are legal and are merged by Normalize.
type Row struct {
	Store   string
	Item    string
	Group   Group
	Week    int
	Units   float64
	Revenue float64
	Cost    float64 // total cost of goods for the row
	HasCost bool
	Price   float64
	InStock bool
}

// WeeklyRecord is the normalized observation for one (position, week).
// At most one record exists per key; missing weeks are meaningful gaps, never
// synthesized zeros.
type WeeklyRecord struct {
	Week    int
	Units   float64
	Revenue float64
	Cost    float64
	HasCost bool
	Price   float64
	InStock bool
}

// Profit returns revenue minus cost of goods. The second return is false when
// the cost side is unknown and profit is therefore undefined.
func (r WeeklyRecord) Profit() (float64, bool) {
	if !r.HasCost {
		return 0, false
	}
	return r.Revenue - r.Cost, true
}

// PositionSeries holds the ordered weekly records of a single position.
type PositionSeries struct {
	Key     PositionKey
	Group   Group
	Records map[int]WeeklyRecord
}

// Weeks returns the position's observed week indices in ascending order.
func (p *PositionSeries) Weeks() []int {
	weeks := make([]int, 0, len(p.Records))
	for w := range p.Records {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// Record returns the record for the given week if one exists.
func (p *PositionSeries) Record(week int) (WeeklyRecord, bool) {
	rec, ok := p.Records[week]
	return rec, ok
}

// ControlWeek is the per-week aggregate over all control positions. The
// baseline gap absorbs the scale difference between a single test position
// and this aggregate.
type ControlWeek struct {
	Week    int
	Units   float64
	Revenue float64
	Cost    float64
	HasCost bool // true only when every contributing record carried a cost
}

// Profit returns the control aggregate's profit for the week, with validity.
func (c ControlWeek) Profit() (float64, bool) {
	if !c.HasCost {
		return 0, false
	}
	return c.Revenue - c.Cost, true
}

// Dataset is the full normalized input for one calculation run.
type Dataset struct {
	Positions map[PositionKey]*PositionSeries
	Window    Window
}

// Keys returns all position keys in the stable sorted order used for
// aggregation.
func (d *Dataset) Keys() []PositionKey {
	keys := make([]PositionKey, 0, len(d.Positions))
	for k := range d.Positions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// TestKeys returns the sorted keys of test-group positions.
func (d *Dataset) TestKeys() []PositionKey {
	var keys []PositionKey
	for _, k := range d.Keys() {
		if d.Positions[k].Group == GroupTest {
			keys = append(keys, k)
		}
	}
	return keys
}

// ControlSeries aggregates all control positions into one per-week series.
// A week's cost side is complete only when every control record that week
// carried a cost figure.
func (d *Dataset) ControlSeries() map[int]ControlWeek {
	agg := make(map[int]ControlWeek)
	for _, k := range d.Keys() {
		pos := d.Positions[k]
		if pos.Group != GroupControl {
			continue
		}
		for week, rec := range pos.Records {
			cw, ok := agg[week]
			if !ok {
				cw = ControlWeek{Week: week, HasCost: true}
			}
			cw.Units += rec.Units
			cw.Revenue += rec.Revenue
			if rec.HasCost {
				cw.Cost += rec.Cost
			} else {
				cw.HasCost = false
			}
			agg[week] = cw
		}
	}
	return agg
}

// Window bounds the analysis to an inclusive range of week indices.
type Window struct {
	StartWeek int
	EndWeek   int
}

// Contains reports whether the week index falls inside the window.
func (w Window) Contains(week int) bool {
	return week >= w.StartWeek && week <= w.EndWeek
}

// Normalize converts raw rows into one WeeklyRecord per (position, week)
// inside the window. Duplicate rows for the same key are summed (units,
// revenue, cost); price takes the latest row by input order; the in-stock
// indicator holds only if every merged row was in stock. Rows outside the
// window are dropped. Missing weeks are not synthesized.
//
// Normalize fails with *diag.DataError when a position maps to conflicting
// groups, carries no recognized group at all, or ends up with zero records
// inside the window.
func Normalize(rows []Row, window Window) (*Dataset, error) {
	ds := &Dataset{
		Positions: make(map[PositionKey]*PositionSeries),
		Window:    window,
	}

	// Track every position seen in the raw rows, including those whose rows
	// all fall outside the window; such positions are a data error rather
	// than a silent drop.
	seen := make(map[PositionKey]bool)

	for _, row := range rows {
		key := PositionKey{Store: row.Store, Item: row.Item}
		seen[key] = true

		if row.Group == GroupUnknown {
			return nil, diag.NewDataError(key.Store, key.Item, "missing group assignment")
		}

		pos, ok := ds.Positions[key]
		if !ok {
			pos = &PositionSeries{
				Key:     key,
				Group:   row.Group,
				Records: make(map[int]WeeklyRecord),
			}
			ds.Positions[key] = pos
		} else if pos.Group != row.Group {
			return nil, diag.NewDataError(key.Store, key.Item,
				fmt.Sprintf("conflicting group assignments %s and %s", pos.Group, row.Group))
		}

		if !window.Contains(row.Week) {
			continue
		}

		rec, ok := pos.Records[row.Week]
		if !ok {
			rec = WeeklyRecord{Week: row.Week, HasCost: true, InStock: true}
		}
		rec.Units += row.Units
		rec.Revenue += row.Revenue
		if row.HasCost {
			rec.Cost += row.Cost
		} else {
			rec.HasCost = false
		}
		rec.Price = row.Price // latest row by input order wins
		rec.InStock = rec.InStock && row.InStock
		pos.Records[row.Week] = rec
	}

	seenKeys := make([]PositionKey, 0, len(seen))
	for key := range seen {
		seenKeys = append(seenKeys, key)
	}
	sort.Slice(seenKeys, func(i, j int) bool { return seenKeys[i].Less(seenKeys[j]) })
	for _, key := range seenKeys {
		if len(ds.Positions[key].Records) == 0 {
			return nil, diag.NewDataError(key.Store, key.Item, "no records inside analysis window")
		}
	}

	return ds, nil
}
