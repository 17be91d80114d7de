// Package waves detects repricing waves in a position's weekly price series.
package waves

import (
	"fmt"

	"github.com/pricelab/repricing-effect/pkg/diag"
	"github.com/pricelab/repricing-effect/pkg/mathutil"
	"github.com/pricelab/repricing-effect/pkg/series"
)

// Wave is one detected step change in a test position's price, marking the
// start of a new price regime. Waves for a position are strictly increasing
// in week index.
type Wave struct {
	Week      int
	OldPrice  float64
	NewPrice  float64
	Magnitude float64 // (new - old) / old
}

// Detect walks the position's records once in week order, tracking a running
// reference price initialized to the first observed price. Whenever a week's
// price deviates from the reference by more than the relative tolerance a
// Wave is emitted and the reference moves to the new price, so a later
// reversal back to the old price is its own wave. Weeks without an observed
// price are skipped. A position with a single distinct price yields no waves.
func Detect(pos *series.PositionSeries, tolerance float64) []Wave {
	var result []Wave
	ref := 0.0
	haveRef := false

	for _, week := range pos.Weeks() {
		rec, _ := pos.Record(week)
		if rec.Price <= 0 {
			continue
		}
		if !haveRef {
			ref = rec.Price
			haveRef = true
			continue
		}
		if mathutil.RelDiff(rec.Price, ref) > tolerance {
			result = append(result, Wave{
				Week:      week,
				OldPrice:  ref,
				NewPrice:  rec.Price,
				Magnitude: (rec.Price - ref) / ref,
			})
			ref = rec.Price
		}
	}
	return result
}

// ScanControl checks a control position for price steps that exceed the
// tolerance. Control positions are not repriced by construction, so a match
// is reported as a data-quality warning and never influences the
// computation.
func ScanControl(pos *series.PositionSeries, tolerance float64) []diag.Warning {
	var warnings []diag.Warning
	for _, w := range Detect(pos, tolerance) {
		warnings = append(warnings, diag.NewWeekWarning(
			diag.WarnControlPriceStep, pos.Key.Store, pos.Key.Item, w.Week,
			fmt.Sprintf("control price moved from %.2f to %.2f", w.OldPrice, w.NewPrice)))
	}
	return warnings
}
