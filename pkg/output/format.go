// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pricelab/repricing-effect/internal/engine"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(result *engine.Result) {
	p := message.NewPrinter(language.English)

	fmt.Printf("--- Summary ---\n")
	flat := result.Summary.Flatten()
	for _, key := range result.Summary.Keys() {
		_, _ = p.Printf("%-30s | %.2f\n", key, flat[key])
	}

	fmt.Printf("\n--- Repricing waves ---\n")
	fmt.Printf("Position             | Week | Old price | New price\n")
	fmt.Printf("________             | ____ | _________ | _________\n")
	for _, w := range result.Waves {
		_, _ = p.Printf("%-20s | %4d | %9.2f | %9.2f\n",
			w.Key.String(), w.Wave.Week, w.Wave.OldPrice, w.Wave.NewPrice)
	}

	fmt.Printf("\n--- Weekly effects ---\n")
	fmt.Printf("Position             | Week | Revenue effect | Profit effect\n")
	fmt.Printf("________             | ____ | ______________ | _____________\n")
	for _, rec := range result.Effects {
		profit := "n/a"
		if rec.ProfitValid {
			profit = p.Sprintf("%.2f", rec.Profit)
		}
		_, _ = p.Printf("%-20s | %4d | %14.2f | %13s\n",
			rec.Key.String(), rec.Week, rec.Revenue, profit)
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\n--- Warnings ---\n")
		for _, warn := range result.Warnings {
			fmt.Printf("%s\n", warn.String())
		}
	}
}

// CsvFormat outputs the weekly effect records in comma-separated value format,
// with the summary key/value pairs appended as a trailing block.
func CsvFormat(result *engine.Result) {
	fmt.Printf(`"store","item","week","revenue_effect","profit_effect"`)
	fmt.Printf("\n")
	for _, rec := range result.Effects {
		profit := ""
		if rec.ProfitValid {
			profit = fmt.Sprintf("%.2f", rec.Profit)
		}
		fmt.Printf(`"%s","%s","%d","%.2f","%s"`, rec.Key.Store, rec.Key.Item, rec.Week, rec.Revenue, profit)
		fmt.Printf("\n")
	}

	fmt.Printf("\n")
	fmt.Printf(`"metric","value"`)
	fmt.Printf("\n")
	flat := result.Summary.Flatten()
	for _, key := range result.Summary.Keys() {
		fmt.Printf(`"%s","%.4f"`, key, flat[key])
		fmt.Printf("\n")
	}
}
