package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pricelab/repricing-effect/pkg/constants"
)

// LoadCSV reads the three input tables from CSV files. Each file carries a
// header row; columns are matched by name, case-insensitively.
//
// Expected columns:
//
//	test prices: store, item, date, price
//	sales:       store, item, date, units, revenue
//	costs:       store, item, date, unit_cost, stock
func LoadCSV(testPricesPath, salesPath, costsPath string) (Tables, error) {
	var tables Tables

	err := readCSV(testPricesPath, []string{"store", "item", "date", "price"}, func(fields map[string]string) error {
		date, err := parseDate(fields["date"])
		if err != nil {
			return err
		}
		price, err := parseFloat(fields["price"])
		if err != nil {
			return err
		}
		tables.Prices = append(tables.Prices, PriceRow{
			Store: fields["store"],
			Item:  fields["item"],
			Date:  date,
			Price: price,
		})
		return nil
	})
	if err != nil {
		return Tables{}, fmt.Errorf("test prices table: %w", err)
	}

	err = readCSV(salesPath, []string{"store", "item", "date", "units", "revenue"}, func(fields map[string]string) error {
		date, err := parseDate(fields["date"])
		if err != nil {
			return err
		}
		units, err := parseFloat(fields["units"])
		if err != nil {
			return err
		}
		revenue, err := parseFloat(fields["revenue"])
		if err != nil {
			return err
		}
		tables.Sales = append(tables.Sales, SalesRow{
			Store:   fields["store"],
			Item:    fields["item"],
			Date:    date,
			Units:   units,
			Revenue: revenue,
		})
		return nil
	})
	if err != nil {
		return Tables{}, fmt.Errorf("sales table: %w", err)
	}

	err = readCSV(costsPath, []string{"store", "item", "date", "unit_cost", "stock"}, func(fields map[string]string) error {
		date, err := parseDate(fields["date"])
		if err != nil {
			return err
		}
		unitCost, err := parseFloat(fields["unit_cost"])
		if err != nil {
			return err
		}
		stock, err := parseFloat(fields["stock"])
		if err != nil {
			return err
		}
		tables.Costs = append(tables.Costs, CostRow{
			Store:    fields["store"],
			Item:     fields["item"],
			Date:     date,
			UnitCost: unitCost,
			Stock:    stock,
		})
		return nil
	})
	if err != nil {
		return Tables{}, fmt.Errorf("costs table: %w", err)
	}

	return tables, nil
}

func readCSV(path string, required []string, handle func(map[string]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return fmt.Errorf("missing column %q", name)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		fields := make(map[string]string, len(required))
		for _, name := range required {
			fields[name] = strings.TrimSpace(record[index[name]])
		}
		if err := handle(fields); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return v, nil
}
