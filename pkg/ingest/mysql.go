package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open accepts a DSN in mariadb:// or mysql:// URL form, or a raw MySQL
// driver DSN, and returns an open connection pool.
func Open(dsn string) (*sql.DB, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("incomplete dsn (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// TableNames identifies the three tables to load.
type TableNames struct {
	TestPrices string
	Sales      string
	Costs      string
}

// LoadMySQL reads the three input tables from a database. Expected schemas
// mirror the CSV columns: (store, item, date, price), (store, item, date,
// units, revenue) and (store, item, date, unit_cost, stock).
func LoadMySQL(ctx context.Context, db *sql.DB, names TableNames) (Tables, error) {
	for _, name := range []string{names.TestPrices, names.Sales, names.Costs} {
		if !tableNamePattern.MatchString(name) {
			return Tables{}, fmt.Errorf("invalid table name %q", name)
		}
	}

	var tables Tables

	q := fmt.Sprintf(`SELECT store, item, date, price FROM %s`, names.TestPrices)
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return Tables{}, fmt.Errorf("query test prices: %w", err)
	}
	for rows.Next() {
		var r PriceRow
		if err := rows.Scan(&r.Store, &r.Item, &r.Date, &r.Price); err != nil {
			_ = rows.Close()
			return Tables{}, fmt.Errorf("scan test prices: %w", err)
		}
		tables.Prices = append(tables.Prices, r)
	}
	if err := closeRows(rows); err != nil {
		return Tables{}, fmt.Errorf("read test prices: %w", err)
	}

	q = fmt.Sprintf(`SELECT store, item, date, units, revenue FROM %s`, names.Sales)
	rows, err = db.QueryContext(ctx, q)
	if err != nil {
		return Tables{}, fmt.Errorf("query sales: %w", err)
	}
	for rows.Next() {
		var r SalesRow
		if err := rows.Scan(&r.Store, &r.Item, &r.Date, &r.Units, &r.Revenue); err != nil {
			_ = rows.Close()
			return Tables{}, fmt.Errorf("scan sales: %w", err)
		}
		tables.Sales = append(tables.Sales, r)
	}
	if err := closeRows(rows); err != nil {
		return Tables{}, fmt.Errorf("read sales: %w", err)
	}

	q = fmt.Sprintf(`SELECT store, item, date, unit_cost, stock FROM %s`, names.Costs)
	rows, err = db.QueryContext(ctx, q)
	if err != nil {
		return Tables{}, fmt.Errorf("query costs: %w", err)
	}
	for rows.Next() {
		var r CostRow
		var stock sql.NullFloat64
		if err := rows.Scan(&r.Store, &r.Item, &r.Date, &r.UnitCost, &stock); err != nil {
			_ = rows.Close()
			return Tables{}, fmt.Errorf("scan costs: %w", err)
		}
		if stock.Valid {
			r.Stock = stock.Float64
		}
		tables.Costs = append(tables.Costs, r)
	}
	if err := closeRows(rows); err != nil {
		return Tables{}, fmt.Errorf("read costs: %w", err)
	}

	return tables, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}
