// Package storage persists savings snapshots in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"savings/internal/core"
	"savings/internal/records"

	_ "modernc.org/sqlite"
)

const recordColumns = `id, date, gold_in_coins, gold_conversion_value, total_gold,
	investments, bank_certificates, dollars_in_usd, dollar_conversion_value,
	dollars_in_egp, cash_savings, total`

// SQLiteRepository is a records.Store backed by a SQLite file.
type SQLiteRepository struct {
	db    *sql.DB
	newID func() string
}

var _ records.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, newID: records.NewID}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Add implements records.RecordWriter
func (r *SQLiteRepository) Add(ctx context.Context, in core.RecordInput) (core.SavingsRecord, error) {
	rec := core.NewRecord(r.newID(), in)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_records (`+recordColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date.String(),
		rec.GoldInCoins.String(), rec.GoldConversionValue.String(), rec.TotalGold.String(),
		rec.Investments.String(), rec.BankCertificates.String(),
		rec.DollarsInUSD.String(), rec.DollarConversionValue.String(), rec.DollarsInEGP.String(),
		rec.CashSavings.String(), rec.Total.String(),
	)
	if err != nil {
		return core.SavingsRecord{}, fmt.Errorf("insert savings record: %w", err)
	}

	slog.InfoContext(ctx, "Savings record saved to SQLite",
		"id", rec.ID,
		"date", rec.Date.String(),
		"total", rec.Total.String())

	return rec, nil
}

// Delete implements records.RecordDeleter
func (r *SQLiteRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings_records WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete savings record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete savings record: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Savings record deleted from SQLite", "id", id)
	}
	return n > 0, nil
}

// List implements records.RecordLister
func (r *SQLiteRepository) List(ctx context.Context) ([]core.SavingsRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM savings_records ORDER BY date DESC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query savings records: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings records: %w", err)
	}
	return out, nil
}

// LatestRates implements records.RatesReader
func (r *SQLiteRepository) LatestRates(ctx context.Context) (core.Rates, error) {
	var gold, dollar string
	err := r.db.QueryRowContext(ctx,
		`SELECT gold_conversion_value, dollar_conversion_value FROM savings_records
		ORDER BY date DESC, seq ASC LIMIT 1`).Scan(&gold, &dollar)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultRates(), nil
	}
	if err != nil {
		return core.Rates{}, fmt.Errorf("query latest rates: %w", err)
	}
	g, err := decimal.NewFromString(gold)
	if err != nil {
		return core.Rates{}, fmt.Errorf("parse gold rate %q: %w", gold, err)
	}
	d, err := decimal.NewFromString(dollar)
	if err != nil {
		return core.Rates{}, fmt.Errorf("parse dollar rate %q: %w", dollar, err)
	}
	return core.RatesWithDefaults(g, d), nil
}

// Count returns the number of stored snapshots.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM savings_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count savings records: %w", err)
	}
	return n, nil
}

func scanRecord(rows *sql.Rows) (core.SavingsRecord, error) {
	var (
		rec  core.SavingsRecord
		date string
		nums [10]string
	)
	if err := rows.Scan(&rec.ID, &date,
		&nums[0], &nums[1], &nums[2], &nums[3], &nums[4],
		&nums[5], &nums[6], &nums[7], &nums[8], &nums[9]); err != nil {
		return rec, fmt.Errorf("scan savings record: %w", err)
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return rec, fmt.Errorf("record %s: parse date %q: %w", rec.ID, date, err)
	}
	rec.Date = d

	targets := []*decimal.Decimal{
		&rec.GoldInCoins, &rec.GoldConversionValue, &rec.TotalGold,
		&rec.Investments, &rec.BankCertificates,
		&rec.DollarsInUSD, &rec.DollarConversionValue, &rec.DollarsInEGP,
		&rec.CashSavings, &rec.Total,
	}
	for i, dst := range targets {
		v, err := decimal.NewFromString(nums[i])
		if err != nil {
			return rec, fmt.Errorf("record %s: parse amount %q: %w", rec.ID, nums[i], err)
		}
		*dst = v
	}
	return rec, nil
}
