// Package postgres persists savings snapshots in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"savings/internal/core"
	"savings/internal/records"
)

const schema = `
CREATE TABLE IF NOT EXISTS savings_records (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    date DATE NOT NULL,
    gold_in_coins NUMERIC NOT NULL DEFAULT 0,
    gold_conversion_value NUMERIC NOT NULL DEFAULT 0,
    total_gold NUMERIC NOT NULL DEFAULT 0,
    investments NUMERIC NOT NULL DEFAULT 0,
    bank_certificates NUMERIC NOT NULL DEFAULT 0,
    dollars_in_usd NUMERIC NOT NULL DEFAULT 0,
    dollar_conversion_value NUMERIC NOT NULL DEFAULT 0,
    dollars_in_egp NUMERIC NOT NULL DEFAULT 0,
    cash_savings NUMERIC NOT NULL DEFAULT 0,
    total NUMERIC NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_savings_records_date ON savings_records (date DESC, seq);
`

// numeric and date columns are read back as text so no float is involved
const selectColumns = `id, date::text, gold_in_coins::text, gold_conversion_value::text,
	total_gold::text, investments::text, bank_certificates::text, dollars_in_usd::text,
	dollar_conversion_value::text, dollars_in_egp::text, cash_savings::text, total::text`

// Store is a records.Store backed by PostgreSQL.
type Store struct {
	pool  *pgxpool.Pool
	newID func() string
}

var _ records.Store = (*Store)(nil)

// Open connects to databaseURL and makes sure the schema exists.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &Store{pool: pool, newID: records.NewID}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Add(ctx context.Context, in core.RecordInput) (core.SavingsRecord, error) {
	rec := core.NewRecord(s.newID(), in)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO savings_records (id, date, gold_in_coins, gold_conversion_value, total_gold,
			investments, bank_certificates, dollars_in_usd, dollar_conversion_value,
			dollars_in_egp, cash_savings, total)
		VALUES ($1, $2::date, $3::numeric, $4::numeric, $5::numeric, $6::numeric, $7::numeric,
			$8::numeric, $9::numeric, $10::numeric, $11::numeric, $12::numeric)`,
		rec.ID, rec.Date.String(),
		rec.GoldInCoins.String(), rec.GoldConversionValue.String(), rec.TotalGold.String(),
		rec.Investments.String(), rec.BankCertificates.String(),
		rec.DollarsInUSD.String(), rec.DollarConversionValue.String(), rec.DollarsInEGP.String(),
		rec.CashSavings.String(), rec.Total.String(),
	)
	if err != nil {
		return core.SavingsRecord{}, fmt.Errorf("insert savings record: %w", err)
	}
	slog.InfoContext(ctx, "Savings record saved to Postgres", "id", rec.ID, "date", rec.Date.String())
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM savings_records WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete savings record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) List(ctx context.Context) ([]core.SavingsRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM savings_records ORDER BY date DESC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query savings records: %w", err)
	}
	defer rows.Close()

	var out []core.SavingsRecord
	for rows.Next() {
		var (
			id   string
			cols [11]string
		)
		if err := rows.Scan(&id, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4],
			&cols[5], &cols[6], &cols[7], &cols[8], &cols[9], &cols[10]); err != nil {
			return nil, fmt.Errorf("scan savings record: %w", err)
		}
		rec, err := decodeRecord(id, cols)
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

func (s *Store) LatestRates(ctx context.Context) (core.Rates, error) {
	var gold, dollar string
	err := s.pool.QueryRow(ctx, `
		SELECT gold_conversion_value::text, dollar_conversion_value::text
		FROM savings_records ORDER BY date DESC, seq ASC LIMIT 1`).Scan(&gold, &dollar)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.DefaultRates(), nil
	}
	if err != nil {
		return core.Rates{}, fmt.Errorf("query latest rates: %w", err)
	}
	g, err := decimal.NewFromString(gold)
	if err != nil {
		return core.Rates{}, fmt.Errorf("parse gold rate: %w", err)
	}
	d, err := decimal.NewFromString(dollar)
	if err != nil {
		return core.Rates{}, fmt.Errorf("parse dollar rate: %w", err)
	}
	return core.RatesWithDefaults(g, d), nil
}

// decodeRecord maps the text columns after id, in selectColumns order.
func decodeRecord(id string, cols [11]string) (core.SavingsRecord, error) {
	rec := core.SavingsRecord{ID: id}
	date, err := core.ParseDate(cols[0])
	if err != nil {
		return rec, fmt.Errorf("record %s: parse date %q: %w", id, cols[0], err)
	}
	rec.Date = date
	targets := []*decimal.Decimal{
		&rec.GoldInCoins, &rec.GoldConversionValue, &rec.TotalGold,
		&rec.Investments, &rec.BankCertificates,
		&rec.DollarsInUSD, &rec.DollarConversionValue, &rec.DollarsInEGP,
		&rec.CashSavings, &rec.Total,
	}
	for i, dst := range targets {
		v, err := decimal.NewFromString(cols[i+1])
		if err != nil {
			return rec, fmt.Errorf("record %s: parse amount %q: %w", id, cols[i+1], err)
		}
		*dst = v
	}
	return rec, nil
}
