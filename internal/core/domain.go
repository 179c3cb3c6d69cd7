package core

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of snapshot dates.
const DateLayout = "2006-01-02"

// Fallback conversion rates used when no snapshot exists yet.
var (
	DefaultGoldRate   = decimal.NewFromInt(3500)
	DefaultDollarRate = decimal.NewFromInt(31)
)

type (
	Date struct {
		time.Time
	}

	// Rates are the per-unit conversion values into the base currency.
	Rates struct {
		GoldRate   decimal.Decimal `json:"goldRate"`
		DollarRate decimal.Decimal `json:"dollarRate"`
	}

	// RecordInput carries every snapshot field supplied by the caller.
	// Derived values are never part of it.
	RecordInput struct {
		Date                  Date
		GoldInCoins           decimal.Decimal
		GoldConversionValue   decimal.Decimal
		Investments           decimal.Decimal
		BankCertificates      decimal.Decimal
		DollarsInUSD          decimal.Decimal
		DollarConversionValue decimal.Decimal
		CashSavings           decimal.Decimal
	}

	// SavingsRecord is one dated snapshot. TotalGold, DollarsInEGP and Total
	// are computed once by NewRecord and stored as-is afterwards.
	SavingsRecord struct {
		ID                    string          `json:"id"`
		Date                  Date            `json:"date"`
		GoldInCoins           decimal.Decimal `json:"goldInCoins"`
		GoldConversionValue   decimal.Decimal `json:"goldConversionValue"`
		TotalGold             decimal.Decimal `json:"totalGold"`
		Investments           decimal.Decimal `json:"investments"`
		BankCertificates      decimal.Decimal `json:"bankCertificates"`
		DollarsInUSD          decimal.Decimal `json:"dollarsInUSD"`
		DollarConversionValue decimal.Decimal `json:"dollarConversionValue"`
		DollarsInEGP          decimal.Decimal `json:"dollarsInEGP"`
		CashSavings           decimal.Decimal `json:"cashSavings"`
		Total                 decimal.Decimal `json:"total"`
	}
)

var ErrInvalidDate = errors.New("invalid date")

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewRecord builds a snapshot from its inputs, computing the derived fields.
func NewRecord(id string, in RecordInput) SavingsRecord {
	totalGold := TotalGold(in.GoldInCoins, in.GoldConversionValue)
	dollarsInEGP := DollarsInEGP(in.DollarsInUSD, in.DollarConversionValue)
	return SavingsRecord{
		ID:                    id,
		Date:                  in.Date,
		GoldInCoins:           in.GoldInCoins,
		GoldConversionValue:   in.GoldConversionValue,
		TotalGold:             totalGold,
		Investments:           in.Investments,
		BankCertificates:      in.BankCertificates,
		DollarsInUSD:          in.DollarsInUSD,
		DollarConversionValue: in.DollarConversionValue,
		DollarsInEGP:          dollarsInEGP,
		CashSavings:           in.CashSavings,
		Total:                 Total(totalGold, dollarsInEGP, in.Investments, in.BankCertificates, in.CashSavings),
	}
}

// Input returns the caller-supplied fields of the record.
func (r SavingsRecord) Input() RecordInput {
	return RecordInput{
		Date:                  r.Date,
		GoldInCoins:           r.GoldInCoins,
		GoldConversionValue:   r.GoldConversionValue,
		Investments:           r.Investments,
		BankCertificates:      r.BankCertificates,
		DollarsInUSD:          r.DollarsInUSD,
		DollarConversionValue: r.DollarConversionValue,
		CashSavings:           r.CashSavings,
	}
}

// RatesOf returns the conversion values of a record, substituting the
// defaults for any rate left at zero.
func RatesOf(r SavingsRecord) Rates {
	return RatesWithDefaults(r.GoldConversionValue, r.DollarConversionValue)
}

// RatesWithDefaults builds Rates, replacing a zero rate by its default.
func RatesWithDefaults(gold, dollar decimal.Decimal) Rates {
	rates := Rates{GoldRate: gold, DollarRate: dollar}
	if rates.GoldRate.IsZero() {
		rates.GoldRate = DefaultGoldRate
	}
	if rates.DollarRate.IsZero() {
		rates.DollarRate = DefaultDollarRate
	}
	return rates
}

// DefaultRates returns the fallback rates.
func DefaultRates() Rates {
	return Rates{GoldRate: DefaultGoldRate, DollarRate: DefaultDollarRate}
}

// SortByDateDesc orders records most recent first. Equal dates keep their
// relative order.
func SortByDateDesc(records []SavingsRecord) {
	slices.SortStableFunc(records, func(a, b SavingsRecord) int {
		return b.Date.Compare(a.Date.Time)
	})
}

// Fixtures returns the two snapshots a fresh session starts with.
func Fixtures() []RecordInput {
	return []RecordInput{
		{
			Date:                  NewDate(2024, 1, 15),
			GoldInCoins:           decimal.RequireFromString("2.5"),
			GoldConversionValue:   decimal.NewFromInt(3500),
			Investments:           decimal.NewFromInt(50000),
			BankCertificates:      decimal.NewFromInt(100000),
			DollarsInUSD:          decimal.NewFromInt(1000),
			DollarConversionValue: decimal.NewFromInt(31),
			CashSavings:           decimal.NewFromInt(25000),
		},
		{
			Date:                  NewDate(2024, 2, 15),
			GoldInCoins:           decimal.NewFromInt(3),
			GoldConversionValue:   decimal.NewFromInt(3600),
			Investments:           decimal.NewFromInt(55000),
			BankCertificates:      decimal.NewFromInt(120000),
			DollarsInUSD:          decimal.NewFromInt(1200),
			DollarConversionValue: decimal.RequireFromString("31.5"),
			CashSavings:           decimal.NewFromInt(30000),
		},
	}
}
