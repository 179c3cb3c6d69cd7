package core

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// leadingNumber matches the numeric prefix of a user-typed amount, so that
// "12abc" reads as 12 the same way a browser form field would.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// TotalGold converts a coin count into the base currency.
func TotalGold(coins, rate decimal.Decimal) decimal.Decimal {
	return coins.Mul(rate)
}

// DollarsInEGP converts a USD amount into the base currency.
func DollarsInEGP(usd, rate decimal.Decimal) decimal.Decimal {
	return usd.Mul(rate)
}

// Total sums every category of a snapshot.
func Total(totalGold, dollarsInEGP, investments, certificates, cash decimal.Decimal) decimal.Decimal {
	return decimal.Sum(totalGold, dollarsInEGP, investments, certificates, cash)
}

// ParseAmount coerces free-form input into a number. Blank or non-numeric
// input yields zero, as does anything outside the finite float64 range
// ("1e400") or too small to be told from zero ("1e-400"). A decimal comma is
// accepted.
func ParseAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	m := leadingNumber.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || f == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// GrowthPercent returns the percentage change from previous to current.
// ok is false when previous is zero and the growth is undefined.
func GrowthPercent(current, previous decimal.Decimal) (decimal.Decimal, bool) {
	if previous.IsZero() {
		return decimal.Zero, false
	}
	return current.Sub(previous).Div(previous).Mul(hundred), true
}

// RecordGrowth is GrowthPercent over two snapshot totals. A nil previous
// record means there is nothing to compare against.
func RecordGrowth(current SavingsRecord, previous *SavingsRecord) (decimal.Decimal, bool) {
	if previous == nil {
		return decimal.Zero, false
	}
	return GrowthPercent(current.Total, previous.Total)
}
