package core

import (
	"strings"

	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
)

// egpFormatter renders whole pounds with the ISO code as prefix, e.g. "EGP 214,750".
var egpFormatter = func() *money.Formatter {
	c := money.GetCurrency(money.EGP)
	return money.NewFormatter(0, c.Decimal, c.Thousand, c.Code+" ", "$1")
}()

// FormatCurrency renders an amount rounded to whole pounds.
func FormatCurrency(d decimal.Decimal) string {
	whole := d.Round(0)
	if whole.BigInt().IsInt64() {
		return egpFormatter.Format(whole.IntPart())
	}
	// Beyond int64 go-money cannot help; group the digits by hand.
	out := "EGP " + groupThousands(whole.Abs().String())
	if whole.IsNegative() {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatShort abbreviates large amounts: millions with one decimal, thousands
// with none. Smaller values are printed as they are.
func FormatShort(d decimal.Decimal) string {
	switch {
	case d.GreaterThanOrEqual(million):
		return d.Div(million).StringFixed(1) + "M"
	case d.GreaterThanOrEqual(thousand):
		return d.Div(thousand).StringFixed(0) + "K"
	default:
		return d.String()
	}
}

// FormatPercent renders a growth percentage with one decimal and an explicit
// plus sign for gains.
func FormatPercent(d decimal.Decimal) string {
	s := d.StringFixed(1) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// FormatDateLabel is the short chart axis label, e.g. "Jan 15".
func FormatDateLabel(d Date) string {
	return d.Format("Jan 2")
}

// FormatDateLong is the history list label, e.g. "Jan 15, 2024".
func FormatDateLong(d Date) string {
	return d.Format("Jan 2, 2006")
}
