package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"savings/internal/core"
)

var printer = message.NewPrinter(language.English)

// amount renders a value with thousands separators and no trailing zeros,
// e.g. 214750 -> "214,750", 31.5 -> "31.5".
func amount(d decimal.Decimal) string {
	places := 0
	if s := d.String(); strings.Contains(s, ".") {
		places = len(s) - strings.IndexByte(s, '.') - 1
	}
	return printer.Sprintf("%.*f", places, d.InexactFloat64())
}

func growthCell(g *decimal.Decimal) string {
	if g == nil {
		return "-"
	}
	return core.FormatPercent(*g)
}

// RenderHistory writes the history as a table, most recent first.
func RenderHistory(w io.Writer, history []core.HistoryEntry) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Date", "Gold", "USD", "Investments", "Certificates", "Cash", "Total", "Growth"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	for _, h := range history {
		table.Append([]string{
			h.ID,
			h.Date.String(),
			amount(h.TotalGold),
			amount(h.DollarsInEGP),
			amount(h.Investments),
			amount(h.BankCertificates),
			amount(h.CashSavings),
			amount(h.Total),
			growthCell(h.Growth),
		})
	}
	table.Render()
}

// RenderSummary writes the latest total, its growth and the category
// breakdown.
func RenderSummary(w io.Writer, s core.Summary) {
	if s.Latest == nil {
		fmt.Fprintln(w, "No savings records yet.")
		return
	}
	fmt.Fprintf(w, "Total savings: %s (as of %s)\n", core.FormatCurrency(s.Total), core.FormatDateLong(s.Latest.Date))
	if s.Growth != nil {
		fmt.Fprintf(w, "Growth since previous: %s\n", core.FormatPercent(*s.Growth))
	}
	if s.GrowthMean != nil && s.GrowthStdDev != nil {
		fmt.Fprintf(w, "Average growth: %s (stddev %s)\n", core.FormatPercent(*s.GrowthMean), s.GrowthStdDev.StringFixed(1))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Amount", "Detail"})
	table.SetAutoFormatHeaders(false)
	for _, c := range s.Categories {
		table.Append([]string{c.Name, core.FormatCurrency(c.Amount), c.Detail})
	}
	table.Render()
	fmt.Fprintf(w, "Records: %d\n", s.Count)
}

// RenderRates writes the conversion rates the entry form would suggest.
func RenderRates(w io.Writer, r core.Rates) {
	fmt.Fprintf(w, "Gold rate:   %s per coin\n", amount(r.GoldRate))
	fmt.Fprintf(w, "Dollar rate: %s per USD\n", amount(r.DollarRate))
}
