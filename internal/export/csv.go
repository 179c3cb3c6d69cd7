// Package export renders the savings history as CSV and reads it back.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"savings/internal/core"
)

// Row is one CSV line. Derived columns are written for readers and ignored
// on import, where they are recomputed.
type Row struct {
	ID                    string `csv:"id"`
	Date                  string `csv:"date"`
	GoldInCoins           string `csv:"gold_in_coins"`
	GoldConversionValue   string `csv:"gold_conversion_value"`
	TotalGold             string `csv:"total_gold"`
	Investments           string `csv:"investments"`
	BankCertificates      string `csv:"bank_certificates"`
	DollarsInUSD          string `csv:"dollars_in_usd"`
	DollarConversionValue string `csv:"dollar_conversion_value"`
	DollarsInEGP          string `csv:"dollars_in_egp"`
	CashSavings           string `csv:"cash_savings"`
	Total                 string `csv:"total"`
	Growth                string `csv:"growth_percent"`
}

// Rows converts history entries, keeping their order.
func Rows(history []core.HistoryEntry) []*Row {
	out := make([]*Row, 0, len(history))
	for _, h := range history {
		growth := ""
		if h.Growth != nil {
			growth = h.Growth.StringFixed(2)
		}
		out = append(out, &Row{
			ID:                    h.ID,
			Date:                  h.Date.String(),
			GoldInCoins:           h.GoldInCoins.String(),
			GoldConversionValue:   h.GoldConversionValue.String(),
			TotalGold:             h.TotalGold.String(),
			Investments:           h.Investments.String(),
			BankCertificates:      h.BankCertificates.String(),
			DollarsInUSD:          h.DollarsInUSD.String(),
			DollarConversionValue: h.DollarConversionValue.String(),
			DollarsInEGP:          h.DollarsInEGP.String(),
			CashSavings:           h.CashSavings.String(),
			Total:                 h.Total.String(),
			Growth:                growth,
		})
	}
	return out
}

// WriteCSV writes the header and one line per record, most recent first.
func WriteCSV(w io.Writer, recs []core.SavingsRecord) error {
	if err := gocsv.Marshal(Rows(core.History(recs)), w); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}

// ReadCSV parses an export back into record inputs. Amounts are coerced the
// same way form input is; a bad date fails the whole file.
func ReadCSV(r io.Reader) ([]core.RecordInput, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	out := make([]core.RecordInput, 0, len(rows))
	for i, row := range rows {
		if row.Date == "" {
			return nil, fmt.Errorf("line %d: %w", i+2, core.ErrInvalidDate)
		}
		in, err := core.RawInput{
			Date:                  row.Date,
			GoldInCoins:           row.GoldInCoins,
			GoldConversionValue:   row.GoldConversionValue,
			Investments:           row.Investments,
			BankCertificates:      row.BankCertificates,
			DollarsInUSD:          row.DollarsInUSD,
			DollarConversionValue: row.DollarConversionValue,
			CashSavings:           row.CashSavings,
		}.ToInput()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		out = append(out, in)
	}
	return out, nil
}
