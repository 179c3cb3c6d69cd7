// Package google mirrors the savings history into a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"savings/internal/core"
)

// Header is the first row written to the mirror sheet.
var Header = []any{
	"ID", "Date", "Gold (coins)", "Gold rate", "Total gold",
	"Investments", "Bank certificates", "USD", "Dollar rate", "USD in EGP",
	"Cash", "Total",
}

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// Mirror rewrites one sheet with the full record history.
type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

// New creates a Sheets mirror using Service Account credentials.
func New(ctx context.Context, cfg Config) (*Mirror, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Savings"
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Mirror{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheet: sheet}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case cfg.ServiceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case cfg.ServiceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.ServiceAccountFile)
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Sync clears the mirror sheet and writes the header plus one row per record.
func (m *Mirror) Sync(ctx context.Context, recs []core.SavingsRecord) error {
	if m.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:L", m.sheet)
	_, err := m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	values := Rows(recs)
	dataRange := fmt.Sprintf("%s!A1:L%d", m.sheet, len(values))
	_, err = m.svc.Spreadsheets.Values.Update(m.spreadsheetID, dataRange, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", dataRange, err)
	}

	slog.InfoContext(ctx, "Savings history mirrored to Google Sheets",
		"sheet", m.sheet,
		"records", len(recs))
	return nil
}

// Rows converts records into sheet values, header first.
func Rows(recs []core.SavingsRecord) [][]any {
	out := make([][]any, 0, len(recs)+1)
	out = append(out, Header)
	for _, r := range recs {
		out = append(out, []any{
			r.ID, r.Date.String(),
			r.GoldInCoins.String(), r.GoldConversionValue.String(), r.TotalGold.String(),
			r.Investments.String(), r.BankCertificates.String(),
			r.DollarsInUSD.String(), r.DollarConversionValue.String(), r.DollarsInEGP.String(),
			r.CashSavings.String(), r.Total.String(),
		})
	}
	return out
}
