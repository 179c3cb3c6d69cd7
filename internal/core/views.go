package core

import (
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// Category keys used in breakdowns and chart series.
const (
	CategoryGold         = "gold"
	CategoryDollars      = "dollars"
	CategoryInvestments  = "investments"
	CategoryCertificates = "certificates"
	CategoryCash         = "cash"
)

type (
	// CategoryAmount is one slice of a snapshot's total.
	CategoryAmount struct {
		Key    string          `json:"key"`
		Name   string          `json:"name"`
		Amount decimal.Decimal `json:"amount"`
		Detail string          `json:"detail,omitempty"`
	}

	// Summary is the dashboard view over the whole collection.
	Summary struct {
		Count      int              `json:"count"`
		Latest     *SavingsRecord   `json:"latest,omitempty"`
		Previous   *SavingsRecord   `json:"previous,omitempty"`
		Total      decimal.Decimal  `json:"total"`
		Growth     *decimal.Decimal `json:"growth,omitempty"`
		Categories []CategoryAmount `json:"categories"`
		// Mean and standard deviation of the period-over-period growth series.
		GrowthMean   *decimal.Decimal `json:"growthMean,omitempty"`
		GrowthStdDev *decimal.Decimal `json:"growthStdDev,omitempty"`
	}

	HistoryEntry struct {
		SavingsRecord
		Growth *decimal.Decimal `json:"growth,omitempty"`
	}

	TrendPoint struct {
		Date         Date            `json:"date"`
		Label        string          `json:"label"`
		Total        decimal.Decimal `json:"total"`
		Gold         decimal.Decimal `json:"gold"`
		Dollars      decimal.Decimal `json:"dollars"`
		Investments  decimal.Decimal `json:"investments"`
		Certificates decimal.Decimal `json:"certificates"`
		Cash         decimal.Decimal `json:"cash"`
	}

	// RawInput is a snapshot exactly as typed into the entry form.
	RawInput struct {
		Date                  string `schema:"date" json:"date"`
		GoldInCoins           string `schema:"goldInCoins" json:"goldInCoins"`
		GoldConversionValue   string `schema:"goldConversionValue" json:"goldConversionValue"`
		Investments           string `schema:"investments" json:"investments"`
		BankCertificates      string `schema:"bankCertificates" json:"bankCertificates"`
		DollarsInUSD          string `schema:"dollarsInUSD" json:"dollarsInUSD"`
		DollarConversionValue string `schema:"dollarConversionValue" json:"dollarConversionValue"`
		CashSavings           string `schema:"cashSavings" json:"cashSavings"`
	}

	// Preview holds the derived values shown while the form is being filled.
	Preview struct {
		TotalGold    decimal.Decimal `json:"totalGold"`
		DollarsInEGP decimal.Decimal `json:"dollarsInEGP"`
		Total        decimal.Decimal `json:"total"`
	}
)

// ToInput coerces the form fields. An empty date becomes today; an
// unparseable one is ErrInvalidDate.
func (r RawInput) ToInput() (RecordInput, error) {
	date := Today()
	if r.Date != "" {
		d, err := ParseDate(r.Date)
		if err != nil {
			return RecordInput{}, err
		}
		date = d
	}
	return RecordInput{
		Date:                  date,
		GoldInCoins:           ParseAmount(r.GoldInCoins),
		GoldConversionValue:   ParseAmount(r.GoldConversionValue),
		Investments:           ParseAmount(r.Investments),
		BankCertificates:      ParseAmount(r.BankCertificates),
		DollarsInUSD:          ParseAmount(r.DollarsInUSD),
		DollarConversionValue: ParseAmount(r.DollarConversionValue),
		CashSavings:           ParseAmount(r.CashSavings),
	}, nil
}

// PreviewOf computes the live totals for a partially filled form.
func PreviewOf(r RawInput) Preview {
	gold := TotalGold(ParseAmount(r.GoldInCoins), ParseAmount(r.GoldConversionValue))
	dollars := DollarsInEGP(ParseAmount(r.DollarsInUSD), ParseAmount(r.DollarConversionValue))
	return Preview{
		TotalGold:    gold,
		DollarsInEGP: dollars,
		Total: Total(gold, dollars,
			ParseAmount(r.Investments), ParseAmount(r.BankCertificates), ParseAmount(r.CashSavings)),
	}
}

// Breakdown splits a snapshot into its categories.
func Breakdown(r SavingsRecord) []CategoryAmount {
	return []CategoryAmount{
		{Key: CategoryGold, Name: "Gold", Amount: r.TotalGold, Detail: r.GoldInCoins.String() + " coins"},
		{Key: CategoryDollars, Name: "USD", Amount: r.DollarsInEGP, Detail: "$" + r.DollarsInUSD.String()},
		{Key: CategoryInvestments, Name: "Investments", Amount: r.Investments, Detail: "Stocks & Bonds"},
		{Key: CategoryCertificates, Name: "Certificates", Amount: r.BankCertificates, Detail: "Bank CDs"},
		{Key: CategoryCash, Name: "Cash", Amount: r.CashSavings},
	}
}

// History pairs every record with its growth over the next older one.
// records must be ordered most recent first.
func History(records []SavingsRecord) []HistoryEntry {
	out := make([]HistoryEntry, len(records))
	for i, r := range records {
		out[i] = HistoryEntry{SavingsRecord: r}
		if i+1 < len(records) {
			if g, ok := RecordGrowth(r, &records[i+1]); ok {
				out[i].Growth = &g
			}
		}
	}
	return out
}

// Trend returns the chart series oldest first.
func Trend(records []SavingsRecord) []TrendPoint {
	out := make([]TrendPoint, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		out = append(out, TrendPoint{
			Date:         r.Date,
			Label:        FormatDateLabel(r.Date),
			Total:        r.Total,
			Gold:         r.TotalGold,
			Dollars:      r.DollarsInEGP,
			Investments:  r.Investments,
			Certificates: r.BankCertificates,
			Cash:         r.CashSavings,
		})
	}
	return out
}

// Summarize builds the dashboard view. records must be ordered most recent first.
func Summarize(records []SavingsRecord) Summary {
	s := Summary{Count: len(records), Total: decimal.Zero, Categories: []CategoryAmount{}}
	if len(records) == 0 {
		return s
	}
	latest := records[0]
	s.Latest = &latest
	s.Total = latest.Total
	s.Categories = Breakdown(latest)
	if len(records) > 1 {
		prev := records[1]
		s.Previous = &prev
		if g, ok := RecordGrowth(latest, &prev); ok {
			s.Growth = &g
		}
	}

	var series stats.Float64Data
	for _, h := range History(records) {
		if h.Growth != nil {
			series = append(series, h.Growth.InexactFloat64())
		}
	}
	if len(series) > 0 {
		if mean, err := stats.Mean(series); err == nil {
			m := decimal.NewFromFloat(mean)
			s.GrowthMean = &m
		}
		if sd, err := stats.StandardDeviation(series); err == nil {
			d := decimal.NewFromFloat(sd)
			s.GrowthStdDev = &d
		}
	}
	return s
}
