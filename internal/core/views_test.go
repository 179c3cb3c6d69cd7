package core

import "testing"

func fixtureRecords() []SavingsRecord {
	fx := Fixtures()
	// most recent first
	return []SavingsRecord{NewRecord("2", fx[1]), NewRecord("1", fx[0])}
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixtureRecords())
	if s.Count != 2 || s.Latest == nil || s.Latest.ID != "2" || s.Previous == nil || s.Previous.ID != "1" {
		t.Fatalf("unexpected summary %+v", s)
	}
	if !s.Total.Equal(dec("253600")) {
		t.Fatalf("total = %s", s.Total)
	}
	if s.Growth == nil || FormatPercent(*s.Growth) != "+18.1%" {
		t.Fatalf("growth = %v", s.Growth)
	}
	if len(s.Categories) != 5 || s.Categories[0].Key != CategoryGold || !s.Categories[0].Amount.Equal(dec("10800")) {
		t.Fatalf("categories = %+v", s.Categories)
	}
	if s.Categories[0].Detail != "3 coins" {
		t.Fatalf("gold detail = %q", s.Categories[0].Detail)
	}
	if s.GrowthMean == nil || s.GrowthMean.StringFixed(2) != "18.09" {
		t.Fatalf("mean = %v", s.GrowthMean)
	}
	if s.GrowthStdDev == nil || !s.GrowthStdDev.IsZero() {
		t.Fatalf("stddev = %v", s.GrowthStdDev)
	}
}

func TestSummarizeEmptyAndSingle(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || s.Latest != nil || s.Growth != nil || !s.Total.IsZero() || len(s.Categories) != 0 {
		t.Fatalf("unexpected empty summary %+v", s)
	}

	s = Summarize(fixtureRecords()[:1])
	if s.Latest == nil || s.Previous != nil || s.Growth != nil || s.GrowthMean != nil {
		t.Fatalf("unexpected single summary %+v", s)
	}
}

func TestSummarizeZeroPreviousOmitsGrowth(t *testing.T) {
	recs := []SavingsRecord{
		NewRecord("b", Fixtures()[1]),
		NewRecord("a", RecordInput{Date: NewDate(2024, 1, 1)}),
	}
	s := Summarize(recs)
	if s.Growth != nil {
		t.Fatalf("growth over a zero total must be omitted, got %s", s.Growth)
	}
	if s.GrowthMean != nil {
		t.Fatalf("no growth series expected")
	}
}

func TestHistory(t *testing.T) {
	h := History(fixtureRecords())
	if len(h) != 2 {
		t.Fatalf("len = %d", len(h))
	}
	if h[0].Growth == nil || h[0].Growth.StringFixed(1) != "18.1" {
		t.Fatalf("first growth = %v", h[0].Growth)
	}
	if h[1].Growth != nil {
		t.Fatalf("oldest record has no growth, got %s", h[1].Growth)
	}
}

func TestTrendIsOldestFirst(t *testing.T) {
	tr := Trend(fixtureRecords())
	if len(tr) != 2 || tr[0].Label != "Jan 15" || tr[1].Label != "Feb 15" {
		t.Fatalf("unexpected trend %+v", tr)
	}
	if !tr[1].Gold.Equal(dec("10800")) || !tr[1].Total.Equal(dec("253600")) {
		t.Fatalf("unexpected point %+v", tr[1])
	}
}

func TestRawInput(t *testing.T) {
	raw := RawInput{
		Date:                  "2024-03-01",
		GoldInCoins:           "2,5",
		GoldConversionValue:   "3500",
		Investments:           "oops",
		DollarsInUSD:          "100",
		DollarConversionValue: "50",
	}
	in, err := raw.ToInput()
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	r := NewRecord("x", in)
	if !r.Total.Equal(dec("13750")) || !r.Investments.IsZero() {
		t.Fatalf("unexpected record %+v", r)
	}

	p := PreviewOf(raw)
	if !p.Total.Equal(r.Total) || !p.TotalGold.Equal(dec("8750")) || !p.DollarsInEGP.Equal(dec("5000")) {
		t.Fatalf("unexpected preview %+v", p)
	}

	if _, err := (RawInput{Date: "31-12-2024"}).ToInput(); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	in, err = RawInput{}.ToInput()
	if err != nil || !in.Date.Equal(Today().Time) {
		t.Fatalf("empty date should default to today, got %v %v", in.Date, err)
	}
}
