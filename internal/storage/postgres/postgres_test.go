package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savings/internal/core"
	"savings/internal/records"
)

func TestDecodeRecord(t *testing.T) {
	cols := [11]string{"2024-01-15", "2.5", "3500", "8750.0", "50000", "100000",
		"1000", "31", "31000", "25000", "214750"}
	rec, err := decodeRecord("1", cols)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", rec.Date.String())
	assert.True(t, rec.TotalGold.Equal(decimal.NewFromInt(8750)))
	assert.True(t, rec.Total.Equal(decimal.NewFromInt(214750)))

	cols[4] = "n/a"
	_, err = decodeRecord("1", cols)
	assert.Error(t, err)

	cols[0] = "15/01/2024"
	_, err = decodeRecord("1", cols)
	assert.Error(t, err)
}

func TestStoreAgainstDatabase(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.pool.Exec(ctx, `TRUNCATE savings_records`)
	require.NoError(t, err)

	rates, err := s.LatestRates(ctx)
	require.NoError(t, err)
	assert.True(t, rates.GoldRate.Equal(core.DefaultGoldRate))

	seeded, err := records.SeedIfEmpty(ctx, s)
	require.NoError(t, err)
	require.True(t, seeded)

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2024-02-15", recs[0].Date.String())
	assert.True(t, recs[0].Total.Equal(decimal.NewFromInt(253600)))

	removed, err := s.Delete(ctx, recs[0].ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	recs, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}
