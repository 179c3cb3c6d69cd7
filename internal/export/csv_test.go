package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savings/internal/core"
)

const header = "id,date,gold_in_coins,gold_conversion_value,total_gold,investments,bank_certificates," +
	"dollars_in_usd,dollar_conversion_value,dollars_in_egp,cash_savings,total,growth_percent"

func fixtures() []core.SavingsRecord {
	fx := core.Fixtures()
	return []core.SavingsRecord{core.NewRecord("2", fx[1]), core.NewRecord("1", fx[0])}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtures()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, header, lines[0])
	assert.Equal(t, "2,2024-02-15,3,3600,10800,55000,120000,1200,31.5,37800,30000,253600,18.09", lines[1])
	assert.Equal(t, "1,2024-01-15,2.5,3500,8750,50000,100000,1000,31,31000,25000,214750,", lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, header, strings.TrimSpace(buf.String()))
}

func TestReadCSVRecomputesDerivedColumns(t *testing.T) {
	in := header + "\n" +
		"x,2024-03-01,1,4000,999,0,0,10,50,999,100,1,\n" +
		"y,2024-03-02,abc,,,,,,,,,,\n"
	inputs, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	rec := core.NewRecord("n", inputs[0])
	assert.True(t, rec.TotalGold.Equal(decimal.NewFromInt(4000)))
	assert.True(t, rec.Total.Equal(decimal.NewFromInt(4600)))
	assert.True(t, inputs[1].GoldInCoins.IsZero())
}

func TestReadCSVRejectsBadDates(t *testing.T) {
	for _, body := range []string{
		header + "\nx,03/01/2024,1,1,1,1,1,1,1,1,1,1,\n",
		header + "\nx,,1,1,1,1,1,1,1,1,1,1,\n",
	} {
		_, err := ReadCSV(strings.NewReader(body))
		assert.ErrorIs(t, err, core.ErrInvalidDate)
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtures()))
	inputs, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.True(t, core.NewRecord("a", inputs[0]).Total.Equal(decimal.NewFromInt(253600)))
	assert.True(t, core.NewRecord("b", inputs[1]).Total.Equal(decimal.NewFromInt(214750)))
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "savings.csv")
	require.NoError(t, WriteFile(path, fixtures()))
	require.NoError(t, WriteFile(path, fixtures()[:1]))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(b)), "\n"), 2)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
