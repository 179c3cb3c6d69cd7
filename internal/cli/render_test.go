package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"savings/internal/core"
)

func fixtureRecords() []core.SavingsRecord {
	var recs []core.SavingsRecord
	for i, in := range core.Fixtures() {
		recs = append(recs, core.NewRecord(string(rune('1'+i)), in))
	}
	core.SortByDateDesc(recs)
	return recs
}

func TestAmount(t *testing.T) {
	assert.Equal(t, "214,750", amount(decimal.NewFromInt(214750)))
	assert.Equal(t, "31.5", amount(decimal.RequireFromString("31.5")))
	assert.Equal(t, "8,001.5", amount(decimal.RequireFromString("8001.50")))
	assert.Equal(t, "0", amount(decimal.Zero))
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	RenderHistory(&buf, core.History(fixtureRecords()))
	out := buf.String()

	assert.Contains(t, out, "2024-02-15")
	assert.Contains(t, out, "253,600")
	assert.Contains(t, out, "+18.1%")
	assert.Less(t, strings.Index(out, "2024-02-15"), strings.Index(out, "2024-01-15"))
}

func TestRenderSummary(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		RenderSummary(&buf, core.Summarize(nil))
		assert.Equal(t, "No savings records yet.\n", buf.String())
	})

	t.Run("fixtures", func(t *testing.T) {
		var buf bytes.Buffer
		RenderSummary(&buf, core.Summarize(fixtureRecords()))
		out := buf.String()
		assert.Contains(t, out, "Total savings: EGP 253,600 (as of Feb 15, 2024)")
		assert.Contains(t, out, "Growth since previous: +18.1%")
		assert.Contains(t, out, "Certificates")
		assert.Contains(t, out, "Records: 2")
	})
}

func TestRenderRates(t *testing.T) {
	var buf bytes.Buffer
	RenderRates(&buf, core.RatesOf(fixtureRecords()[0]))
	assert.Contains(t, buf.String(), "Gold rate:   3,600 per coin")
	assert.Contains(t, buf.String(), "Dollar rate: 31.5 per USD")
}
