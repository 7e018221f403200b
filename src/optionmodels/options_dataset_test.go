package optionmodels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteRow(quoteDate, expiryDate string, strike, dte float64) *OptionQuoteRow {
	return &OptionQuoteRow{
		QuoteDate:  quoteDate,
		ExpiryDate: expiryDate,
		Underlying: 100.0,
		Strike:     strike,
		DTE:        dte,
	}
}

func TestRoundStrike(t *testing.T) {
	assert.Equal(t, 95.0, RoundStrike(95.0000000000001))
	assert.Equal(t, 95.00000001, RoundStrike(95.00000001))
	assert.True(t, math.IsNaN(RoundStrike(math.NaN())))
}

func TestOptionsDataset(t *testing.T) {
	expiryDate := "2022-02-02"

	ds := NewOptionsDataset([]*OptionQuoteRow{
		quoteRow("2022-01-04", expiryDate, 95, 29),
		quoteRow("2022-01-04", expiryDate, 100, 29),
		quoteRow("2022-01-03", expiryDate, 95, 30),
		quoteRow("2022-01-03", expiryDate, 100, 30),
		quoteRow("2022-01-03", "2022-03-04", 95, 60),
		quoteRow(expiryDate, expiryDate, 95, 0),
	})

	t.Run("quote dates sorted ascending", func(t *testing.T) {
		assert.Equal(t, []string{"2022-01-03", "2022-01-04", expiryDate}, ds.QuoteDates())
		assert.True(t, ds.HasQuoteDate("2022-01-03"))
		assert.False(t, ds.HasQuoteDate("2022-01-05"))
	})

	t.Run("lookup joins on normalized strike", func(t *testing.T) {
		row, found := ds.LookupQuote("2022-01-03", expiryDate, 95.0000000000001)
		require.True(t, found)
		assert.Equal(t, 95.0, row.Strike)

		_, found = ds.LookupQuote("2022-01-03", expiryDate, 97)
		assert.False(t, found)
	})

	t.Run("unique pairs dedup and keep first appearance order", func(t *testing.T) {
		pairs := ds.UniquePairs(expiryDate)
		require.Len(t, pairs, 2)

		// Same-day expiry rows and other expiries are excluded.
		assert.Equal(t, "2022-01-04", pairs[0].QuoteDate)
		assert.Equal(t, 29.0, pairs[0].DTE)
		assert.Equal(t, "2022-01-03", pairs[1].QuoteDate)
	})

	t.Run("filter by quote date range", func(t *testing.T) {
		assert.Equal(t, 2, ds.FilterQuoteDates("2022-01-04", "2022-01-04").Len())
		assert.Equal(t, 5, ds.FilterQuoteDates("", "2022-01-04").Len())
		assert.Equal(t, 6, ds.FilterQuoteDates("", "").Len())
	})

	t.Run("limit keeps the first n quote dates", func(t *testing.T) {
		limited := ds.LimitQuoteDates(1)
		assert.Equal(t, []string{"2022-01-03"}, limited.QuoteDates())
		assert.Equal(t, 3, limited.Len())

		assert.Equal(t, 6, ds.LimitQuoteDates(0).Len())
	})

	t.Run("rows for pair", func(t *testing.T) {
		assert.Len(t, ds.RowsForPair("2022-01-03", expiryDate), 2)
		assert.Empty(t, ds.RowsForPair("2022-01-05", expiryDate))
	})
}
