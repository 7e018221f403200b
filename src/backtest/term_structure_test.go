package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yzhao-quant/varswap/src/optionmodels"
	"github.com/yzhao-quant/varswap/src/replication"
)

func chainRow(quoteDate, expiryDate string, strike, dte, putMid, callMid float64) *optionmodels.OptionQuoteRow {
	return &optionmodels.OptionQuoteRow{
		QuoteDate:  quoteDate,
		ExpiryDate: expiryDate,
		Underlying: 100.0,
		Strike:     strike,
		DTE:        dte,
		PutBid:     putMid - 0.1,
		PutAsk:     putMid + 0.1,
		PutMid:     putMid,
		CallBid:    callMid - 0.1,
		CallAsk:    callMid + 0.1,
		CallMid:    callMid,
	}
}

// fullChain builds a six-strike spot-100 chain for one quote date, with all
// mids scaled by the given factor so variance differs across dates.
func fullChain(quoteDate, expiryDate string, dte, scale float64) []*optionmodels.OptionQuoteRow {
	return []*optionmodels.OptionQuoteRow{
		chainRow(quoteDate, expiryDate, 90, dte, 0.8*scale, 10.0*scale),
		chainRow(quoteDate, expiryDate, 95, dte, 1.5*scale, 6.5*scale),
		chainRow(quoteDate, expiryDate, 99, dte, 2.8*scale, 4.0*scale),
		chainRow(quoteDate, expiryDate, 100, dte, 3.4*scale, 3.2*scale),
		chainRow(quoteDate, expiryDate, 105, dte, 7.0*scale, 1.1*scale),
		chainRow(quoteDate, expiryDate, 110, dte, 11.0*scale, 0.3*scale),
	}
}

func TestBuildTermStructure(t *testing.T) {
	expiryDate := "2022-02-02"

	t.Run("rows sorted by tenor descending with price alias", func(t *testing.T) {
		var rows []*optionmodels.OptionQuoteRow
		rows = append(rows, fullChain("2022-01-04", expiryDate, 29, 1.1)...)
		rows = append(rows, fullChain("2022-01-03", expiryDate, 30, 1.0)...)
		ds := optionmodels.NewOptionsDataset(rows)

		replicator, err := replication.NewVarianceReplicator(optionmodels.PriceModeMid)
		require.NoError(t, err)

		ts, err := BuildTermStructure(ds, expiryDate, replicator)
		require.NoError(t, err)
		require.Len(t, ts, 2)

		assert.Equal(t, "2022-01-03", ts[0].QuoteDate)
		assert.Equal(t, 30.0, ts[0].DTE)
		assert.Equal(t, "2022-01-04", ts[1].QuoteDate)

		for _, row := range ts {
			assert.Equal(t, row.Vol, row.Price)
			assert.Equal(t, 4, row.NumLegs)
		}
	})

	t.Run("same-day expiry quotes are excluded", func(t *testing.T) {
		rows := fullChain(expiryDate, expiryDate, 0, 1.0)
		rows = append(rows, fullChain("2022-01-03", expiryDate, 30, 1.0)...)
		ds := optionmodels.NewOptionsDataset(rows)

		replicator, err := replication.NewVarianceReplicator(optionmodels.PriceModeMid)
		require.NoError(t, err)

		ts, err := BuildTermStructure(ds, expiryDate, replicator)
		require.NoError(t, err)
		require.Len(t, ts, 1)
		assert.Equal(t, "2022-01-03", ts[0].QuoteDate)
	})

	t.Run("other expiries are ignored", func(t *testing.T) {
		rows := fullChain("2022-01-03", expiryDate, 30, 1.0)
		rows = append(rows, fullChain("2022-01-03", "2022-03-04", 60, 1.0)...)
		ds := optionmodels.NewOptionsDataset(rows)

		replicator, err := replication.NewVarianceReplicator(optionmodels.PriceModeMid)
		require.NoError(t, err)

		ts, err := BuildTermStructure(ds, expiryDate, replicator)
		require.NoError(t, err)
		require.Len(t, ts, 1)
	})

	t.Run("bad date degrades to a NaN row without aborting the run", func(t *testing.T) {
		// The second date carries only zero-DTE rows: its chain filters to
		// nothing and the row degrades.
		var rows []*optionmodels.OptionQuoteRow
		rows = append(rows, fullChain("2022-01-03", expiryDate, 30, 1.0)...)
		rows = append(rows, fullChain("2022-01-04", expiryDate, 0, 1.0)...)
		ds := optionmodels.NewOptionsDataset(rows)

		replicator, err := replication.NewVarianceReplicator(optionmodels.PriceModeMid)
		require.NoError(t, err)

		ts, err := BuildTermStructure(ds, expiryDate, replicator)
		require.NoError(t, err)
		require.Len(t, ts, 2)

		assert.False(t, math.IsNaN(ts[0].Variance))
		assert.True(t, math.IsNaN(ts[1].Variance))
		assert.Equal(t, 0, ts[1].NumLegs)
	})

	t.Run("tenor order diverging from chronology is a dataset error", func(t *testing.T) {
		var rows []*optionmodels.OptionQuoteRow
		rows = append(rows, fullChain("2022-01-03", expiryDate, 20, 1.0)...)
		rows = append(rows, fullChain("2022-01-05", expiryDate, 30, 1.0)...)
		ds := optionmodels.NewOptionsDataset(rows)

		replicator, err := replication.NewVarianceReplicator(optionmodels.PriceModeMid)
		require.NoError(t, err)

		_, err = BuildTermStructure(ds, expiryDate, replicator)
		assert.Error(t, err)
	})
}
