package signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yzhao-quant/varswap/src/optionmodels"
)

func TestStep(t *testing.T) {
	benchmark := 0.01

	t.Run("long position stops out when price meets the EMA", func(t *testing.T) {
		state := Step(optionmodels.SignalLong, Observation{Price: 10, EMA: 10, UpperBand: 12, LowerBand: 8, VolEMA: 0.5}, benchmark)
		assert.Equal(t, optionmodels.SignalFlat, state)
	})

	t.Run("short position stops out when price falls to the EMA", func(t *testing.T) {
		state := Step(optionmodels.SignalShort, Observation{Price: 9, EMA: 10, UpperBand: 12, LowerBand: 8, VolEMA: 0.5}, benchmark)
		assert.Equal(t, optionmodels.SignalFlat, state)
	})

	t.Run("stop-out wins over a same-row short entry", func(t *testing.T) {
		// Price above both the EMA and the upper band in a quiet market:
		// the long position must flatten, not flip to short.
		obs := Observation{Price: 13, EMA: 10, UpperBand: 12, LowerBand: 8, VolEMA: 0.001}
		state := Step(optionmodels.SignalLong, obs, benchmark)
		assert.Equal(t, optionmodels.SignalFlat, state)
	})

	t.Run("no entries while the market is not quiet", func(t *testing.T) {
		obs := Observation{Price: 7, EMA: 10, UpperBand: 12, LowerBand: 8, VolEMA: 0.02}
		state := Step(optionmodels.SignalFlat, obs, benchmark)
		assert.Equal(t, optionmodels.SignalFlat, state)

		obs.Price = 13
		state = Step(optionmodels.SignalFlat, obs, benchmark)
		assert.Equal(t, optionmodels.SignalFlat, state)
	})

	t.Run("quiet market entries", func(t *testing.T) {
		long := Step(optionmodels.SignalFlat, Observation{Price: 7, EMA: 10, UpperBand: 12, LowerBand: 8, VolEMA: 0.005}, benchmark)
		assert.Equal(t, optionmodels.SignalLong, long)

		short := Step(optionmodels.SignalFlat, Observation{Price: 13, EMA: 10, UpperBand: 12, LowerBand: 8, VolEMA: 0.005}, benchmark)
		assert.Equal(t, optionmodels.SignalShort, short)
	})

	t.Run("long takes precedence on a degenerate band", func(t *testing.T) {
		// Inverted band: both entry conditions hold; long is evaluated
		// first.
		state := Step(optionmodels.SignalFlat, Observation{Price: 10, EMA: 10, UpperBand: 9, LowerBand: 11, VolEMA: 0.005}, benchmark)
		assert.Equal(t, optionmodels.SignalLong, state)
	})

	t.Run("NaN observations leave the state unchanged", func(t *testing.T) {
		nan := math.NaN()
		state := Step(optionmodels.SignalShort, Observation{Price: nan, EMA: nan, UpperBand: nan, LowerBand: nan, VolEMA: nan}, benchmark)
		assert.Equal(t, optionmodels.SignalShort, state)
	})

	t.Run("flat stays flat above benchmark over any path", func(t *testing.T) {
		// Property: with the gauge pinned above the benchmark, no band
		// crossing creates a position.
		state := optionmodels.SignalFlat
		prices := []float64{5, 15, 2, 20, 8, 12, 1, 19}
		for _, p := range prices {
			state = Step(state, Observation{Price: p, EMA: 10, UpperBand: 12, LowerBand: 8, VolEMA: 0.5}, benchmark)
			assert.Equal(t, optionmodels.SignalFlat, state)
		}
	})
}

func TestApply(t *testing.T) {
	t.Run("flat series alternates entry and stop-out", func(t *testing.T) {
		rows := make([]optionmodels.TermStructureRow, 5)
		for i := range rows {
			rows[i].Price = 10
		}

		Apply(rows, Config{
			EMASpan:             3,
			StdSpan:             3,
			VolatilitySpan:      3,
			BBSwitch:            1.0,
			VolatilityBenchmark: 0.01,
		})

		// Bands are undefined until the std window fills at index 2; from
		// there price touches the lower band, enters long, stops out at
		// the EMA on the next row and re-enters the row after.
		states := make([]optionmodels.SignalState, len(rows))
		for i := range rows {
			states[i] = rows[i].Signal
			assert.Equal(t, rows[i].Switch, rows[i].Signal)
		}

		assert.Equal(t, []optionmodels.SignalState{0, 0, 1, 0, 1}, states)
	})

	t.Run("first row is excluded from transitions", func(t *testing.T) {
		rows := []optionmodels.TermStructureRow{{Price: 5}, {Price: 5}}
		Apply(rows, Config{EMASpan: 2, StdSpan: 2, VolatilitySpan: 2, BBSwitch: 1.0, VolatilityBenchmark: 0.01})

		assert.Equal(t, optionmodels.SignalFlat, rows[0].Signal)
		assert.True(t, math.IsNaN(rows[0].VolDiff))
	})
}

func TestEWMMean(t *testing.T) {
	t.Run("recurrence weighting", func(t *testing.T) {
		out := EWMMean([]float64{1, 2, 3}, 2)

		assert.InDelta(t, 1.0, out[0], 1e-12)
		assert.InDelta(t, 5.0/3.0, out[1], 1e-12)
		assert.InDelta(t, 23.0/9.0, out[2], 1e-12)
	})

	t.Run("NaN decays the history weight without resetting", func(t *testing.T) {
		out := EWMMean([]float64{1, math.NaN(), 3}, 2)

		assert.InDelta(t, 1.0, out[0], 1e-12)
		assert.InDelta(t, 1.0, out[1], 1e-12)
		assert.InDelta(t, 19.0/7.0, out[2], 1e-12)
	})

	t.Run("leading NaNs stay NaN", func(t *testing.T) {
		out := EWMMean([]float64{math.NaN(), math.NaN(), 4}, 3)

		assert.True(t, math.IsNaN(out[0]))
		assert.True(t, math.IsNaN(out[1]))
		assert.InDelta(t, 4.0, out[2], 1e-12)
	})
}

func TestRollingStd(t *testing.T) {
	t.Run("fills after the window", func(t *testing.T) {
		out := RollingStd([]float64{1, 2, 3, 4}, 3)

		assert.True(t, math.IsNaN(out[0]))
		assert.True(t, math.IsNaN(out[1]))
		assert.InDelta(t, 1.0, out[2], 1e-12)
		assert.InDelta(t, 1.0, out[3], 1e-12)
	})

	t.Run("NaN inside the window yields NaN", func(t *testing.T) {
		out := RollingStd([]float64{1, math.NaN(), 3, 4, 5}, 3)

		assert.True(t, math.IsNaN(out[2]))
		assert.True(t, math.IsNaN(out[3]))
		assert.InDelta(t, 1.0, out[4], 1e-12)
	})
}
