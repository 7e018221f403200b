package signals

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/yzhao-quant/varswap/src/optionmodels"
)

// Config holds the signal generator parameters.
type Config struct {
	EMASpan             int
	StdSpan             int
	VolatilitySpan      int
	BBSwitch            float64
	VolatilityBenchmark float64
}

// Observation is one row's view of the smoothed series, enough to evaluate
// the transition rule.
type Observation struct {
	Price     float64
	EMA       float64
	UpperBand float64
	LowerBand float64
	VolEMA    float64
}

// Step is the pure regime transition. The stop-out check runs before any
// new-entry check and wins outright: a row that unwinds a position flattens
// and cannot re-enter until the next row. New entries require a quiet
// market: the volatility gauge at or below the benchmark. Long entry is
// evaluated first and takes precedence on a degenerate band. NaN
// comparisons are false, leaving the state unchanged.
func Step(state optionmodels.SignalState, obs Observation, volatilityBenchmark float64) optionmodels.SignalState {
	if (state == optionmodels.SignalLong && obs.Price >= obs.EMA) ||
		(state == optionmodels.SignalShort && obs.Price <= obs.EMA) {
		return optionmodels.SignalFlat
	}

	if state == optionmodels.SignalFlat && obs.VolEMA <= volatilityBenchmark {
		if obs.Price <= obs.LowerBand {
			state = optionmodels.SignalLong
		} else if obs.Price >= obs.UpperBand {
			state = optionmodels.SignalShort
		}
	}

	return state
}

// Apply computes the smoothed columns over the term-structure price series
// and folds Step across the rows in index order. The first row carries no
// prior price and stays flat.
func Apply(rows []optionmodels.TermStructureRow, cfg Config) {
	prices := make([]float64, len(rows))
	for i := range rows {
		prices[i] = rows[i].Price
	}

	ema := EWMMean(prices, cfg.EMASpan)
	std := RollingStd(prices, cfg.StdSpan)
	volEMA := EWMMean(AbsDiff(prices), cfg.VolatilitySpan)

	for i := range rows {
		rows[i].EMA = ema[i]
		rows[i].Std = std[i]
		rows[i].UpperBand = ema[i] + cfg.BBSwitch*std[i]
		rows[i].LowerBand = ema[i] - cfg.BBSwitch*std[i]
		rows[i].VolEMA = volEMA[i]
		rows[i].Switch = optionmodels.SignalFlat
		rows[i].Signal = optionmodels.SignalFlat
	}

	if len(rows) > 0 {
		rows[0].VolDiff = math.NaN()
	}
	for i := 1; i < len(rows); i++ {
		rows[i].VolDiff = math.Abs(prices[i] - prices[i-1])
	}

	state := optionmodels.SignalFlat
	for i := 1; i < len(rows); i++ {
		state = Step(state, Observation{
			Price:     rows[i].Price,
			EMA:       rows[i].EMA,
			UpperBand: rows[i].UpperBand,
			LowerBand: rows[i].LowerBand,
			VolEMA:    rows[i].VolEMA,
		}, cfg.VolatilityBenchmark)

		rows[i].Switch = state
		rows[i].Signal = state
	}
}

// EWMMean is an exponentially weighted mean with alpha = 2/(span+1) and
// recurrence weighting (adjust=False). NaN inputs do not reset the mean but
// do decay the weight of the history, so a valid value after a gap counts
// for more than it would in an unbroken series.
func EWMMean(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	alpha := 2.0 / (float64(span) + 1.0)

	mean := math.NaN()
	oldWt := 1.0
	for i, v := range values {
		if math.IsNaN(v) {
			oldWt *= 1 - alpha
			out[i] = mean
			continue
		}

		if math.IsNaN(mean) {
			mean = v
			oldWt = 1.0
		} else {
			oldWt *= 1 - alpha
			mean = (oldWt*mean + alpha*v) / (oldWt + alpha)
			oldWt = 1.0
		}

		out[i] = mean
	}

	return out
}

// RollingStd is the sample standard deviation over a trailing full window;
// positions before the window fills, or windows containing NaN, yield NaN.
func RollingStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}

	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		sample := values[i-window+1 : i+1]

		hasNaN := false
		for _, v := range sample {
			if math.IsNaN(v) {
				hasNaN = true
				break
			}
		}
		if hasNaN {
			continue
		}

		sd, err := stats.StandardDeviationSample(sample)
		if err != nil {
			continue
		}

		out[i] = sd
	}

	return out
}

// AbsDiff is the absolute first difference; the first element is NaN.
func AbsDiff(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(out) == 0 {
		return out
	}

	out[0] = math.NaN()
	for i := 1; i < len(values); i++ {
		out[i] = math.Abs(values[i] - values[i-1])
	}

	return out
}
