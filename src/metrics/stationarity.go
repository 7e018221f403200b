package metrics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// StationarityResult holds the mean-reversion diagnostics for one transform
// of the price series. PValue stays NaN: translating the Dickey-Fuller
// statistic into a p-value needs the MacKinnon response surface, which is
// out of scope; compare ADFStat against the usual critical values instead.
type StationarityResult struct {
	ADFStat  Float `json:"adf_stat"`
	PValue   Float `json:"p_value"`
	HalfLife Float `json:"half_life"`
	NumObs   int   `json:"n_obs"`
}

type StationarityDiagnostics struct {
	Raw    StationarityResult `json:"raw"`
	Diff   StationarityResult `json:"diff"`
	ZScore StationarityResult `json:"zscore"`
	Note   string             `json:"note,omitempty"`
}

func emptyStationarityResult() StationarityResult {
	return StationarityResult{
		ADFStat:  Float(math.NaN()),
		PValue:   Float(math.NaN()),
		HalfLife: Float(math.NaN()),
	}
}

// Stationarity runs the diagnostics over the raw price series, its first
// difference and its rolling z-score.
func Stationarity(prices []float64, zscoreWindow, minObs int) StationarityDiagnostics {
	out := StationarityDiagnostics{
		Raw:    emptyStationarityResult(),
		Diff:   emptyStationarityResult(),
		ZScore: emptyStationarityResult(),
		Note:   "adf p-value not computed (no MacKinnon surface); use adf_stat against critical values",
	}

	raw := dropNaN(prices)
	if len(raw) < minObs {
		out.Note = "insufficient observations"
		out.Raw.NumObs = len(raw)
		return out
	}

	out.Raw = stationarityFor(raw, minObs)
	out.Diff = stationarityFor(dropNaN(diff(raw)), minObs)
	out.ZScore = stationarityFor(dropNaN(ZScore(raw, zscoreWindow)), minObs)

	return out
}

func stationarityFor(series []float64, minObs int) StationarityResult {
	res := emptyStationarityResult()
	res.NumObs = len(series)
	if len(series) < minObs {
		return res
	}

	res.ADFStat = Float(DickeyFullerStat(series))
	res.HalfLife = Float(HalfLife(series, minObs))

	return res
}

func diff(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}

	out := make([]float64, len(series))
	out[0] = math.NaN()
	for i := 1; i < len(series); i++ {
		out[i] = series[i] - series[i-1]
	}

	return out
}

// HalfLife estimates the mean-reversion half-life from the no-intercept OLS
// of the first difference on the lagged level: half_life = ln(2) / |beta|.
func HalfLife(series []float64, minObs int) float64 {
	s := dropNaN(series)
	if len(s) < minObs {
		return math.NaN()
	}

	var sumXY, sumXX float64
	for i := 1; i < len(s); i++ {
		lag := s[i-1]
		delta := s[i] - s[i-1]
		sumXY += lag * delta
		sumXX += lag * lag
	}

	if sumXX == 0 {
		return math.NaN()
	}

	beta := sumXY / sumXX
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return math.NaN()
	}

	if beta == 0 {
		return math.Inf(1)
	}

	return math.Ln2 / math.Abs(beta)
}

// DickeyFullerStat is the t-statistic of beta in the regression
// delta_x = alpha + beta * x_{t-1}, the lag-0 ADF test statistic.
func DickeyFullerStat(series []float64) float64 {
	s := dropNaN(series)
	if len(s) < 3 {
		return math.NaN()
	}

	n := len(s) - 1
	x := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = s[i]
		y[i] = s[i+1] - s[i]
	}

	xMean, err := stats.Mean(x)
	if err != nil {
		return math.NaN()
	}

	yMean, err := stats.Mean(y)
	if err != nil {
		return math.NaN()
	}

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		sxx += (x[i] - xMean) * (x[i] - xMean)
		sxy += (x[i] - xMean) * (y[i] - yMean)
	}

	if sxx == 0 {
		return math.NaN()
	}

	beta := sxy / sxx
	alpha := yMean - beta*xMean

	var rss float64
	for i := 0; i < n; i++ {
		resid := y[i] - alpha - beta*x[i]
		rss += resid * resid
	}

	if n <= 2 {
		return math.NaN()
	}

	se := math.Sqrt(rss / float64(n-2) / sxx)
	if se == 0 || math.IsNaN(se) {
		return math.NaN()
	}

	return beta / se
}

// ZScore is the rolling z-score of the series: (x - rolling mean) / rolling
// sample std over the window; NaN until the window fills.
func ZScore(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	for i := range out {
		out[i] = math.NaN()
	}

	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(series); i++ {
		sample := series[i-window+1 : i+1]

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

		mean, err := stats.Mean(sample)
		if err != nil {
			continue
		}

		sd, err := stats.StandardDeviationSample(sample)
		if err != nil || sd == 0 || math.IsNaN(sd) {
			continue
		}

		out[i] = (series[i] - mean) / sd
	}

	return out
}
