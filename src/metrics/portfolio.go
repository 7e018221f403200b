package metrics

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/yzhao-quant/varswap/src/optionmodels"
)

// PortfolioMetrics is the aggregate record handed to the caller alongside
// the cumulative-return (NAV) series.
type PortfolioMetrics struct {
	MeanDailyReturn      Float                   `json:"mean_daily_return"`
	StdDailyReturn       Float                   `json:"std_daily_return"`
	SharpeAnnualized     Float                   `json:"sharpe_annualized"`
	SortinoAnnualized    Float                   `json:"sortino_annualized"`
	MaxDrawdown          Float                   `json:"max_drawdown"`
	WinRateTradeDays     Float                   `json:"win_rate_trade_days"`
	TradeAttempt         Float                   `json:"trade_attempt"`
	Exposure             Float                   `json:"exposure"`
	SignalTurnoverYearly Float                   `json:"signal_turnover_yearly"`
	FinalNAV             Float                   `json:"final_nav"`
	Stationarity         StationarityDiagnostics `json:"stationarity"`
}

// Returns selects a realized-return column from the backtest table by name.
// An unknown column name is a hard error: metrics cannot silently fall back
// to a different return definition.
func Returns(rows []optionmodels.BacktestRow, profitColumn string) ([]float64, error) {
	var pick func(r *optionmodels.BacktestRow) float64

	switch profitColumn {
	case "profit_entry@t1_exit@t2":
		pick = func(r *optionmodels.BacktestRow) float64 { return r.ProfitEntryT1ExitT2 }
	case "profit_entry@t0_exit@t1":
		pick = func(r *optionmodels.BacktestRow) float64 { return r.ProfitEntryT0ExitT1 }
	case "pct_change":
		pick = func(r *optionmodels.BacktestRow) float64 { return r.PctChange }
	default:
		return nil, fmt.Errorf("Returns: profit column '%s' not found", profitColumn)
	}

	out := make([]float64, len(rows))
	for i := range rows {
		out[i] = pick(&rows[i])
	}

	return out, nil
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}

	return out
}

// EquityCurve compounds the return series into a NAV series, treating
// undefined returns as zero (no position realized that day).
func EquityCurve(returns []float64) []float64 {
	nav := make([]float64, len(returns))

	acc := 1.0
	for i, p := range returns {
		if math.IsNaN(p) {
			p = 0
		}

		acc *= 1 + p
		nav[i] = acc
	}

	return nav
}

func MaxDrawdown(nav []float64) float64 {
	clean := dropNaN(nav)
	if len(clean) == 0 {
		return math.NaN()
	}

	runningMax := clean[0]
	minDD := math.Inf(1)
	for _, v := range clean {
		if v > runningMax {
			runningMax = v
		}

		dd := v/runningMax - 1
		if dd < minDD {
			minDD = dd
		}
	}

	return minDD
}

func dailyRiskFree(riskFreeRateAnnual float64, tradingDays int) float64 {
	return riskFreeRateAnnual / float64(tradingDays)
}

// SharpeAnnualized is the annualized Sharpe ratio of the excess return over
// a simple daily risk-free rate, with sample standard deviation.
func SharpeAnnualized(returns []float64, riskFreeRateAnnual float64, tradingDays int) float64 {
	p := dropNaN(returns)
	if len(p) < 2 {
		return math.NaN()
	}

	rfDaily := dailyRiskFree(riskFreeRateAnnual, tradingDays)
	excess := make([]float64, len(p))
	for i, v := range p {
		excess[i] = v - rfDaily
	}

	mean, err := stats.Mean(excess)
	if err != nil {
		return math.NaN()
	}

	sd, err := stats.StandardDeviationSample(excess)
	if err != nil || sd == 0 || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return math.NaN()
	}

	return math.Sqrt(float64(tradingDays)) * mean / sd
}

// SortinoAnnualized uses the population standard deviation of the negative
// returns as the downside deviation.
func SortinoAnnualized(returns []float64, riskFreeRateAnnual float64, tradingDays int) float64 {
	p := dropNaN(returns)
	if len(p) < 2 {
		return math.NaN()
	}

	mean, err := stats.Mean(p)
	if err != nil {
		return math.NaN()
	}

	expected := mean - dailyRiskFree(riskFreeRateAnnual, tradingDays)

	var downside []float64
	for _, v := range p {
		if v < 0 {
			downside = append(downside, v)
		}
	}

	downsideDev, err := stats.StandardDeviation(downside)
	if err != nil || downsideDev == 0 || math.IsNaN(downsideDev) || math.IsInf(downsideDev, 0) {
		return math.NaN()
	}

	return math.Sqrt(float64(tradingDays)) * expected / downsideDev
}

// ExposureRate is the fraction of rows carrying a non-flat signal.
func ExposureRate(signals []optionmodels.SignalState) float64 {
	if len(signals) == 0 {
		return math.NaN()
	}

	active := 0
	for _, s := range signals {
		if s != optionmodels.SignalFlat {
			active++
		}
	}

	return float64(active) / float64(len(signals))
}

// SignalTurnoverYearly annualizes the mean absolute signal change; for
// {-1,0,1} states it measures how frequently the position changes.
func SignalTurnoverYearly(signals []optionmodels.SignalState, tradingDays int) float64 {
	n := len(signals)
	if n < 2 {
		return math.NaN()
	}

	total := 0.0
	for i := 1; i < n; i++ {
		total += math.Abs(float64(signals[i] - signals[i-1]))
	}

	return total / float64(n) * float64(tradingDays)
}

// WinRateTradeDays is the share of positive returns among rows where a
// position was held and the return is defined.
func WinRateTradeDays(rows []optionmodels.BacktestRow, profitColumn string) (float64, error) {
	p, err := Returns(rows, profitColumn)
	if err != nil {
		return math.NaN(), err
	}

	wins, total := 0, 0
	for i := range rows {
		if rows[i].Signal == optionmodels.SignalFlat || math.IsNaN(p[i]) {
			continue
		}

		total++
		if p[i] > 0 {
			wins++
		}
	}

	if total == 0 {
		return math.NaN(), nil
	}

	return float64(wins) / float64(total), nil
}

// TradeAttemptRate is the fraction of rows with a non-flat signal.
func TradeAttemptRate(rows []optionmodels.BacktestRow) float64 {
	if len(rows) == 0 {
		return math.NaN()
	}

	attempts := 0
	for i := range rows {
		if rows[i].Signal != optionmodels.SignalFlat {
			attempts++
		}
	}

	return float64(attempts) / float64(len(rows))
}

// FullPortfolioMetrics aggregates the portfolio record and NAV series from
// the backtest table for the chosen return column.
func FullPortfolioMetrics(rows []optionmodels.BacktestRow, profitColumn string, riskFreeRateAnnual float64, tradingDays int) (PortfolioMetrics, []float64, error) {
	p, err := Returns(rows, profitColumn)
	if err != nil {
		return PortfolioMetrics{}, nil, fmt.Errorf("FullPortfolioMetrics: %v", err)
	}

	nav := EquityCurve(p)

	clean := dropNaN(p)
	meanReturn, stdReturn := math.NaN(), math.NaN()
	if len(clean) > 0 {
		if m, err := stats.Mean(clean); err == nil {
			meanReturn = m
		}
	}
	if len(clean) > 1 {
		if sd, err := stats.StandardDeviationSample(clean); err == nil {
			stdReturn = sd
		}
	}

	winRate, err := WinRateTradeDays(rows, profitColumn)
	if err != nil {
		return PortfolioMetrics{}, nil, fmt.Errorf("FullPortfolioMetrics: %v", err)
	}

	signalCol := make([]optionmodels.SignalState, len(rows))
	prices := make([]float64, len(rows))
	for i := range rows {
		signalCol[i] = rows[i].Signal
		prices[i] = rows[i].Price
	}

	finalNAV := math.NaN()
	if len(nav) > 0 {
		finalNAV = nav[len(nav)-1]
	}

	m := PortfolioMetrics{
		MeanDailyReturn:      Float(meanReturn),
		StdDailyReturn:       Float(stdReturn),
		SharpeAnnualized:     Float(SharpeAnnualized(p, riskFreeRateAnnual, tradingDays)),
		SortinoAnnualized:    Float(SortinoAnnualized(p, riskFreeRateAnnual, tradingDays)),
		MaxDrawdown:          Float(MaxDrawdown(nav)),
		WinRateTradeDays:     Float(winRate),
		TradeAttempt:         Float(TradeAttemptRate(rows)),
		Exposure:             Float(ExposureRate(signalCol)),
		SignalTurnoverYearly: Float(SignalTurnoverYearly(signalCol, tradingDays)),
		FinalNAV:             Float(finalNAV),
		Stationarity:         Stationarity(prices, 4, 20),
	}

	return m, nav, nil
}
