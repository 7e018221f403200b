package replication

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/yzhao-quant/varswap/src/optionmodels"
)

// VarianceReplicator builds a static replicating portfolio approximating the
// variance-swap payoff via the log-contract decomposition.
type VarianceReplicator struct {
	priceMode optionmodels.PriceMode
}

// NewVarianceReplicator fails fast on an unrecognized pricing mode; that is
// the only hard error in the replication path.
func NewVarianceReplicator(priceMode optionmodels.PriceMode) (*VarianceReplicator, error) {
	if err := priceMode.Validate(); err != nil {
		return nil, fmt.Errorf("NewVarianceReplicator: %v", err)
	}

	return &VarianceReplicator{priceMode: priceMode}, nil
}

func (r *VarianceReplicator) PriceMode() optionmodels.PriceMode {
	return r.priceMode
}

func undefinedResult() optionmodels.ReplicationResult {
	return optionmodels.ReplicationResult{
		Vol:      math.NaN(),
		Variance: math.NaN(),
		NumLegs:  0,
		Legs:     nil,
	}
}

// BuildRepPort builds the replicating portfolio for one (quote date, expiry
// date) pair and reports its fair variance and volatility. Data-quality
// problems degrade to a NaN result instead of an error so that a single bad
// date cannot abort a multi-date run.
func (r *VarianceReplicator) BuildRepPort(ds *optionmodels.OptionsDataset, quoteDate, expiryDate string) optionmodels.ReplicationResult {
	var filtered []*optionmodels.OptionQuoteRow
	for _, row := range ds.RowsForPair(quoteDate, expiryDate) {
		if row.DTE > 0 {
			filtered = append(filtered, row)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Strike < filtered[j].Strike
	})

	if len(filtered) == 0 {
		return undefinedResult()
	}

	// The strike-relative split, not the quoted instrument type, decides
	// which side of the chain a row contributes to: only out-of-the-money
	// instruments are retained on each side.
	var puts, calls []optionmodels.ReplicationLeg
	for _, row := range filtered {
		forward := (row.Strike - row.Underlying) / row.Underlying
		logContract := math.Log(row.Strike / row.Underlying)
		pi := (2 * 365 / row.DTE) * (forward - logContract)

		if row.Strike < row.Underlying {
			puts = append(puts, optionmodels.ReplicationLeg{
				QuoteDate:  row.QuoteDate,
				ExpiryDate: row.ExpiryDate,
				Underlying: row.Underlying,
				Strike:     row.Strike,
				Side:       optionmodels.Put,
				Pi:         pi,
				Last:       row.PutLast,
				Bid:        row.PutBid,
				Ask:        row.PutAsk,
			})
		} else {
			calls = append(calls, optionmodels.ReplicationLeg{
				QuoteDate:  row.QuoteDate,
				ExpiryDate: row.ExpiryDate,
				Underlying: row.Underlying,
				Strike:     row.Strike,
				Side:       optionmodels.Call,
				Pi:         pi,
				Last:       row.CallLast,
				Bid:        row.CallBid,
				Ask:        row.CallAsk,
			})
		}
	}

	// Puts: lambda is the absolute backward finite difference of pi over
	// strike; the weight is the discrete second difference, with the
	// highest-strike put absorbing its own lambda as the boundary term. The
	// lowest put's lambda is undefined and the leg is dropped below.
	for i := range puts {
		if i == 0 {
			puts[i].Lambda = math.NaN()
			continue
		}

		puts[i].Lambda = math.Abs((puts[i].Pi - puts[i-1].Pi) / (puts[i].Strike - puts[i-1].Strike))
	}

	for i := range puts {
		if i == len(puts)-1 {
			puts[i].Weight = puts[i].Lambda
		} else {
			puts[i].Weight = puts[i].Lambda - puts[i+1].Lambda
		}
	}

	// Calls: symmetric construction with forward differences; the
	// lowest-strike call holds the boundary term and the highest call is
	// dropped.
	for i := range calls {
		if i == len(calls)-1 {
			calls[i].Lambda = math.NaN()
			continue
		}

		calls[i].Lambda = math.Abs((calls[i+1].Pi - calls[i].Pi) / (calls[i+1].Strike - calls[i].Strike))
	}

	for i := range calls {
		if i == 0 {
			calls[i].Weight = calls[i].Lambda
		} else {
			calls[i].Weight = calls[i].Lambda - calls[i-1].Lambda
		}
	}

	combined := append(puts, calls...)
	if len(combined) == 0 {
		return undefinedResult()
	}

	// Diagnostic flag on the leg struck nearest the spot; marked before the
	// undefined-weight legs are dropped, so the center leg itself may not
	// survive into the final portfolio.
	centerIdx := 0
	for i := range combined {
		if math.Abs(combined[i].Strike-combined[i].Underlying) < math.Abs(combined[centerIdx].Strike-combined[centerIdx].Underlying) {
			centerIdx = i
		}
	}
	combined[centerIdx].Center = true

	var legs []optionmodels.ReplicationLeg
	for _, leg := range combined {
		if math.IsNaN(leg.Weight) {
			continue
		}

		leg.Mid = (leg.Bid + leg.Ask) / 2
		leg.Mark = selectMark(r.priceMode, leg)
		leg.Value = leg.Weight * leg.Mark
		legs = append(legs, leg)
	}

	if len(legs) == 0 {
		return undefinedResult()
	}

	values := make([]float64, len(legs))
	for i, leg := range legs {
		values[i] = leg.Value
	}

	variance, err := stats.Sum(values)
	if err != nil {
		return undefinedResult()
	}

	vol := math.NaN()
	if !math.IsNaN(variance) && !math.IsInf(variance, 0) && variance >= 0 {
		vol = math.Sqrt(variance)
	}

	return optionmodels.ReplicationResult{
		Vol:      vol,
		Variance: variance,
		NumLegs:  len(legs),
		Legs:     legs,
	}
}

// selectMark dispatches the closed pricing-mode enumeration; the mode was
// validated at construction, so the default arm is unreachable.
func selectMark(mode optionmodels.PriceMode, leg optionmodels.ReplicationLeg) float64 {
	switch mode {
	case optionmodels.PriceModeLast:
		return leg.Last
	case optionmodels.PriceModeBid:
		return leg.Bid
	case optionmodels.PriceModeAsk:
		return leg.Ask
	case optionmodels.PriceModeMid:
		return leg.Mid
	case optionmodels.PriceModeLastAdj:
		if !math.IsNaN(leg.Last) && leg.Last != 0 {
			return leg.Last
		}

		return leg.Mid
	default:
		return math.NaN()
	}
}
