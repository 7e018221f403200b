package replication

import (
	"math"
	"time"

	"github.com/yzhao-quant/varswap/src/optionmodels"
)

const quoteDateLayout = "2006-01-02"

// maxForwardDays bounds the forward search for a tradable exit date.
const maxForwardDays = 30

// RepriceExit carries a previously built replicating portfolio forward by
// daysToShift calendar days and remarks every leg on the first quote date
// present in the dataset at or after the target. It returns a new leg slice;
// the entry legs are never mutated. A nil result means no reachable exit
// date within the search bound — an unrealizable trade, not an error.
func RepriceExit(entryLegs []optionmodels.ReplicationLeg, ds *optionmodels.OptionsDataset, daysToShift int) []optionmodels.ReplicationLeg {
	if len(entryLegs) == 0 {
		return nil
	}

	t0, err := time.Parse(quoteDateLayout, entryLegs[0].QuoteDate)
	if err != nil {
		return nil
	}

	next := t0.AddDate(0, 0, daysToShift)

	steps := 0
	for !ds.HasQuoteDate(next.Format(quoteDateLayout)) {
		next = next.AddDate(0, 0, 1)
		steps++
		if steps > maxForwardDays {
			return nil
		}
	}

	exitDate := next.Format(quoteDateLayout)

	exitLegs := make([]optionmodels.ReplicationLeg, 0, len(entryLegs))
	for _, leg := range entryLegs {
		leg.QuoteDate = exitDate
		leg.Strike = optionmodels.RoundStrike(leg.Strike)

		mid := math.NaN()
		if row, found := ds.LookupQuote(exitDate, leg.ExpiryDate, leg.Strike); found {
			if leg.Side == optionmodels.Put {
				mid = row.PutMid
			} else {
				mid = row.CallMid
			}
		}

		leg.Mid = mid
		leg.Mark = mid
		leg.Value = leg.Weight * mid

		exitLegs = append(exitLegs, leg)
	}

	return exitLegs
}
