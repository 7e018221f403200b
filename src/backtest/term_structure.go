package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yzhao-quant/varswap/src/optionmodels"
	"github.com/yzhao-quant/varswap/src/replication"
	"github.com/yzhao-quant/varswap/src/utils"
)

// buildRow wraps one replication call with panic containment so that an
// unexpected failure on one pair degrades that pair's row instead of
// aborting the whole run.
func buildRow(replicator *replication.VarianceReplicator, ds *optionmodels.OptionsDataset, pair optionmodels.QuotePair) (row optionmodels.TermStructureRow) {
	row = optionmodels.TermStructureRow{
		QuoteDate:  pair.QuoteDate,
		ExpiryDate: pair.ExpiryDate,
		DTE:        pair.DTE,
		Vol:        math.NaN(),
		Variance:   math.NaN(),
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("BuildTermStructure: build_rep_port failed | t=%s | T=%s | DTE=%v: %v", pair.QuoteDate, pair.ExpiryDate, pair.DTE, r)
		}
	}()

	res := replicator.BuildRepPort(ds, pair.QuoteDate, pair.ExpiryDate)

	row.Vol = res.Vol
	row.Variance = res.Variance
	row.NumLegs = res.NumLegs
	row.Legs = res.Legs

	return row
}

// BuildTermStructure assembles the per-quote-date variance/vol estimates for
// one expiry, sorted by remaining tenor descending, with the price column
// aliasing the volatility estimate.
func BuildTermStructure(ds *optionmodels.OptionsDataset, expiryDate string, replicator *replication.VarianceReplicator) ([]optionmodels.TermStructureRow, error) {
	start := time.Now()
	log.Infof("BuildTermStructure: start | expiry=%s | rows=%d", expiryDate, ds.Len())

	pairs := ds.UniquePairs(expiryDate)
	log.Infof("BuildTermStructure: unique_pairs_used=%d", len(pairs))

	rows := make([]optionmodels.TermStructureRow, 0, len(pairs))
	progress := utils.NewProgressLogger("BuildTermStructure", len(pairs), 50)

	for i, pair := range pairs {
		progress.Log(i + 1)
		rows = append(rows, buildRow(replicator, ds, pair))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DTE > rows[j].DTE
	})

	for i := range rows {
		rows[i].Price = rows[i].Vol
	}

	if err := validateRowOrder(rows); err != nil {
		return nil, err
	}

	log.Infof("BuildTermStructure: done | out_rows=%d | elapsed=%.2fs", len(rows), time.Since(start).Seconds())

	return rows, nil
}

// validateRowOrder checks that tenor-descending order coincides with
// chronological order of the quote dates. The signal fold and the
// entry/exit row shifts treat row index as time, so divergence is a dataset
// error, not something to guess around.
func validateRowOrder(rows []optionmodels.TermStructureRow) error {
	for i := 1; i < len(rows); i++ {
		if rows[i].QuoteDate < rows[i-1].QuoteDate {
			return fmt.Errorf("BuildTermStructure: tenor order diverges from chronological order at t=%s (previous t=%s)", rows[i].QuoteDate, rows[i-1].QuoteDate)
		}
	}

	return nil
}
