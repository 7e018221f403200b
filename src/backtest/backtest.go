package backtest

import (
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yzhao-quant/varswap/src/optionmodels"
	"github.com/yzhao-quant/varswap/src/replication"
	"github.com/yzhao-quant/varswap/src/signals"
	"github.com/yzhao-quant/varswap/src/utils"
)

// Run executes the end-to-end backtest for one expiry:
//  1. build the term structure
//  2. compute the regime-switching signal
//  3. shift entries one row forward in time
//  4. reprice each entry portfolio daysToShift days later
//  5. derive pct change net of fee and the two realized-return columns
func Run(ds *optionmodels.OptionsDataset, args optionmodels.BacktestRunArgs) ([]optionmodels.BacktestRow, error) {
	start := time.Now()
	log.Infof("Backtest: start | expiry=%s | rows=%d", args.Expiry, ds.Len())

	replicator, err := replication.NewVarianceReplicator(args.PriceMode)
	if err != nil {
		return nil, fmt.Errorf("Backtest: %v", err)
	}

	log.Info("Backtest: step 1/4 build term structure")
	tsRows, err := BuildTermStructure(ds, args.Expiry, replicator)
	if err != nil {
		return nil, fmt.Errorf("Backtest: %v", err)
	}
	log.Infof("Backtest: term structure built | rows=%d", len(tsRows))

	log.Info("Backtest: step 2/4 compute signals")
	signals.Apply(tsRows, signals.Config{
		EMASpan:             args.EMASpan,
		StdSpan:             args.StdSpan,
		VolatilitySpan:      args.VolatilitySpan,
		BBSwitch:            args.BBSwitch,
		VolatilityBenchmark: args.VolatilityBenchmark,
	})
	log.Info("Backtest: signals done")

	log.Infof("Backtest: step 3/4 entry shift + repricing exits (days_to_shift=%d)", args.DaysToShift)

	rows := make([]optionmodels.BacktestRow, len(tsRows))
	for i := range tsRows {
		rows[i] = optionmodels.BacktestRow{
			TermStructureRow: tsRows[i],
			VarianceEntry:    math.NaN(),
			VarianceExit:     math.NaN(),
			PctChange:        math.NaN(),
		}
	}

	// Entry occurs one row after the signal is observed: each row takes the
	// next row's date, variance and portfolio as its entry fields.
	for i := range rows {
		if i+1 < len(rows) {
			rows[i].EntryDate = rows[i+1].QuoteDate
			rows[i].VarianceEntry = rows[i+1].Variance
			rows[i].EntryLegs = rows[i+1].Legs
			rows[i].NumLegsEntry = len(rows[i+1].Legs)
		}
	}

	maxValidIndex := len(rows) - args.DaysToShift
	if maxValidIndex < 0 {
		maxValidIndex = 0
	}

	progress := utils.NewProgressLogger("RepriceExit", maxValidIndex, 50)
	for idx := 0; idx < maxValidIndex; idx++ {
		progress.Log(idx + 1)

		if len(rows[idx].EntryLegs) == 0 {
			continue
		}

		rows[idx].ExitLegs = replication.RepriceExit(rows[idx].EntryLegs, ds, args.DaysToShift)
	}

	log.Info("Backtest: repricing done")

	for i := range rows {
		exitLegs := rows[i].ExitLegs
		rows[i].NumLegsExit = len(exitLegs)
		if len(exitLegs) == 0 {
			continue
		}

		rows[i].ExitDate = exitLegs[0].QuoteDate

		sum := 0.0
		for _, leg := range exitLegs {
			sum += leg.Value
		}
		rows[i].VarianceExit = sum
	}

	log.Info("Backtest: step 4/4 compute pnl columns")

	for i := range rows {
		rows[i].PctChange = rows[i].VarianceExit/rows[i].VarianceEntry*(1-args.TradingFee) - 1
		rows[i].ProfitEntryT1ExitT2 = rows[i].PctChange * float64(rows[i].Signal)

		if i == 0 {
			rows[i].ProfitEntryT0ExitT1 = math.NaN()
		} else {
			rows[i].ProfitEntryT0ExitT1 = rows[i-1].PctChange * float64(rows[i].Signal)
		}
	}

	log.Infof("Backtest: done | elapsed=%.2fs", time.Since(start).Seconds())

	return rows, nil
}
