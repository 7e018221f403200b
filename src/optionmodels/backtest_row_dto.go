package optionmodels

type BacktestRowDTO struct {
	QuoteDate           string      `csv:"t"`
	ExpiryDate          string      `csv:"T"`
	DTE                 float64     `csv:"DTE"`
	Vol                 float64     `csv:"vol_mid"`
	Variance            float64     `csv:"variance_mid"`
	NumLegs             int         `csv:"data_length_mid"`
	Price               float64     `csv:"price"`
	EMA                 float64     `csv:"EMA"`
	Std                 float64     `csv:"std"`
	UpperBand           float64     `csv:"upper_band"`
	LowerBand           float64     `csv:"lower_band"`
	VolDiff             float64     `csv:"vol_diff"`
	VolEMA              float64     `csv:"vol_EMA"`
	Switch              SignalState `csv:"switch"`
	Signal              SignalState `csv:"signal2"`
	EntryDate           string      `csv:"t_entry"`
	VarianceEntry       float64     `csv:"variance_entry"`
	NumLegsEntry        int         `csv:"no_O_entry"`
	ExitDate            string      `csv:"t_exit"`
	VarianceExit        float64     `csv:"variance_exit"`
	NumLegsExit         int         `csv:"no_O_exit"`
	PctChange           float64     `csv:"pct_change"`
	ProfitEntryT1ExitT2 float64     `csv:"profit_entry@t1_exit@t2"`
	ProfitEntryT0ExitT1 float64     `csv:"profit_entry@t0_exit@t1"`
}

func (r *BacktestRow) ToDTO() *BacktestRowDTO {
	return &BacktestRowDTO{
		QuoteDate:           r.QuoteDate,
		ExpiryDate:          r.ExpiryDate,
		DTE:                 r.DTE,
		Vol:                 r.Vol,
		Variance:            r.Variance,
		NumLegs:             r.NumLegs,
		Price:               r.Price,
		EMA:                 r.EMA,
		Std:                 r.Std,
		UpperBand:           r.UpperBand,
		LowerBand:           r.LowerBand,
		VolDiff:             r.VolDiff,
		VolEMA:              r.VolEMA,
		Switch:              r.Switch,
		Signal:              r.Signal,
		EntryDate:           r.EntryDate,
		VarianceEntry:       r.VarianceEntry,
		NumLegsEntry:        r.NumLegsEntry,
		ExitDate:            r.ExitDate,
		VarianceExit:        r.VarianceExit,
		NumLegsExit:         r.NumLegsExit,
		PctChange:           r.PctChange,
		ProfitEntryT1ExitT2: r.ProfitEntryT1ExitT2,
		ProfitEntryT0ExitT1: r.ProfitEntryT0ExitT1,
	}
}
