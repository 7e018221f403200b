package optionmodels

// BacktestRow extends a TermStructureRow with the shifted entry fields, the
// repriced exit fields and the realized return columns. Rows are created
// once per run and never mutated after the orchestrator completes.
type BacktestRow struct {
	TermStructureRow

	EntryDate     string
	VarianceEntry float64
	EntryLegs     []ReplicationLeg
	NumLegsEntry  int

	ExitDate     string
	VarianceExit float64
	ExitLegs     []ReplicationLeg
	NumLegsExit  int

	PctChange float64

	// ProfitEntryT1ExitT2 pairs each row's pct change with that row's
	// signal; ProfitEntryT0ExitT1 pairs the previous row's pct change with
	// the current row's signal.
	ProfitEntryT1ExitT2 float64
	ProfitEntryT0ExitT1 float64
}
