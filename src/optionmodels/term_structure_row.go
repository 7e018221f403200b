package optionmodels

// TermStructureRow is one quote date's replication output for the target
// expiry. Price aliases Vol; it is the series the signal generator and the
// downstream statistics operate on. The EMA through Signal fields are
// populated by the signal generator.
type TermStructureRow struct {
	QuoteDate  string
	ExpiryDate string
	DTE        float64
	Vol        float64
	Variance   float64
	NumLegs    int
	Legs       []ReplicationLeg
	Price      float64

	EMA       float64
	Std       float64
	UpperBand float64
	LowerBand float64
	VolDiff   float64
	VolEMA    float64
	Switch    SignalState
	Signal    SignalState
}
