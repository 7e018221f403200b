package optionmodels

// ReplicationLeg is one option position inside a replicating portfolio.
// Pi is the discretized log-payoff contribution at this strike, Lambda its
// finite-difference weight, Weight the net portfolio weight and Value the
// weight times the selected mark price.
type ReplicationLeg struct {
	QuoteDate  string
	ExpiryDate string
	Underlying float64
	Strike     float64
	Side       OptionSide
	Pi         float64
	Lambda     float64
	Weight     float64
	Center     bool
	Last       float64
	Bid        float64
	Ask        float64
	Mid        float64
	Mark       float64
	Value      float64
}
