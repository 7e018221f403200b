package optionmodels

// OptionQuoteRow is one (quote date, expiry date, strike) observation from
// the options chain. Price fields that could not be coerced to a number are
// NaN. Rows are immutable once loaded into an OptionsDataset.
type OptionQuoteRow struct {
	QuoteDate  string
	ExpiryDate string
	Underlying float64
	Strike     float64
	DTE        float64
	PutLast    float64
	PutBid     float64
	PutAsk     float64
	PutMid     float64
	CallLast   float64
	CallBid    float64
	CallAsk    float64
	CallMid    float64
}
