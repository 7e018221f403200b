package optionmodels

import "fmt"

// PriceMode selects which quote is used to mark a replication leg.
type PriceMode string

const (
	PriceModeLast PriceMode = "last"
	PriceModeBid  PriceMode = "bid"
	PriceModeAsk  PriceMode = "ask"
	PriceModeMid  PriceMode = "mid"

	// PriceModeLastAdj prefers the last trade but falls back to the mid
	// when the last is missing or exactly zero.
	PriceModeLastAdj PriceMode = "last_adj"
)

func PriceModes() []PriceMode {
	return []PriceMode{PriceModeLast, PriceModeBid, PriceModeAsk, PriceModeMid, PriceModeLastAdj}
}

func (m PriceMode) Validate() error {
	switch m {
	case PriceModeLast, PriceModeBid, PriceModeAsk, PriceModeMid, PriceModeLastAdj:
		return nil
	default:
		return fmt.Errorf("PriceMode: Validate: invalid price mode: %s, use one of %v", m, PriceModes())
	}
}
