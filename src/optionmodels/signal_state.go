package optionmodels

// SignalState is the regime carried across the term-structure sequence.
type SignalState int

const (
	SignalShort SignalState = -1
	SignalFlat  SignalState = 0
	SignalLong  SignalState = 1
)

func (s SignalState) String() string {
	switch s {
	case SignalShort:
		return "short"
	case SignalLong:
		return "long"
	default:
		return "flat"
	}
}
