package optionmodels

import (
	"math"
	"strconv"
	"strings"
)

type OptionQuoteRowDTO struct {
	QuoteDate      string `csv:"QUOTE_DATE"`
	ExpiryDate     string `csv:"EXPIRE_DATE"`
	UnderlyingLast string `csv:"UNDERLYING_LAST"`
	Strike         string `csv:"STRIKE"`
	DTE            string `csv:"DTE"`
	PutLast        string `csv:"P_LAST"`
	PutBid         string `csv:"P_BID"`
	PutAsk         string `csv:"P_ASK"`
	CallLast       string `csv:"C_LAST"`
	CallBid        string `csv:"C_BID"`
	CallAsk        string `csv:"C_ASK"`
}

// coerceFloat mirrors a lenient numeric cast: anything that does not parse
// becomes NaN rather than an error.
func coerceFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}

	return v
}

func (dto *OptionQuoteRowDTO) ToModel() *OptionQuoteRow {
	row := &OptionQuoteRow{
		QuoteDate:  strings.TrimSpace(dto.QuoteDate),
		ExpiryDate: strings.TrimSpace(dto.ExpiryDate),
		Underlying: coerceFloat(dto.UnderlyingLast),
		Strike:     coerceFloat(dto.Strike),
		DTE:        coerceFloat(dto.DTE),
		PutLast:    coerceFloat(dto.PutLast),
		PutBid:     coerceFloat(dto.PutBid),
		PutAsk:     coerceFloat(dto.PutAsk),
		CallLast:   coerceFloat(dto.CallLast),
		CallBid:    coerceFloat(dto.CallBid),
		CallAsk:    coerceFloat(dto.CallAsk),
	}

	row.PutMid = (row.PutBid + row.PutAsk) / 2
	row.CallMid = (row.CallBid + row.CallAsk) / 2

	return row
}
