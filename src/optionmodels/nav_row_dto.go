package optionmodels

type NavRowDTO struct {
	QuoteDate string  `csv:"t"`
	NAV       float64 `csv:"nav"`
}
