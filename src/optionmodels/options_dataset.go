package optionmodels

import (
	"math"
	"sort"
)

type PairKey struct {
	QuoteDate  string
	ExpiryDate string
}

// QuotePair is one distinct (quote date, expiry date) combination present in
// the dataset, carrying the tenor observed on its rows.
type QuotePair struct {
	QuoteDate  string
	ExpiryDate string
	DTE        float64
}

type quoteKey struct {
	QuoteDate  string
	ExpiryDate string
	Strike     float64
}

// RoundStrike normalizes strike precision so floating-point strikes join
// cleanly across quote dates.
func RoundStrike(k float64) float64 {
	if math.IsNaN(k) {
		return k
	}

	return math.Round(k*1e8) / 1e8
}

// OptionsDataset is the read-only, indexed option chain consumed by the
// replication engine and the repricer.
type OptionsDataset struct {
	Rows []*OptionQuoteRow

	quoteDates map[string]struct{}
	byPair     map[PairKey][]*OptionQuoteRow
	byQuoteKey map[quoteKey]*OptionQuoteRow
}

func NewOptionsDataset(rows []*OptionQuoteRow) *OptionsDataset {
	ds := &OptionsDataset{
		Rows:       rows,
		quoteDates: make(map[string]struct{}),
		byPair:     make(map[PairKey][]*OptionQuoteRow),
		byQuoteKey: make(map[quoteKey]*OptionQuoteRow),
	}

	for _, row := range rows {
		ds.quoteDates[row.QuoteDate] = struct{}{}

		pair := PairKey{QuoteDate: row.QuoteDate, ExpiryDate: row.ExpiryDate}
		ds.byPair[pair] = append(ds.byPair[pair], row)

		key := quoteKey{QuoteDate: row.QuoteDate, ExpiryDate: row.ExpiryDate, Strike: RoundStrike(row.Strike)}
		if _, found := ds.byQuoteKey[key]; !found {
			ds.byQuoteKey[key] = row
		}
	}

	return ds
}

func (ds *OptionsDataset) Len() int {
	return len(ds.Rows)
}

func (ds *OptionsDataset) HasQuoteDate(quoteDate string) bool {
	_, found := ds.quoteDates[quoteDate]
	return found
}

// QuoteDates returns the distinct quote dates in ascending order.
func (ds *OptionsDataset) QuoteDates() []string {
	dates := make([]string, 0, len(ds.quoteDates))
	for d := range ds.quoteDates {
		dates = append(dates, d)
	}

	sort.Strings(dates)

	return dates
}

func (ds *OptionsDataset) RowsForPair(quoteDate, expiryDate string) []*OptionQuoteRow {
	return ds.byPair[PairKey{QuoteDate: quoteDate, ExpiryDate: expiryDate}]
}

// LookupQuote joins on (quote date, expiry date, strike) with strike
// precision normalized to 8 decimal places.
func (ds *OptionsDataset) LookupQuote(quoteDate, expiryDate string, strike float64) (*OptionQuoteRow, bool) {
	row, found := ds.byQuoteKey[quoteKey{QuoteDate: quoteDate, ExpiryDate: expiryDate, Strike: RoundStrike(strike)}]
	return row, found
}

// UniquePairs enumerates the deduplicated (quote date, expiry date) pairs
// whose expiry matches expiryDate, excluding same-day expiry quotes. First
// appearance order is preserved.
func (ds *OptionsDataset) UniquePairs(expiryDate string) []QuotePair {
	var pairs []QuotePair
	seen := make(map[PairKey]struct{})

	for _, row := range ds.Rows {
		if row.ExpiryDate != expiryDate || row.QuoteDate == row.ExpiryDate {
			continue
		}

		key := PairKey{QuoteDate: row.QuoteDate, ExpiryDate: row.ExpiryDate}
		if _, found := seen[key]; found {
			continue
		}

		seen[key] = struct{}{}
		pairs = append(pairs, QuotePair{QuoteDate: row.QuoteDate, ExpiryDate: row.ExpiryDate, DTE: row.DTE})
	}

	return pairs
}

// FilterQuoteDates returns a new dataset restricted to quote dates within
// [start, end]. Empty bounds are open-ended.
func (ds *OptionsDataset) FilterQuoteDates(start, end string) *OptionsDataset {
	var rows []*OptionQuoteRow
	for _, row := range ds.Rows {
		if start != "" && row.QuoteDate < start {
			continue
		}

		if end != "" && row.QuoteDate > end {
			continue
		}

		rows = append(rows, row)
	}

	return NewOptionsDataset(rows)
}

// LimitQuoteDates keeps only the first n quote dates in ascending order.
func (ds *OptionsDataset) LimitQuoteDates(n int) *OptionsDataset {
	if n <= 0 {
		return ds
	}

	dates := ds.QuoteDates()
	if len(dates) > n {
		dates = dates[:n]
	}

	keep := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		keep[d] = struct{}{}
	}

	var rows []*OptionQuoteRow
	for _, row := range ds.Rows {
		if _, found := keep[row.QuoteDate]; found {
			rows = append(rows, row)
		}
	}

	return NewOptionsDataset(rows)
}
