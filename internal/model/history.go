package model

import "time"

// PriceHistory holds daily closes for a set of symbols on a shared, ascending
// date index. A missing close is stored as NaN.
type PriceHistory struct {
	Dates  []time.Time
	Closes map[string][]float64
}

// Close returns the close for symbol at index i. The second result is false
// when the symbol has no series or i is out of range.
func (h PriceHistory) Close(symbol string, i int) (float64, bool) {
	series, ok := h.Closes[symbol]
	if !ok || i < 0 || i >= len(series) {
		return 0, false
	}
	return series[i], true
}

// DatedValue is one point of a generic daily series.
type DatedValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ValueHistoryPoint is the portfolio's valuation on one trading day.
type ValueHistoryPoint struct {
	Date            time.Time `json:"date"`
	MarketValue     float64   `json:"marketValue"`
	NetContribution float64   `json:"netContribution"` // Buy cost minus sell proceeds up to Date
	AdjustedValue   float64   `json:"adjustedValue"`
	Gain            float64   `json:"gain"` // MarketValue minus NetContribution
}

// Values returns the market value curve as a DatedValue series.
func Values(points []ValueHistoryPoint) []DatedValue {
	out := make([]DatedValue, len(points))
	for i, p := range points {
		out[i] = DatedValue{Date: p.Date, Value: p.MarketValue}
	}
	return out
}

// AdjustedValues returns the cash-flow adjusted curve as a DatedValue series.
func AdjustedValues(points []ValueHistoryPoint) []DatedValue {
	out := make([]DatedValue, len(points))
	for i, p := range points {
		out[i] = DatedValue{Date: p.Date, Value: p.AdjustedValue}
	}
	return out
}
