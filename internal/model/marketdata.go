package model

import "time"

// Quote is the latest price for a symbol.
type Quote struct {
	Symbol        string    `json:"symbol" msgpack:"symbol"`
	Price         float64   `json:"price" msgpack:"price"`
	PreviousClose float64   `json:"previousClose" msgpack:"previous_close"`
	Currency      string    `json:"currency,omitempty" msgpack:"currency"`
	AsOf          time.Time `json:"asOf" msgpack:"as_of"`
}

// SymbolInfo is everything the service caches about a symbol between refreshes.
type SymbolInfo struct {
	Symbol    string             `json:"symbol" msgpack:"symbol"`
	Name      string             `json:"name" msgpack:"name"`
	QuoteType string             `json:"quoteType" msgpack:"quote_type"`
	Quote     Quote              `json:"quote" msgpack:"quote"`
	Splits    []SplitEvent       `json:"splits" msgpack:"splits"`
	Sectors   map[string]float64 `json:"sectors" msgpack:"sectors"`
	Assets    map[string]float64 `json:"assets" msgpack:"assets"`
	FetchedAt time.Time          `json:"fetchedAt" msgpack:"fetched_at"`
}
