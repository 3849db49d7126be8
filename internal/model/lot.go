package model

import "time"

// SplitEvent is a single stock split for a symbol. A Ratio of 2 means every
// share held before Date became two shares.
type SplitEvent struct {
	Symbol string    `json:"symbol" msgpack:"symbol"`
	Date   time.Time `json:"date" msgpack:"date"`
	Ratio  float64   `json:"ratio" msgpack:"ratio"`
}

// Lot is an open tranche of shares acquired by one BUY transaction.
// Quantity is what remains after earlier SELL/FEE consumption.
type Lot struct {
	Symbol        string    `json:"symbol"`
	TransactionID string    `json:"transactionId"`
	Date          time.Time `json:"date"`
	Quantity      float64   `json:"quantity"`
	UnitCost      float64   `json:"unitCost"`
}

// CostBasis returns the remaining quantity valued at the acquisition price.
func (l Lot) CostBasis() float64 {
	return l.Quantity * l.UnitCost
}

// RealizedRecord captures the portion of one lot closed by a SELL or FEE.
// Proceeds are zero for FEE records.
type RealizedRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Symbol        string    `json:"symbol"`
	TransactionID string    `json:"transactionId"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	Quantity      float64   `json:"quantity"`
	CostBasis     float64   `json:"costBasis"`
	Proceeds      float64   `json:"proceeds"`
}

// GainLoss returns proceeds minus the cost of the shares closed.
func (r RealizedRecord) GainLoss() float64 {
	return r.Proceeds - r.CostBasis
}

// Book is the result of matching one symbol's transactions: the lots still
// open, oldest first, and every realized record in transaction order.
type Book struct {
	Symbol   string
	Open     []Lot
	Realized []RealizedRecord
}
