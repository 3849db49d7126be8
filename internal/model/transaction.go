package model

import "time"

// Transaction types accepted by the ledger.
const (
	TransactionTypeBuy  = "BUY"
	TransactionTypeSell = "SELL"
	TransactionTypeFee  = "FEE"
)

// Transaction represents a single BUY, SELL or FEE entry for a symbol in a user's ledger.
// Quantity is always stored as a positive magnitude; the direction comes from Type.
type Transaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      time.Time `json:"date"`
	Symbol    string    `json:"symbol"`
	Type      string    `json:"type"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// SignedQuantity returns the quantity with its ledger direction applied:
// positive for BUY, negative for SELL and FEE.
func (t Transaction) SignedQuantity() float64 {
	if t.Type == TransactionTypeBuy {
		return t.Quantity
	}
	return -t.Quantity
}

// ConsumesShares reports whether the transaction closes open lots.
func (t Transaction) ConsumesShares() bool {
	return t.Type == TransactionTypeSell || t.Type == TransactionTypeFee
}
