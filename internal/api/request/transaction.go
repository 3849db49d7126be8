package request

// CreateTransactionRequest represents the request body for entering a transaction.
// Quantity and Price are pointers so a missing value can be told apart from zero.
type CreateTransactionRequest struct {
	Date     string   `json:"date"`
	Symbol   string   `json:"symbol"`
	Type     string   `json:"type"`
	Quantity *float64 `json:"quantity"`
	Price    *float64 `json:"price"`
}

// UpdateTransactionRequest represents the request body for editing a transaction.
// Only the fields that are present are changed.
type UpdateTransactionRequest struct {
	Date     *string  `json:"date,omitempty"`
	Symbol   *string  `json:"symbol,omitempty"`
	Type     *string  `json:"type,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}
