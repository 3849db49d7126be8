package model

import "time"

// User owns a ledger of transactions. Authentication is handled elsewhere.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
