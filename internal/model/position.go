package model

import "time"

// Position is the persisted per-symbol state derived from one matching pass.
// It is replaced wholesale on every recompute, never patched.
type Position struct {
	UserID            string    `json:"userId"`
	Symbol            string    `json:"symbol"`
	Quantity          float64   `json:"quantity"`
	CostBasis         float64   `json:"costBasis"`
	RealizedCostBasis float64   `json:"realizedCostBasis"`
	RealizedProceeds  float64   `json:"realizedProceeds"`
	UpdatedAt         time.Time `json:"updatedAt,omitempty"`
}

// PositionRow is a position valued at the current quote.
// All monetary values are rounded to two decimal places by the service layer.
type PositionRow struct {
	Symbol         string  `json:"symbol"`
	Quantity       float64 `json:"quantity"`
	Price          float64 `json:"price"`
	PreviousClose  float64 `json:"previousClose"`
	MarketValue    float64 `json:"marketValue"`
	DailyGain      float64 `json:"dailyGain"`
	DailyGainPct   float64 `json:"dailyGainPct"`
	CostBasis      float64 `json:"costBasis"`      // Cost of the shares still held
	TotalCostBasis float64 `json:"totalCostBasis"` // Open plus realized cost
	UnrealizedGain float64 `json:"unrealizedGain"`
	RealizedGain   float64 `json:"realizedGain"`
	TotalGain      float64 `json:"totalGain"`
	TotalGainPct   float64 `json:"totalGainPct"`
}

// PortfolioSummary aggregates position rows into portfolio-level figures.
type PortfolioSummary struct {
	MarketValue    float64 `json:"marketValue"`
	PreviousValue  float64 `json:"previousValue"`
	DailyGain      float64 `json:"dailyGain"`
	DailyGainPct   float64 `json:"dailyGainPct"`
	CostBasis      float64 `json:"costBasis"`
	TotalCostBasis float64 `json:"totalCostBasis"`
	UnrealizedGain float64 `json:"unrealizedGain"`
	RealizedGain   float64 `json:"realizedGain"`
	TotalGain      float64 `json:"totalGain"`
	TotalGainPct   float64 `json:"totalGainPct"`
	Positions      int     `json:"positions"`
}
