package service

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// Monetary API output is rounded to cents. Ratios keep six places.
const (
	moneyPlaces = 2
	ratioPlaces = 6
)

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func cents(v float64) float64 {
	return round(v, moneyPlaces)
}

func roundRow(r model.PositionRow) model.PositionRow {
	r.Price = round(r.Price, 4)
	r.PreviousClose = round(r.PreviousClose, 4)
	r.MarketValue = cents(r.MarketValue)
	r.DailyGain = cents(r.DailyGain)
	r.DailyGainPct = round(r.DailyGainPct, ratioPlaces)
	r.CostBasis = cents(r.CostBasis)
	r.TotalCostBasis = cents(r.TotalCostBasis)
	r.UnrealizedGain = cents(r.UnrealizedGain)
	r.RealizedGain = cents(r.RealizedGain)
	r.TotalGain = cents(r.TotalGain)
	r.TotalGainPct = round(r.TotalGainPct, ratioPlaces)
	return r
}

func roundSummary(s model.PortfolioSummary) model.PortfolioSummary {
	s.MarketValue = cents(s.MarketValue)
	s.PreviousValue = cents(s.PreviousValue)
	s.DailyGain = cents(s.DailyGain)
	s.DailyGainPct = round(s.DailyGainPct, ratioPlaces)
	s.CostBasis = cents(s.CostBasis)
	s.TotalCostBasis = cents(s.TotalCostBasis)
	s.UnrealizedGain = cents(s.UnrealizedGain)
	s.RealizedGain = cents(s.RealizedGain)
	s.TotalGain = cents(s.TotalGain)
	s.TotalGainPct = round(s.TotalGainPct, ratioPlaces)
	return s
}

func roundPoint(p model.ValueHistoryPoint) model.ValueHistoryPoint {
	p.MarketValue = cents(p.MarketValue)
	p.NetContribution = cents(p.NetContribution)
	p.AdjustedValue = cents(p.AdjustedValue)
	p.Gain = cents(p.Gain)
	return p
}
