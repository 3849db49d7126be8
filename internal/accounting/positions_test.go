package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

func TestBuildPositionRows(t *testing.T) {
	positions := []model.Position{
		{Symbol: "AAPL", Quantity: 5, CostBasis: 750, RealizedCostBasis: 1750, RealizedProceeds: 3000},
		{Symbol: "MSFT", Quantity: 2, CostBasis: 600},
	}
	quotes := map[string]model.Quote{
		"AAPL": {Symbol: "AAPL", Price: 210, PreviousClose: 200},
		"MSFT": {Symbol: "MSFT", Price: 400, PreviousClose: 410},
	}

	rows := BuildPositionRows(positions, quotes)
	require.Len(t, rows, 2)

	aapl, msft := rows[0], rows[1]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.InDelta(t, 1050, aapl.MarketValue, 1e-9)
	assert.InDelta(t, 50, aapl.DailyGain, 1e-9)
	assert.InDelta(t, 0.05, aapl.DailyGainPct, 1e-9)
	assert.InDelta(t, 300, aapl.UnrealizedGain, 1e-9)
	assert.InDelta(t, 1250, aapl.RealizedGain, 1e-9)
	assert.InDelta(t, 1550, aapl.TotalGain, 1e-9)
	assert.InDelta(t, 2500, aapl.TotalCostBasis, 1e-9)
	assert.InDelta(t, 0.62, aapl.TotalGainPct, 1e-9)

	assert.Equal(t, "MSFT", msft.Symbol)
	assert.InDelta(t, 800, msft.MarketValue, 1e-9)
	assert.InDelta(t, -20, msft.DailyGain, 1e-9)
	assert.InDelta(t, 200, msft.UnrealizedGain, 1e-9)
}

func TestBuildPositionRows_ZeroDenominators(t *testing.T) {
	positions := []model.Position{{Symbol: "GIFT", Quantity: 3}}

	rows := BuildPositionRows(positions, map[string]model.Quote{})

	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].MarketValue, "missing quote values the position at 0")
	assert.Zero(t, rows[0].TotalGainPct)
	assert.Zero(t, rows[0].DailyGainPct)
}

func TestBuildPositionRows_TiesBrokenBySymbol(t *testing.T) {
	positions := []model.Position{
		{Symbol: "ZZZ", Quantity: 1},
		{Symbol: "AAA", Quantity: 1},
		{Symbol: "MMM", Quantity: 2},
	}
	quotes := map[string]model.Quote{
		"ZZZ": {Price: 10}, "AAA": {Price: 10}, "MMM": {Price: 10},
	}

	rows := BuildPositionRows(positions, quotes)

	got := []string{rows[0].Symbol, rows[1].Symbol, rows[2].Symbol}
	assert.Equal(t, []string{"MMM", "AAA", "ZZZ"}, got)
}

func TestSummary(t *testing.T) {
	rows := []model.PositionRow{
		{Symbol: "A", Quantity: 1, PreviousClose: 90, MarketValue: 100, CostBasis: 80, TotalCostBasis: 80, UnrealizedGain: 20},
		{Symbol: "B", Quantity: 0, MarketValue: 0, TotalCostBasis: 50, RealizedGain: 10},
	}

	s := Summary(rows)

	assert.InDelta(t, 100, s.MarketValue, 1e-9)
	assert.InDelta(t, 90, s.PreviousValue, 1e-9)
	assert.InDelta(t, 10, s.DailyGain, 1e-9)
	assert.InDelta(t, 10.0/90.0, s.DailyGainPct, 1e-9)
	assert.InDelta(t, 30, s.TotalGain, 1e-9)
	assert.InDelta(t, 30.0/130.0, s.TotalGainPct, 1e-9)
	assert.Equal(t, 1, s.Positions)

	assert.Zero(t, Summary(nil).TotalGainPct)
}

func TestRealized_SortedAndStamped(t *testing.T) {
	books, err := MatchLots([]model.Transaction{
		buy(t, "b1", "2024-01-02", "MSFT", 2, 100),
		buy(t, "b2", "2024-01-02", "AAPL", 2, 100),
		sell(t, "s1", "2024-02-01", "MSFT", 1, 110),
		sell(t, "s2", "2024-01-15", "AAPL", 1, 90),
	})
	require.NoError(t, err)

	records := Realized("u1", books)

	require.Len(t, records, 2)
	assert.Equal(t, "s2", records[0].TransactionID)
	assert.Equal(t, "u1", records[0].UserID)
	assert.InDelta(t, -10, records[0].GainLoss(), 1e-9)
	assert.Equal(t, "s1", records[1].TransactionID)
}
