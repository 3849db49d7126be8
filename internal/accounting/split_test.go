package accounting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

func TestAdjustForSplits(t *testing.T) {
	splits := []model.SplitEvent{{Symbol: "AAPL", Date: day(t, "2020-08-31"), Ratio: 4}}

	tests := []struct {
		name      string
		tx        model.Transaction
		splits    []model.SplitEvent
		wantQty   float64
		wantPrice float64
	}{
		{
			name:      "no splits is identity",
			tx:        buy(t, "1", "2020-01-02", "AAPL", 10, 300),
			splits:    nil,
			wantQty:   10,
			wantPrice: 300,
		},
		{
			name:      "transaction before split is restated",
			tx:        buy(t, "1", "2020-01-02", "AAPL", 10, 300),
			splits:    splits,
			wantQty:   40,
			wantPrice: 75,
		},
		{
			name:      "transaction after split is untouched",
			tx:        buy(t, "1", "2020-09-01", "AAPL", 10, 120),
			splits:    splits,
			wantQty:   10,
			wantPrice: 120,
		},
		{
			name:      "transaction on split date is untouched",
			tx:        buy(t, "1", "2020-08-31", "AAPL", 10, 120),
			splits:    splits,
			wantQty:   10,
			wantPrice: 120,
		},
		{
			name: "later splits compound",
			tx:   buy(t, "1", "2010-01-04", "AAPL", 1, 2800),
			splits: []model.SplitEvent{
				{Date: day(t, "2014-06-09"), Ratio: 7},
				{Date: day(t, "2020-08-31"), Ratio: 4},
			},
			wantQty:   28,
			wantPrice: 100,
		},
		{
			name: "unreadable ratios are skipped",
			tx:   buy(t, "1", "2010-01-04", "AAPL", 5, 10),
			splits: []model.SplitEvent{
				{Date: day(t, "2014-06-09"), Ratio: 0},
				{Date: day(t, "2015-06-09"), Ratio: -2},
				{Date: day(t, "2016-06-09"), Ratio: math.NaN()},
			},
			wantQty:   5,
			wantPrice: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, price := AdjustForSplits(tt.tx, tt.splits)
			assert.InDelta(t, tt.wantQty, qty, 1e-9)
			assert.InDelta(t, tt.wantPrice, price, 1e-9)
			assert.InDelta(t, tt.tx.Quantity*tt.tx.Price, qty*price, 1e-6, "total cost must be preserved")
		})
	}
}

func TestAdjustTransactions(t *testing.T) {
	txs := []model.Transaction{
		buy(t, "1", "2020-01-02", "AAPL", 10, 300),
		buy(t, "2", "2020-01-02", "MSFT", 3, 150),
		buy(t, "3", "2020-02-03", "MSFT", 1, 160),
	}
	splits := map[string][]model.SplitEvent{
		"AAPL": {{Symbol: "AAPL", Date: day(t, "2020-08-31"), Ratio: 4}},
	}

	adjusted, missing := AdjustTransactions(txs, splits)

	assert.Equal(t, []string{"MSFT"}, missing)
	assert.Equal(t, 40.0, adjusted[0].Quantity)
	assert.Equal(t, 75.0, adjusted[0].Price)
	assert.Equal(t, 3.0, adjusted[1].Quantity)
	assert.Equal(t, 10.0, txs[0].Quantity, "input must not be modified")
}
