package accounting

import (
	"math"
	"slices"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// BuildValueHistory reconstructs the portfolio's daily value from split-adjusted
// transactions and a shared daily close index.
//
// A transaction counts from the first history date on or after its own date,
// so entries on weekends land on the next trading day and entries before the
// index accumulate into its first date. Transactions after the last history
// date do not move quantities. A missing close is forward-filled from the
// symbol's last known close, or 0 before any.
//
// Leading points with a market value of exactly 0 are dropped.
func BuildValueHistory(txs []model.Transaction, history model.PriceHistory) []model.ValueHistoryPoint {
	if len(history.Dates) == 0 {
		return nil
	}

	ordered := slices.Clone(txs)
	slices.SortStableFunc(ordered, func(a, b model.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	lifetimeBuy, lifetimeSell := cashFlows(ordered)

	symbols := make([]string, 0, len(history.Closes))
	for symbol := range history.Closes {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)

	quantities := make(map[string]float64)
	lastClose := make(map[string]float64)
	var runningBuy, runningSell float64
	next := 0

	points := make([]model.ValueHistoryPoint, 0, len(history.Dates))
	for i, date := range history.Dates {
		for next < len(ordered) && !ordered[next].Date.After(date) {
			tx := ordered[next]
			quantities[tx.Symbol] += tx.SignedQuantity()
			switch tx.Type {
			case model.TransactionTypeBuy:
				runningBuy += tx.Quantity * tx.Price
			case model.TransactionTypeSell:
				runningSell += tx.Quantity * tx.Price
			}
			next++
		}

		for _, symbol := range symbols {
			if c, ok := history.Close(symbol, i); ok && !math.IsNaN(c) {
				lastClose[symbol] = c
			}
		}

		var marketValue float64
		for _, symbol := range heldSymbols(quantities) {
			marketValue += lastClose[symbol] * quantities[symbol]
		}

		net := runningBuy - runningSell
		points = append(points, model.ValueHistoryPoint{
			Date:            date,
			MarketValue:     marketValue,
			NetContribution: net,
			AdjustedValue:   marketValue - net + lifetimeBuy - lifetimeSell,
			Gain:            marketValue - net,
		})
	}

	first := 0
	for first < len(points) && points[first].MarketValue == 0 {
		first++
	}
	return points[first:]
}

// AppendLivePoint adds a synthetic point for today valued at live prices times
// the current open quantities. Nothing is appended when the last point is
// already dated today.
func AppendLivePoint(points []model.ValueHistoryPoint, txs []model.Transaction, positions []model.Position, quotes map[string]model.Quote, today time.Time) []model.ValueHistoryPoint {
	day := DayOf(today)
	if len(points) > 0 && !DayOf(points[len(points)-1].Date).Before(day) {
		return points
	}

	var marketValue float64
	for _, p := range positions {
		marketValue += quotes[p.Symbol].Price * p.Quantity
	}
	if len(points) == 0 && marketValue == 0 {
		return points
	}

	lifetimeBuy, lifetimeSell := cashFlows(txs)
	net := lifetimeBuy - lifetimeSell
	return append(points, model.ValueHistoryPoint{
		Date:            day,
		MarketValue:     marketValue,
		NetContribution: net,
		AdjustedValue:   marketValue,
		Gain:            marketValue - net,
	})
}

// TrimToWindow keeps the points dated on or after asOf minus days.
// A non-positive days keeps the whole series.
func TrimToWindow(points []model.ValueHistoryPoint, days int, asOf time.Time) []model.ValueHistoryPoint {
	if days <= 0 {
		return points
	}
	cutoff := DayOf(asOf).AddDate(0, 0, -days)
	idx, _ := slices.BinarySearchFunc(points, cutoff, func(p model.ValueHistoryPoint, t time.Time) int {
		return DayOf(p.Date).Compare(t)
	})
	return points[idx:]
}

// DayOf truncates t to midnight UTC of its calendar date.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// cashFlows returns the total BUY cost and SELL proceeds of txs. FEE moves no cash.
func cashFlows(txs []model.Transaction) (buy, sell float64) {
	for _, tx := range txs {
		switch tx.Type {
		case model.TransactionTypeBuy:
			buy += tx.Quantity * tx.Price
		case model.TransactionTypeSell:
			sell += tx.Quantity * tx.Price
		}
	}
	return buy, sell
}

func heldSymbols(quantities map[string]float64) []string {
	out := make([]string, 0, len(quantities))
	for symbol, q := range quantities {
		if q != 0 {
			out = append(out, symbol)
		}
	}
	slices.Sort(out)
	return out
}
