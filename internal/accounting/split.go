package accounting

import (
	"math"
	"slices"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// SplitMultiplier returns the cumulative product of every split ratio whose
// effective date is strictly later than the transaction date.
// Ratios that are not positive finite numbers are skipped, so an empty or
// unreadable split series yields 1.
func SplitMultiplier(tx model.Transaction, splits []model.SplitEvent) float64 {
	multiplier := 1.0
	for _, s := range splits {
		if s.Ratio <= 0 || math.IsNaN(s.Ratio) || math.IsInf(s.Ratio, 0) {
			continue
		}
		if s.Date.After(tx.Date) {
			multiplier *= s.Ratio
		}
	}
	return multiplier
}

// AdjustForSplits restates a transaction in post-split shares.
//
// Parameters:
//   - tx: the transaction as entered
//   - splits: the full split series for tx.Symbol, in any order
//
// Returns the adjusted quantity and unit price. Quantity is multiplied and price
// divided by SplitMultiplier, so tx.Quantity*tx.Price is preserved.
func AdjustForSplits(tx model.Transaction, splits []model.SplitEvent) (quantity, price float64) {
	m := SplitMultiplier(tx, splits)
	return tx.Quantity * m, tx.Price / m
}

// AdjustTransactions applies AdjustForSplits to every transaction.
// The input slice is not modified.
//
// Symbols absent from splitsBySymbol are left as entered and returned in
// missing (sorted, without duplicates) so the caller can log them; missing
// split data never fails the pass.
func AdjustTransactions(txs []model.Transaction, splitsBySymbol map[string][]model.SplitEvent) (adjusted []model.Transaction, missing []string) {
	adjusted = make([]model.Transaction, len(txs))
	seen := make(map[string]bool)
	for i, tx := range txs {
		splits, ok := splitsBySymbol[tx.Symbol]
		if !ok && !seen[tx.Symbol] {
			seen[tx.Symbol] = true
			missing = append(missing, tx.Symbol)
		}
		tx.Quantity, tx.Price = AdjustForSplits(tx, splits)
		adjusted[i] = tx
	}
	slices.Sort(missing)
	return adjusted, missing
}
