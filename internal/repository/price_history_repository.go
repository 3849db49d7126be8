package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// PriceHistoryRepository stores daily closes per symbol.
type PriceHistoryRepository struct {
	db *sql.DB
}

// NewPriceHistoryRepository creates a new PriceHistoryRepository.
func NewPriceHistoryRepository(db *sql.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// Replace swaps the stored closes of a symbol dated on or after from with the
// given series. Older closes are kept, so a shorter re-fetch never loses history
// another user still needs.
func (r *PriceHistoryRepository) Replace(ctx context.Context, symbol string, from time.Time, closes []model.DatedValue) error {
	return RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM price_history WHERE symbol = ? AND date >= ?`, symbol, from.Format(dateLayout))
		if err != nil {
			return fmt.Errorf("failed to clear price_history: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO price_history (symbol, date, close) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare price_history insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range closes {
			if math.IsNaN(c.Value) {
				continue
			}
			if _, err := stmt.ExecContext(ctx, symbol, c.Date.Format(dateLayout), c.Value); err != nil {
				return fmt.Errorf("failed to insert price_history: %w", err)
			}
		}
		return nil
	})
}

// EarliestDate returns the first stored date for a symbol, or the zero time when none.
func (r *PriceHistoryRepository) EarliestDate(ctx context.Context, symbol string) (time.Time, error) {
	var dateStr sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT MIN(date) FROM price_history WHERE symbol = ?`, symbol).Scan(&dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query price_history: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, nil
	}
	return ParseTime(dateStr.String)
}

// StreamCloses calls fn for every stored close of the given symbols on or after
// start, ordered by date then symbol. Streaming keeps long histories out of memory
// until the caller decides how to shape them.
func (r *PriceHistoryRepository) StreamCloses(
	ctx context.Context,
	symbols []string,
	start time.Time,
	fn func(symbol string, date time.Time, close float64) error,
) error {
	if len(symbols) == 0 {
		return nil
	}

	args := make([]any, 0, len(symbols)+1)
	for _, s := range symbols {
		args = append(args, s)
	}
	args = append(args, start.Format(dateLayout))

	query := `
		SELECT symbol, date, close
		FROM price_history
		WHERE symbol IN (` + placeholders(len(symbols)) + `)
		AND date >= ?
		ORDER BY date ASC, symbol ASC
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query price_history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol, dateStr string
		var c float64
		if err := rows.Scan(&symbol, &dateStr, &c); err != nil {
			return fmt.Errorf("failed to scan price_history: %w", err)
		}
		date, err := ParseTime(dateStr)
		if err != nil {
			return err
		}
		if err := fn(symbol, date, c); err != nil {
			return err
		}
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating price_history: %w", err)
	}
	return nil
}

// Load builds a PriceHistory table for the symbols from start onward.
// The date index is the union of all stored dates; a symbol without a close
// on some date holds NaN there.
func (r *PriceHistoryRepository) Load(ctx context.Context, symbols []string, start time.Time) (model.PriceHistory, error) {
	h := model.PriceHistory{Closes: make(map[string][]float64, len(symbols))}
	for _, s := range symbols {
		h.Closes[s] = nil
	}

	err := r.StreamCloses(ctx, symbols, start, func(symbol string, date time.Time, c float64) error {
		if n := len(h.Dates); n == 0 || !h.Dates[n-1].Equal(date) {
			h.Dates = append(h.Dates, date)
			for s := range h.Closes {
				h.Closes[s] = append(h.Closes[s], math.NaN())
			}
		}
		h.Closes[symbol][len(h.Dates)-1] = c
		return nil
	})
	if err != nil {
		return model.PriceHistory{}, err
	}
	return h, nil
}

// Series returns one symbol's stored closes from start onward.
func (r *PriceHistoryRepository) Series(ctx context.Context, symbol string, start time.Time) ([]model.DatedValue, error) {
	out := []model.DatedValue{}
	err := r.StreamCloses(ctx, []string{symbol}, start, func(_ string, date time.Time, c float64) error {
		out = append(out, model.DatedValue{Date: date, Value: c})
		return nil
	})
	return out, err
}
