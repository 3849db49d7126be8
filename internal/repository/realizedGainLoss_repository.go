package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// RealizedGainLossRepository provides data access methods for the realized_gain_loss table.
// Like positions, these records are replaced as a whole set on every recompute.
type RealizedGainLossRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewRealizedGainLossRepository creates a new RealizedGainLossRepository.
func NewRealizedGainLossRepository(db *sql.DB) *RealizedGainLossRepository {
	return &RealizedGainLossRepository{db: db}
}

// WithTx returns a new RealizedGainLossRepository scoped to the provided transaction.
func (r *RealizedGainLossRepository) WithTx(tx *sql.Tx) *RealizedGainLossRepository {
	return &RealizedGainLossRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *RealizedGainLossRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ListByUser retrieves realized records for a user ordered by date.
func (r *RealizedGainLossRepository) ListByUser(ctx context.Context, userID string) ([]model.RealizedRecord, error) {
	query := `
		SELECT id, user_id, symbol, transaction_id, date, type, quantity, cost_basis, proceeds
		FROM realized_gain_loss
		WHERE user_id = ?
		ORDER BY date ASC, rowid ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query realized_gain_loss table: %w", err)
	}
	defer rows.Close()

	records := []model.RealizedRecord{}
	for rows.Next() {
		var rec model.RealizedRecord
		var dateStr string
		err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Symbol,
			&rec.TransactionID,
			&dateStr,
			&rec.Type,
			&rec.Quantity,
			&rec.CostBasis,
			&rec.Proceeds,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan realized_gain_loss results: %w", err)
		}
		if rec.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating realized_gain_loss table: %w", err)
	}

	return records, nil
}

// Replace deletes every realized record for the user and inserts the given set.
func (r *RealizedGainLossRepository) Replace(ctx context.Context, userID string, records []model.RealizedRecord) error {
	q := r.getQuerier()

	if _, err := q.ExecContext(ctx, `DELETE FROM realized_gain_loss WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear realized gains: %w", err)
	}

	stmt, err := q.PrepareContext(ctx, `
		INSERT INTO realized_gain_loss (id, user_id, symbol, transaction_id, date, type, quantity, cost_basis, proceeds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare realized_gain_loss insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := stmt.ExecContext(ctx,
			id,
			userID,
			rec.Symbol,
			rec.TransactionID,
			rec.Date.Format(dateLayout),
			rec.Type,
			rec.Quantity,
			rec.CostBasis,
			rec.Proceeds,
		)
		if err != nil {
			return fmt.Errorf("failed to insert realized_gain_loss: %w", err)
		}
	}

	return nil
}
