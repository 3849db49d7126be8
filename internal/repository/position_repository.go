package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// PositionRepository provides data access methods for the position table.
// Positions are derived data: they are only ever replaced as a whole set per user.
type PositionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a new PositionRepository scoped to the provided transaction.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *PositionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// ListByUser retrieves a user's persisted positions ordered by symbol.
func (r *PositionRepository) ListByUser(ctx context.Context, userID string) ([]model.Position, error) {
	query := `
		SELECT user_id, symbol, quantity, cost_basis, realized_cost_basis, realized_proceeds, updated_at
		FROM position
		WHERE user_id = ?
		ORDER BY symbol ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		var p model.Position
		var updatedAtStr string
		err := rows.Scan(
			&p.UserID,
			&p.Symbol,
			&p.Quantity,
			&p.CostBasis,
			&p.RealizedCostBasis,
			&p.RealizedProceeds,
			&updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}
		if p.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// Replace deletes every position for the user and inserts the given set.
// Call it on a repository scoped with WithTx so the swap is atomic.
func (r *PositionRepository) Replace(ctx context.Context, userID string, positions []model.Position, now time.Time) error {
	q := r.getQuerier()

	if _, err := q.ExecContext(ctx, `DELETE FROM position WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}

	stmt, err := q.PrepareContext(ctx, `
		INSERT INTO position (user_id, symbol, quantity, cost_basis, realized_cost_basis, realized_proceeds, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare position insert: %w", err)
	}
	defer stmt.Close()

	updatedAt := now.UTC().Format(time.RFC3339)
	for _, p := range positions {
		_, err := stmt.ExecContext(ctx,
			userID,
			p.Symbol,
			p.Quantity,
			p.CostBasis,
			p.RealizedCostBasis,
			p.RealizedProceeds,
			updatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert position %s: %w", p.Symbol, err)
		}
	}

	return nil
}
