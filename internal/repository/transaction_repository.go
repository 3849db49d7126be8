package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
// Quantities are stored as positive magnitudes next to their type.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const transactionColumns = `id, user_id, date, symbol, type, quantity, price, created_at`

// ListByUser retrieves every transaction for a user.
// Transactions are sorted by date ascending and then by insertion order, which is the
// order the lot matcher relies on for same-day entries.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE user_id = ?
		ORDER BY date ASC, rowid ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// Get retrieves a single transaction owned by the user.
// Returns ErrTransactionNotFound if it does not exist or belongs to someone else.
func (r *TransactionRepository) Get(ctx context.Context, userID, transactionID string) (model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = ? AND user_id = ?`

	t, err := scanTransaction(r.getQuerier().QueryRowContext(ctx, query, transactionID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	return t, err
}

// Insert stores new transactions in the given order.
func (r *TransactionRepository) Insert(ctx context.Context, txs ...model.Transaction) error {
	query := `
		INSERT INTO "transaction" (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := r.getQuerier().PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		_, err := stmt.ExecContext(ctx,
			t.ID,
			t.UserID,
			t.Date.Format(dateLayout),
			t.Symbol,
			t.Type,
			t.Quantity,
			t.Price,
			t.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	return nil
}

// Update overwrites the editable fields of a transaction.
// Returns ErrTransactionNotFound if no row was changed.
func (r *TransactionRepository) Update(ctx context.Context, t model.Transaction) error {
	query := `
		UPDATE "transaction"
		SET date = ?, symbol = ?, type = ?, quantity = ?, price = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		t.Date.Format(dateLayout),
		t.Symbol,
		t.Type,
		t.Quantity,
		t.Price,
		t.ID,
		t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireAffected(result, apperrors.ErrTransactionNotFound)
}

// Delete removes a single transaction.
// Returns ErrTransactionNotFound if no record with the given ID exists for the user.
func (r *TransactionRepository) Delete(ctx context.Context, userID, transactionID string) error {
	query := `DELETE FROM "transaction" WHERE id = ? AND user_id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, transactionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(result, apperrors.ErrTransactionNotFound)
}

// DeleteAll removes every transaction for the user and returns how many were removed.
func (r *TransactionRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM "transaction" WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var dateStr, createdAtStr string

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&dateStr,
		&t.Symbol,
		&t.Type,
		&t.Quantity,
		&t.Price,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}

	if t.Date, err = ParseTime(dateStr); err != nil {
		return model.Transaction{}, err
	}
	if t.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
