package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// SymbolInfoRepository caches provider data per symbol as a msgpack blob.
type SymbolInfoRepository struct {
	db *sql.DB
}

// NewSymbolInfoRepository creates a new SymbolInfoRepository.
func NewSymbolInfoRepository(db *sql.DB) *SymbolInfoRepository {
	return &SymbolInfoRepository{db: db}
}

// Get returns the cached info for a symbol.
// Returns ErrSymbolInfoNotFound when the symbol has never been fetched.
func (r *SymbolInfoRepository) Get(ctx context.Context, symbol string) (model.SymbolInfo, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM symbol_info WHERE symbol = ?`, symbol).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SymbolInfo{}, apperrors.ErrSymbolInfoNotFound
	}
	if err != nil {
		return model.SymbolInfo{}, fmt.Errorf("failed to query symbol_info: %w", err)
	}

	var info model.SymbolInfo
	if err := msgpack.Unmarshal(blob, &info); err != nil {
		return model.SymbolInfo{}, fmt.Errorf("failed to decode symbol_info for %s: %w", symbol, err)
	}
	return info, nil
}

// GetMany returns cached info for the symbols that have it. Unknown symbols are skipped.
func (r *SymbolInfoRepository) GetMany(ctx context.Context, symbols []string) (map[string]model.SymbolInfo, error) {
	out := make(map[string]model.SymbolInfo, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	args := make([]any, len(symbols))
	for i, s := range symbols {
		args[i] = s
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT symbol, data FROM symbol_info WHERE symbol IN (`+placeholders(len(symbols))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbol_info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var blob []byte
		if err := rows.Scan(&symbol, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan symbol_info: %w", err)
		}
		var info model.SymbolInfo
		if err := msgpack.Unmarshal(blob, &info); err != nil {
			return nil, fmt.Errorf("failed to decode symbol_info for %s: %w", symbol, err)
		}
		out[symbol] = info
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbol_info: %w", err)
	}
	return out, nil
}

// Upsert stores or replaces the cached info for info.Symbol.
func (r *SymbolInfoRepository) Upsert(ctx context.Context, info model.SymbolInfo) error {
	blob, err := msgpack.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode symbol_info for %s: %w", info.Symbol, err)
	}

	query := `
		INSERT INTO symbol_info (symbol, data, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET data = excluded.data, fetched_at = excluded.fetched_at
	`
	if _, err := r.db.ExecContext(ctx, query, info.Symbol, blob, info.FetchedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to upsert symbol_info: %w", err)
	}
	return nil
}
