package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that a user with the given ID does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrSymbolInfoNotFound indicates that no cached market data exists for a symbol.
	ErrSymbolInfoNotFound = errors.New("symbol info not found")

	// ErrUnknownSymbol indicates that the market data provider could not resolve a symbol.
	ErrUnknownSymbol = errors.New("symbol not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientShares indicates that a SELL or FEE needs more shares than
	// are open at that point in the ledger.
	ErrInsufficientShares = errors.New("insufficient shares to sell")

	// ErrInvalidTransactionType indicates a transaction type other than BUY, SELL or FEE.
	ErrInvalidTransactionType = errors.New("transaction type must be BUY, SELL, or FEE")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidAllocation indicates an allocation kind other than sector or asset.
	ErrInvalidAllocation = errors.New("allocation must be 'sector' or 'asset'")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrieveUsers        = errors.New("failed to retrieve users")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
	ErrFailedToGetPortfolioSummary  = errors.New("failed to get portfolio summary")
	ErrFailedToGetPortfolioHistory  = errors.New("failed to get portfolio history")
	ErrFailedToGetMetrics           = errors.New("failed to get portfolio metrics")
	ErrFailedToGetAllocation        = errors.New("failed to get portfolio allocation")
	ErrFailedToRefresh              = errors.New("failed to refresh market data")
	ErrFailedToGetVersionInfo       = errors.New("failed to get version information")
)

// InsufficientSharesError reports a SELL or FEE that could not be covered by
// open lots. It wraps ErrInsufficientShares.
type InsufficientSharesError struct {
	Symbol        string
	TransactionID string
	Date          time.Time
	Shortfall     float64
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares to sell for %s on %s (short %g)",
		e.Symbol, e.Date.Format("2006-01-02"), e.Shortfall)
}

func (e *InsufficientSharesError) Unwrap() error {
	return ErrInsufficientShares
}

// UnknownSymbolError reports a symbol the market data provider could not resolve.
// It wraps ErrUnknownSymbol.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("symbol %s not found", e.Symbol)
}

func (e *UnknownSymbolError) Unwrap() error {
	return ErrUnknownSymbol
}
