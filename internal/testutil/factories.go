package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
)

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	user := testutil.NewUser().Build(t, db)
//	user := testutil.NewUser().WithName("Alice").Build(t, db)
type UserBuilder struct {
	ID   string
	Name string
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{
		ID:   MakeID(),
		Name: MakeUserName("Test User"),
	}
}

// WithID sets a custom ID.
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.Name = name
	return b
}

// Build creates the user in the database and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	user := model.User{ID: b.ID, Name: b.Name, CreatedAt: time.Now().UTC()}
	if err := repository.NewUserRepository(db).Insert(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// TransactionBuilder provides a fluent interface for creating test transactions.
// Build writes the ledger row only; positions are derived, so tests that need
// them call TransactionService.Recompute afterwards.
//
// Example usage:
//
//	tx := testutil.NewTransaction(user.ID).
//	    WithSymbol("AAPL").
//	    Sell(5, 120).
//	    WithDate(testutil.Day(2024, 3, 1)).
//	    Build(t, db)
type TransactionBuilder struct {
	ID       string
	UserID   string
	Date     time.Time
	Symbol   string
	Type     string
	Quantity float64
	Price    float64
}

// NewTransaction creates a TransactionBuilder for a 10 share BUY of TEST at 100.
func NewTransaction(userID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:       MakeID(),
		UserID:   userID,
		Date:     Day(2024, 1, 2),
		Symbol:   "TEST",
		Type:     model.TransactionTypeBuy,
		Quantity: 10,
		Price:    100,
	}
}

// WithSymbol sets the symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithDate sets the transaction date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// Buy makes the transaction a BUY of quantity at price.
func (b *TransactionBuilder) Buy(quantity, price float64) *TransactionBuilder {
	b.Type, b.Quantity, b.Price = model.TransactionTypeBuy, quantity, price
	return b
}

// Sell makes the transaction a SELL of quantity at price.
func (b *TransactionBuilder) Sell(quantity, price float64) *TransactionBuilder {
	b.Type, b.Quantity, b.Price = model.TransactionTypeSell, quantity, price
	return b
}

// Fee makes the transaction a FEE consuming quantity shares.
func (b *TransactionBuilder) Fee(quantity float64) *TransactionBuilder {
	b.Type, b.Quantity, b.Price = model.TransactionTypeFee, quantity, 0
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	tx := model.Transaction{
		ID:        b.ID,
		UserID:    b.UserID,
		Date:      b.Date,
		Symbol:    b.Symbol,
		Type:      b.Type,
		Quantity:  b.Quantity,
		Price:     b.Price,
		CreatedAt: time.Now().UTC(),
	}
	if err := repository.NewTransactionRepository(db).Insert(context.Background(), tx); err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}
	return tx
}

// SymbolInfoBuilder provides a fluent interface for seeding the symbol info cache.
//
// Example usage:
//
//	testutil.NewSymbolInfo("AAPL").WithQuote(110, 100).WithSplit(testutil.Day(2024, 6, 1), 2).Build(t, db)
type SymbolInfoBuilder struct {
	info model.SymbolInfo
}

// NewSymbolInfo creates a SymbolInfoBuilder for an equity priced at 100.
func NewSymbolInfo(symbol string) *SymbolInfoBuilder {
	return &SymbolInfoBuilder{info: model.SymbolInfo{
		Symbol:    symbol,
		Name:      symbol,
		QuoteType: "EQUITY",
		Quote:     model.Quote{Symbol: symbol, Price: 100, PreviousClose: 100},
		Splits:    []model.SplitEvent{},
		Sectors:   map[string]float64{},
		Assets:    map[string]float64{"stockPosition": 1},
		FetchedAt: time.Now().UTC(),
	}}
}

// WithQuote sets the current price and previous close.
func (b *SymbolInfoBuilder) WithQuote(price, previousClose float64) *SymbolInfoBuilder {
	b.info.Quote.Price = price
	b.info.Quote.PreviousClose = previousClose
	return b
}

// WithSplit adds a split event.
func (b *SymbolInfoBuilder) WithSplit(date time.Time, ratio float64) *SymbolInfoBuilder {
	b.info.Splits = append(b.info.Splits, model.SplitEvent{Symbol: b.info.Symbol, Date: date, Ratio: ratio})
	return b
}

// WithSectors replaces the sector weights.
func (b *SymbolInfoBuilder) WithSectors(weights map[string]float64) *SymbolInfoBuilder {
	b.info.Sectors = weights
	return b
}

// WithAssets replaces the asset class weights.
func (b *SymbolInfoBuilder) WithAssets(weights map[string]float64) *SymbolInfoBuilder {
	b.info.Assets = weights
	return b
}

// Info returns the built SymbolInfo without storing it, for registering on a mock provider.
func (b *SymbolInfoBuilder) Info() model.SymbolInfo {
	return b.info
}

// Build stores the info in the symbol_info cache and returns it.
func (b *SymbolInfoBuilder) Build(t *testing.T, db *sql.DB) model.SymbolInfo {
	t.Helper()

	if err := repository.NewSymbolInfoRepository(db).Upsert(context.Background(), b.info); err != nil {
		t.Fatalf("Failed to create test symbol info: %v", err)
	}
	return b.info
}

// SeedCloses stores closes for symbol in the price history cache.
//
// Example usage:
//
//	testutil.SeedCloses(t, db, "AAPL", testutil.DailyCloses(testutil.Day(2024, 1, 1), 100, 101, 102))
func SeedCloses(t *testing.T, db *sql.DB, symbol string, closes []model.DatedValue) {
	t.Helper()

	from := time.Time{}
	if len(closes) > 0 {
		from = closes[0].Date
	}
	if err := repository.NewPriceHistoryRepository(db).Replace(context.Background(), symbol, from, closes); err != nil {
		t.Fatalf("Failed to seed price history for %s: %v", symbol, err)
	}
}
