package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/logger"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
	"github.com/ndewijer/portfolio-tracker/internal/service"
)

// Services bundles the services of one test wiring. They share the coordinator
// and market data service exactly like the server does.
type Services struct {
	Users        *service.UserService
	Transactions *service.TransactionService
	Portfolio    *service.PortfolioService
	MarketData   *service.MarketDataService
	System       *service.SystemService
	Coordinator  *service.Coordinator
}

// TestMarketDataConfig is the market data configuration used by test wirings:
// one benchmark and the usual risk-free symbol.
func TestMarketDataConfig() config.MarketDataConfig {
	return config.MarketDataConfig{
		Timeout:        time.Second,
		Concurrency:    2,
		Benchmarks:     []string{"^GSPC"},
		RiskFreeSymbol: "^TNX",
	}
}

// NewTestServices wires every service against db and the given provider.
//
// Example usage:
//
//	db := testutil.SetupTestDB(t)
//	provider := testutil.NewMockMarketDataProvider().WithSymbol("AAPL", 100)
//	svc := testutil.NewTestServices(t, db, provider)
func NewTestServices(t *testing.T, db *sql.DB, provider service.MarketDataProvider) *Services {
	t.Helper()

	log := logger.Nop()
	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	realizedRepo := repository.NewRealizedGainLossRepository(db)

	coordinator := service.NewCoordinator()
	marketData := service.NewMarketDataService(
		provider,
		repository.NewSymbolInfoRepository(db),
		repository.NewPriceHistoryRepository(db),
		TestMarketDataConfig(),
		log,
	)

	return &Services{
		Users:        service.NewUserService(userRepo, log),
		Transactions: service.NewTransactionService(db, userRepo, transactionRepo, positionRepo, realizedRepo, marketData, coordinator, log),
		Portfolio:    service.NewPortfolioService(userRepo, transactionRepo, positionRepo, marketData, coordinator, log),
		MarketData:   marketData,
		System:       service.NewSystemService(db, true),
		Coordinator:  coordinator,
	}
}

// NewTestSystemService creates a SystemService on db with scheduled refresh enabled.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, true)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeUserName generates a unique user name for testing.
func MakeUserName(base string) string {
	if base == "" {
		base = "User"
	}
	return base + " " + randomAlphanumeric(6)
}

// Ptr returns a pointer to v, for optional request fields.
func Ptr[T any](v T) *T {
	return &v
}

// Day returns midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
