package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// MockMarketDataProvider is an in-memory service.MarketDataProvider for testing.
// It returns predefined data instead of making actual API calls. Symbols it has
// no info for resolve as unknown. Safe for concurrent use.
type MockMarketDataProvider struct {
	mu sync.Mutex

	// Infos is returned by SymbolInfo, keyed by symbol
	Infos map[string]model.SymbolInfo
	// Histories is filtered by date and returned by History, keyed by symbol
	Histories map[string][]model.DatedValue
	// Errors forces both methods to fail for a symbol
	Errors map[string]error

	// InfoCalls and HistoryCalls count requests per symbol
	InfoCalls    map[string]int
	HistoryCalls map[string]int
}

// NewMockMarketDataProvider creates a mock provider that knows no symbols yet.
func NewMockMarketDataProvider() *MockMarketDataProvider {
	return &MockMarketDataProvider{
		Infos:        make(map[string]model.SymbolInfo),
		Histories:    make(map[string][]model.DatedValue),
		Errors:       make(map[string]error),
		InfoCalls:    make(map[string]int),
		HistoryCalls: make(map[string]int),
	}
}

// WithSymbol registers a symbol trading at price, with the previous close equal to price.
func (m *MockMarketDataProvider) WithSymbol(symbol string, price float64) *MockMarketDataProvider {
	return m.WithInfo(model.SymbolInfo{
		Symbol:    symbol,
		Name:      symbol,
		QuoteType: "EQUITY",
		Quote:     model.Quote{Symbol: symbol, Price: price, PreviousClose: price},
		Splits:    []model.SplitEvent{},
		Sectors:   map[string]float64{},
		Assets:    map[string]float64{"stockPosition": 1},
	})
}

// WithInfo registers the info returned for info.Symbol.
func (m *MockMarketDataProvider) WithInfo(info model.SymbolInfo) *MockMarketDataProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Infos[info.Symbol] = info
	return m
}

// WithHistory registers daily closes for symbol.
func (m *MockMarketDataProvider) WithHistory(symbol string, closes []model.DatedValue) *MockMarketDataProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Histories[symbol] = closes
	return m
}

// WithError makes every request for symbol fail with err.
func (m *MockMarketDataProvider) WithError(symbol string, err error) *MockMarketDataProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[symbol] = err
	return m
}

// SymbolInfo returns the registered info or an UnknownSymbolError.
func (m *MockMarketDataProvider) SymbolInfo(_ context.Context, symbol string) (model.SymbolInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InfoCalls[symbol]++
	if err := m.Errors[symbol]; err != nil {
		return model.SymbolInfo{}, err
	}
	info, ok := m.Infos[symbol]
	if !ok {
		return model.SymbolInfo{}, &apperrors.UnknownSymbolError{Symbol: symbol}
	}
	return info, nil
}

// History returns the registered closes between start and end inclusive.
// A symbol without registered closes has an empty history.
func (m *MockMarketDataProvider) History(_ context.Context, symbol string, start, end time.Time) ([]model.DatedValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.HistoryCalls[symbol]++
	if err := m.Errors[symbol]; err != nil {
		return nil, err
	}
	out := []model.DatedValue{}
	for _, v := range m.Histories[symbol] {
		if !v.Date.Before(start) && !v.Date.After(end) {
			out = append(out, v)
		}
	}
	return out, nil
}

// InfoCount returns how often SymbolInfo was called for symbol.
func (m *MockMarketDataProvider) InfoCount(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.InfoCalls[symbol]
}

// HistoryCount returns how often History was called for symbol.
func (m *MockMarketDataProvider) HistoryCount(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.HistoryCalls[symbol]
}

// DailyCloses builds a series of one close per calendar day starting at start.
func DailyCloses(start time.Time, closes ...float64) []model.DatedValue {
	out := make([]model.DatedValue, len(closes))
	for i, c := range closes {
		out[i] = model.DatedValue{Date: start.AddDate(0, 0, i), Value: c}
	}
	return out
}

// ConstantCloses builds days consecutive daily closes all equal to value.
func ConstantCloses(start time.Time, days int, value float64) []model.DatedValue {
	closes := make([]float64, days)
	for i := range closes {
		closes[i] = value
	}
	return DailyCloses(start, closes...)
}
