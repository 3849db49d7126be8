package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/portfolio-tracker/internal/accounting"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/config"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
)

// MarketDataProvider resolves symbols and serves their daily closes.
// yahoo.FinanceClient is the production implementation.
type MarketDataProvider interface {
	// SymbolInfo returns the latest quote, splits and classification for a symbol.
	// An unresolvable symbol yields *apperrors.UnknownSymbolError.
	SymbolInfo(ctx context.Context, symbol string) (model.SymbolInfo, error)
	// History returns daily closes between start and end inclusive, ascending.
	History(ctx context.Context, symbol string, start, end time.Time) ([]model.DatedValue, error)
}

// MarketDataService keeps the symbol info and price history caches filled.
// Reads are served from SQLite; only misses and refreshes reach the provider.
type MarketDataService struct {
	provider MarketDataProvider
	symbols  *repository.SymbolInfoRepository
	prices   *repository.PriceHistoryRepository
	cfg      config.MarketDataConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewMarketDataService creates a new MarketDataService.
func NewMarketDataService(
	provider MarketDataProvider,
	symbols *repository.SymbolInfoRepository,
	prices *repository.PriceHistoryRepository,
	cfg config.MarketDataConfig,
	log zerolog.Logger,
) *MarketDataService {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &MarketDataService{
		provider: provider,
		symbols:  symbols,
		prices:   prices,
		cfg:      cfg,
		log:      log.With().Str("component", "marketdata").Logger(),
		now:      time.Now,
	}
}

// Config returns the benchmark and risk-free settings the service was built with.
func (s *MarketDataService) Config() config.MarketDataConfig {
	return s.cfg
}

// Resolve returns the cached info for a symbol, fetching it on a cache miss.
func (s *MarketDataService) Resolve(ctx context.Context, symbol string) (model.SymbolInfo, error) {
	info, err := s.symbols.Get(ctx, symbol)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, apperrors.ErrSymbolInfoNotFound) {
		return model.SymbolInfo{}, err
	}
	return s.Fetch(ctx, symbol)
}

// Fetch asks the provider for a symbol's info and caches the answer.
func (s *MarketDataService) Fetch(ctx context.Context, symbol string) (model.SymbolInfo, error) {
	info, err := s.provider.SymbolInfo(ctx, symbol)
	if err != nil {
		return model.SymbolInfo{}, err
	}
	info.Symbol = symbol
	if info.FetchedAt.IsZero() {
		info.FetchedAt = s.now().UTC()
	}
	if err := s.symbols.Upsert(ctx, info); err != nil {
		return model.SymbolInfo{}, err
	}
	s.log.Debug().Str("symbol", symbol).Int("splits", len(info.Splits)).Msg("symbol info cached")
	return info, nil
}

// ResolveMany resolves every symbol, fetching cache misses concurrently.
// Symbols that fail are missing from the result and their errors are joined.
func (s *MarketDataService) ResolveMany(ctx context.Context, symbols []string) (map[string]model.SymbolInfo, error) {
	cached, err := s.symbols.GetMany(ctx, symbols)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, symbol := range symbols {
		if _, ok := cached[symbol]; !ok {
			missing = append(missing, symbol)
		}
	}

	fetched, err := s.fetchAll(ctx, missing)
	for symbol, info := range fetched {
		cached[symbol] = info
	}
	return cached, err
}

// Splits returns the cached split series for the symbols that have cached info.
// Symbols without info are absent so callers can tell "no splits" from "unknown".
func (s *MarketDataService) Splits(ctx context.Context, symbols []string) (map[string][]model.SplitEvent, error) {
	infos, err := s.symbols.GetMany(ctx, symbols)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]model.SplitEvent, len(infos))
	for symbol, info := range infos {
		out[symbol] = info.Splits
	}
	return out, nil
}

// Quotes returns the cached quotes for the given symbols.
func (s *MarketDataService) Quotes(ctx context.Context, symbols []string) (map[string]model.Quote, error) {
	infos, err := s.symbols.GetMany(ctx, symbols)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Quote, len(infos))
	for symbol, info := range infos {
		out[symbol] = info.Quote
	}
	return out, nil
}

// Weights returns the cached sector and asset class weights keyed by symbol.
func (s *MarketDataService) Weights(ctx context.Context, symbols []string) (sectors, assets map[string]map[string]float64, err error) {
	infos, err := s.symbols.GetMany(ctx, symbols)
	if err != nil {
		return nil, nil, err
	}
	sectors = make(map[string]map[string]float64, len(infos))
	assets = make(map[string]map[string]float64, len(infos))
	for symbol, info := range infos {
		sectors[symbol] = info.Sectors
		assets[symbol] = info.Assets
	}
	return sectors, assets, nil
}

// PriceHistory loads the cached closes of symbols from start onward.
func (s *MarketDataService) PriceHistory(ctx context.Context, symbols []string, start time.Time) (model.PriceHistory, error) {
	return s.prices.Load(ctx, symbols, start)
}

// Series loads one symbol's cached closes from start onward.
func (s *MarketDataService) Series(ctx context.Context, symbol string, start time.Time) ([]model.DatedValue, error) {
	return s.prices.Series(ctx, symbol, start)
}

// EnsureHistory makes sure the price cache reaches back to since for the given
// symbols and the configured reference symbols. A symbol whose cache already
// starts on or before since is left alone.
func (s *MarketDataService) EnsureHistory(ctx context.Context, symbols []string, since time.Time) error {
	since = accounting.DayOf(since)

	var stale []string
	for _, symbol := range s.withReferences(symbols) {
		earliest, err := s.prices.EarliestDate(ctx, symbol)
		if err != nil {
			return err
		}
		if earliest.IsZero() || earliest.After(since) {
			stale = append(stale, symbol)
		}
	}
	return s.fetchHistories(ctx, stale, since)
}

// Refresh re-fetches quotes, splits and classification for symbols, then
// re-fetches price history from since for them and the reference symbols.
// Failures are collected per symbol; whatever succeeded stays cached.
func (s *MarketDataService) Refresh(ctx context.Context, symbols []string, since time.Time) error {
	_, infoErr := s.fetchAll(ctx, symbols)
	histErr := s.fetchHistories(ctx, s.withReferences(symbols), accounting.DayOf(since))
	return errors.Join(infoErr, histErr)
}

func (s *MarketDataService) fetchAll(ctx context.Context, symbols []string) (map[string]model.SymbolInfo, error) {
	var (
		mu   sync.Mutex
		out  = make(map[string]model.SymbolInfo, len(symbols))
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			info, err := s.Fetch(gctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("failed to fetch symbol info")
				errs = append(errs, err)
				return nil
			}
			out[symbol] = info
			return nil
		})
	}
	// Goroutines never return an error; failures are collected instead.
	_ = g.Wait()

	return out, errors.Join(errs...)
}

func (s *MarketDataService) fetchHistories(ctx context.Context, symbols []string, since time.Time) error {
	if len(symbols) == 0 {
		return nil
	}
	today := accounting.DayOf(s.now())

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			err := s.fetchHistory(gctx, symbol, since, today)
			if err != nil {
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("failed to fetch price history")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (s *MarketDataService) fetchHistory(ctx context.Context, symbol string, since, today time.Time) error {
	closes, err := s.provider.History(ctx, symbol, since, today)
	if err != nil {
		return fmt.Errorf("history for %s: %w", symbol, err)
	}
	if err := s.prices.Replace(ctx, symbol, since, closes); err != nil {
		return err
	}
	s.log.Debug().Str("symbol", symbol).Int("closes", len(closes)).Time("since", since).Msg("price history cached")
	return nil
}

func (s *MarketDataService) withReferences(symbols []string) []string {
	out := slices.Clone(symbols)
	for _, ref := range s.cfg.ReferenceSymbols() {
		if !slices.Contains(out, ref) {
			out = append(out, ref)
		}
	}
	return out
}
