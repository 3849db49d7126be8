package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-tracker/internal/accounting"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
)

// Allocation kinds accepted by GetAllocation.
const (
	AllocationBySector = "sector"
	AllocationByAsset  = "asset"
)

// PortfolioService serves the read side: position rows, the portfolio summary,
// the value history chart, the metrics table and allocations.
// Every read holds the user's read lock so it never sees a half-written recompute.
type PortfolioService struct {
	userRepo        *repository.UserRepository
	transactionRepo *repository.TransactionRepository
	positionRepo    *repository.PositionRepository
	marketData      *MarketDataService
	coordinator     *Coordinator
	log             zerolog.Logger
	now             func() time.Time
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	userRepo *repository.UserRepository,
	transactionRepo *repository.TransactionRepository,
	positionRepo *repository.PositionRepository,
	marketData *MarketDataService,
	coordinator *Coordinator,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		positionRepo:    positionRepo,
		marketData:      marketData,
		coordinator:     coordinator,
		log:             log.With().Str("component", "portfolio").Logger(),
		now:             time.Now,
	}
}

// GetPositions returns the user's positions valued at the cached quotes.
// Fully closed positions are included so their realized gain stays visible.
func (s *PortfolioService) GetPositions(ctx context.Context, userID string) ([]model.PositionRow, error) {
	rows, err := s.positionRows(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = roundRow(rows[i])
	}
	return rows, nil
}

// GetSummary totals the user's positions into portfolio-level figures.
func (s *PortfolioService) GetSummary(ctx context.Context, userID string) (model.PortfolioSummary, error) {
	rows, err := s.positionRows(ctx, userID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	return roundSummary(accounting.Summary(rows)), nil
}

// GetHistory returns the daily value curve for the last days days (all of it when
// days <= 0). With live set, a point for today valued at the cached quotes is
// appended when the price history does not reach today yet.
func (s *PortfolioService) GetHistory(ctx context.Context, userID string, days int, live bool) ([]model.ValueHistoryPoint, error) {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return nil, err
	}

	today := s.now()
	var points []model.ValueHistoryPoint
	err := s.coordinator.WithRead(userID, func() error {
		txs, history, err := s.ledgerHistory(ctx, userID)
		if err != nil {
			return err
		}
		points = accounting.BuildValueHistory(txs, history)

		if live && len(txs) > 0 {
			positions, quotes, err := s.positionsAndQuotes(ctx, userID)
			if err != nil {
				return err
			}
			points = accounting.AppendLivePoint(points, txs, positions, quotes, today)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	points = accounting.TrimToWindow(points, days, today)
	out := make([]model.ValueHistoryPoint, len(points))
	for i, p := range points {
		out[i] = roundPoint(p)
	}
	return out, nil
}

// GetMetrics returns one row per trailing window with the portfolio's annualized
// return next to each benchmark's, and beta, alpha and Sharpe ratio against the
// primary benchmark. The portfolio series is the cash-flow adjusted value curve.
func (s *PortfolioService) GetMetrics(ctx context.Context, userID string) ([]model.MetricsRow, error) {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return nil, err
	}

	cfg := s.marketData.Config()
	asOf := accounting.DayOf(s.now())

	var points []model.ValueHistoryPoint
	err := s.coordinator.WithRead(userID, func() error {
		txs, history, err := s.ledgerHistory(ctx, userID)
		if err != nil {
			return err
		}
		points = accounting.BuildValueHistory(txs, history)
		return nil
	})
	if err != nil {
		return nil, err
	}

	series := model.AdjustedValues(points)
	start := asOf
	if len(series) > 0 {
		start = series[0].Date
	}

	benchmarks := make(map[string][]model.DatedValue, len(cfg.Benchmarks))
	for _, symbol := range cfg.Benchmarks {
		bench, err := s.marketData.Series(ctx, symbol, start)
		if err != nil {
			return nil, err
		}
		benchmarks[symbol] = bench
	}

	var riskFree []model.DatedValue
	if cfg.RiskFreeSymbol != "" {
		yields, err := s.marketData.Series(ctx, cfg.RiskFreeSymbol, start)
		if err != nil {
			return nil, err
		}
		riskFree = accounting.DailyRiskFreeFromYield(yields)
	}

	var primary string
	if len(cfg.Benchmarks) > 0 {
		primary = cfg.Benchmarks[0]
	}

	rows := accounting.BuildMetricsTable(series, benchmarks, primary, riskFree, asOf)
	for i := range rows {
		rows[i].PortfolioReturn = round(rows[i].PortfolioReturn, ratioPlaces)
		rows[i].Beta = round(rows[i].Beta, ratioPlaces)
		rows[i].Alpha = round(rows[i].Alpha, ratioPlaces)
		rows[i].Sharpe = round(rows[i].Sharpe, ratioPlaces)
		for symbol, r := range rows[i].BenchmarkReturns {
			rows[i].BenchmarkReturns[symbol] = round(r, ratioPlaces)
		}
	}
	return rows, nil
}

// GetAllocation splits the portfolio's market value over sectors or asset classes.
// by must be AllocationBySector or AllocationByAsset.
func (s *PortfolioService) GetAllocation(ctx context.Context, userID, by string) ([]model.AllocationBucket, error) {
	if by != AllocationBySector && by != AllocationByAsset {
		return nil, apperrors.ErrInvalidAllocation
	}

	rows, err := s.positionRows(ctx, userID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, len(rows))
	for i, r := range rows {
		symbols[i] = r.Symbol
	}
	sectorWeights, assetWeights, err := s.marketData.Weights(ctx, symbols)
	if err != nil {
		return nil, err
	}

	sectors, assets := accounting.Allocate(rows, sectorWeights, assetWeights)
	buckets := sectors
	if by == AllocationByAsset {
		buckets = assets
	}
	for i := range buckets {
		buckets[i].Weight = round(buckets[i].Weight, ratioPlaces)
	}
	return buckets, nil
}

func (s *PortfolioService) positionRows(ctx context.Context, userID string) ([]model.PositionRow, error) {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return nil, err
	}

	var rows []model.PositionRow
	err := s.coordinator.WithRead(userID, func() error {
		positions, quotes, err := s.positionsAndQuotes(ctx, userID)
		if err != nil {
			return err
		}
		rows = accounting.BuildPositionRows(positions, quotes)
		return nil
	})
	return rows, err
}

func (s *PortfolioService) positionsAndQuotes(ctx context.Context, userID string) ([]model.Position, map[string]model.Quote, error) {
	positions, err := s.positionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	quotes, err := s.marketData.Quotes(ctx, symbols)
	if err != nil {
		return nil, nil, err
	}
	return positions, quotes, nil
}

// ledgerHistory loads the split-adjusted ledger and the cached closes of its
// symbols from the first transaction onward. Cached closes are split adjusted,
// so quantities have to be as well.
func (s *PortfolioService) ledgerHistory(ctx context.Context, userID string) ([]model.Transaction, model.PriceHistory, error) {
	txs, err := s.transactionRepo.ListByUser(ctx, userID)
	if err != nil || len(txs) == 0 {
		return txs, model.PriceHistory{}, err
	}

	symbols := symbolsOf(txs)
	splits, err := s.marketData.Splits(ctx, symbols)
	if err != nil {
		return nil, model.PriceHistory{}, err
	}
	adjusted, _ := accounting.AdjustTransactions(txs, splits)

	start := txs[0].Date
	for _, tx := range txs {
		if tx.Date.Before(start) {
			start = tx.Date
		}
	}
	history, err := s.marketData.PriceHistory(ctx, symbols, start)
	if err != nil {
		return nil, model.PriceHistory{}, err
	}
	return adjusted, history, nil
}
