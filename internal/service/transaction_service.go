package service

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ndewijer/portfolio-tracker/internal/accounting"
	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// TransactionService handles ledger mutations and the position recompute that
// follows each of them.
//
// Every mutation re-matches the user's complete transaction set. The change
// and the resulting positions and realized records are written in one SQL
// transaction, so a pass that fails (for example on a sell without enough
// shares) leaves the stored ledger and positions exactly as they were.
type TransactionService struct {
	db              *sql.DB
	userRepo        *repository.UserRepository
	transactionRepo *repository.TransactionRepository
	positionRepo    *repository.PositionRepository
	realizedRepo    *repository.RealizedGainLossRepository
	marketData      *MarketDataService
	coordinator     *Coordinator
	log             zerolog.Logger
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	transactionRepo *repository.TransactionRepository,
	positionRepo *repository.PositionRepository,
	realizedRepo *repository.RealizedGainLossRepository,
	marketData *MarketDataService,
	coordinator *Coordinator,
	log zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		db:              db,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		positionRepo:    positionRepo,
		realizedRepo:    realizedRepo,
		marketData:      marketData,
		coordinator:     coordinator,
		log:             log.With().Str("component", "transactions").Logger(),
		now:             time.Now,
	}
}

// GetTransactions returns the user's ledger ordered by date then entry order.
func (s *TransactionService) GetTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return nil, err
	}

	var txs []model.Transaction
	err := s.coordinator.WithRead(userID, func() error {
		var err error
		txs, err = s.transactionRepo.ListByUser(ctx, userID)
		return err
	})
	return txs, err
}

// GetTransaction returns a single transaction owned by the user.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, transactionID string) (model.Transaction, error) {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return model.Transaction{}, err
	}
	return s.transactionRepo.Get(ctx, userID, transactionID)
}

// CreateTransaction validates and records a single transaction.
//
// The symbol must resolve through the market data provider; an unknown symbol
// returns *apperrors.UnknownSymbolError and nothing is stored.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, req request.CreateTransactionRequest) (model.Transaction, error) {
	if err := validation.ValidateCreateTransaction(req); err != nil {
		return model.Transaction{}, err
	}
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return model.Transaction{}, err
	}

	tx, err := s.newTransaction(userID, req)
	if err != nil {
		return model.Transaction{}, err
	}
	if _, err := s.marketData.Resolve(ctx, tx.Symbol); err != nil {
		return model.Transaction{}, err
	}

	err = s.coordinator.WithWrite(userID, func() error {
		existing, err := s.transactionRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		return s.commit(ctx, userID, append(existing, tx), func(sqlTx *sql.Tx) error {
			return s.transactionRepo.WithTx(sqlTx).Insert(ctx, tx)
		})
	})
	if err != nil {
		return model.Transaction{}, err
	}

	s.log.Info().Str("user_id", userID).Str("transaction_id", tx.ID).Str("symbol", tx.Symbol).Str("type", tx.Type).Msg("transaction created")
	s.warmHistory(ctx, userID)
	return tx, nil
}

// UpdateTransaction applies the fields present in req to an existing transaction.
func (s *TransactionService) UpdateTransaction(
	ctx context.Context,
	userID, transactionID string,
	req request.UpdateTransactionRequest,
) (model.Transaction, error) {
	if err := validation.ValidateUpdateTransaction(req); err != nil {
		return model.Transaction{}, err
	}
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return model.Transaction{}, err
	}
	if req.Symbol != nil {
		if _, err := s.marketData.Resolve(ctx, validation.NormalizeSymbol(*req.Symbol)); err != nil {
			return model.Transaction{}, err
		}
	}

	var updated model.Transaction
	err := s.coordinator.WithWrite(userID, func() error {
		existing, err := s.transactionRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		idx := indexOf(existing, transactionID)
		if idx < 0 {
			return apperrors.ErrTransactionNotFound
		}

		updated, err = validation.ApplyUpdate(existing[idx], req)
		if err != nil {
			return err
		}
		next := slices.Clone(existing)
		next[idx] = updated

		return s.commit(ctx, userID, next, func(sqlTx *sql.Tx) error {
			return s.transactionRepo.WithTx(sqlTx).Update(ctx, updated)
		})
	})
	if err != nil {
		return model.Transaction{}, err
	}

	s.log.Info().Str("user_id", userID).Str("transaction_id", transactionID).Msg("transaction updated")
	s.warmHistory(ctx, userID)
	return updated, nil
}

// DeleteTransaction removes one transaction. Deleting a buy that later sells
// depend on fails with an insufficient shares error and deletes nothing.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return err
	}

	err := s.coordinator.WithWrite(userID, func() error {
		existing, err := s.transactionRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		idx := indexOf(existing, transactionID)
		if idx < 0 {
			return apperrors.ErrTransactionNotFound
		}
		next := slices.Delete(slices.Clone(existing), idx, idx+1)

		return s.commit(ctx, userID, next, func(sqlTx *sql.Tx) error {
			return s.transactionRepo.WithTx(sqlTx).Delete(ctx, userID, transactionID)
		})
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Str("transaction_id", transactionID).Msg("transaction deleted")
	return nil
}

// DeleteAllTransactions clears the user's ledger and derived rows.
// Returns the number of transactions removed.
func (s *TransactionService) DeleteAllTransactions(ctx context.Context, userID string) (int64, error) {
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return 0, err
	}

	var deleted int64
	err := s.coordinator.WithWrite(userID, func() error {
		return s.commit(ctx, userID, nil, func(sqlTx *sql.Tx) error {
			var err error
			deleted, err = s.transactionRepo.WithTx(sqlTx).DeleteAll(ctx, userID)
			return err
		})
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Str("user_id", userID).Int64("deleted", deleted).Msg("all transactions deleted")
	return deleted, nil
}

// UploadTransactions records a batch of already parsed rows as one unit.
// Either every row is stored or none is: validation errors, unknown symbols and
// insufficient shares all reject the whole batch.
func (s *TransactionService) UploadTransactions(ctx context.Context, userID string, rows []request.CreateTransactionRequest) ([]model.Transaction, error) {
	if err := validation.ValidateUpload(rows); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.Get(ctx, userID); err != nil {
		return nil, err
	}

	txs := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := s.newTransaction(userID, row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if _, err := s.marketData.ResolveMany(ctx, symbolsOf(txs)); err != nil {
		return nil, err
	}

	err := s.coordinator.WithWrite(userID, func() error {
		existing, err := s.transactionRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		return s.commit(ctx, userID, append(existing, txs...), func(sqlTx *sql.Tx) error {
			return s.transactionRepo.WithTx(sqlTx).Insert(ctx, txs...)
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", userID).Int("count", len(txs)).Msg("transactions uploaded")
	s.warmHistory(ctx, userID)
	return txs, nil
}

// Recompute re-matches the stored ledger and replaces the user's positions.
// Concurrent calls for the same user share one pass.
func (s *TransactionService) Recompute(ctx context.Context, userID string) error {
	return s.coordinator.Recompute(ctx, userID, func(ctx context.Context) error {
		txs, err := s.transactionRepo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		return s.commit(ctx, userID, txs, nil)
	})
}

// RefreshUser re-fetches market data for the user's symbols and recomputes.
//
// Market data failures do not stop the recompute; they come back as warnings.
// The returned error is reserved for the recompute itself.
func (s *TransactionService) RefreshUser(ctx context.Context, userID string) (warnings []string, err error) {
	txs, err := s.GetTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	if refreshErr := s.marketData.Refresh(ctx, symbolsOf(txs), s.since(txs)); refreshErr != nil {
		warnings = errorMessages(refreshErr)
	}
	if err := s.Recompute(ctx, userID); err != nil {
		return warnings, err
	}

	s.log.Info().Str("user_id", userID).Int("warnings", len(warnings)).Msg("user refreshed")
	return warnings, nil
}

// RefreshAll refreshes the market data of every symbol any user holds, once,
// and then recomputes each user. Per-user recompute failures are joined.
func (s *TransactionService) RefreshAll(ctx context.Context) error {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return err
	}

	var all []model.Transaction
	for _, u := range users {
		txs, err := s.transactionRepo.ListByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		all = append(all, txs...)
	}

	if err := s.marketData.Refresh(ctx, symbolsOf(all), s.since(all)); err != nil {
		s.log.Warn().Err(err).Msg("market data refresh incomplete")
	}

	var errs []error
	for _, u := range users {
		if err := s.Recompute(ctx, u.ID); err != nil {
			s.log.Error().Err(err).Str("user_id", u.ID).Msg("recompute failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// commit re-matches txs and, when that succeeds, runs mutate and the position
// replace in one SQL transaction. Everything the pass needs is read before the
// SQL transaction starts.
func (s *TransactionService) commit(ctx context.Context, userID string, txs []model.Transaction, mutate func(*sql.Tx) error) error {
	positions, realized, err := s.match(ctx, userID, txs)
	if err != nil {
		return err
	}

	now := s.now()
	return repository.RunInTx(ctx, s.db, func(sqlTx *sql.Tx) error {
		if mutate != nil {
			if err := mutate(sqlTx); err != nil {
				return err
			}
		}
		if err := s.positionRepo.WithTx(sqlTx).Replace(ctx, userID, positions, now); err != nil {
			return err
		}
		return s.realizedRepo.WithTx(sqlTx).Replace(ctx, userID, realized)
	})
}

func (s *TransactionService) match(ctx context.Context, userID string, txs []model.Transaction) ([]model.Position, []model.RealizedRecord, error) {
	splits, err := s.marketData.Splits(ctx, symbolsOf(txs))
	if err != nil {
		return nil, nil, err
	}

	adjusted, missing := accounting.AdjustTransactions(txs, splits)
	if len(missing) > 0 {
		s.log.Debug().Str("user_id", userID).Strs("symbols", missing).Msg("no split data cached, quantities left as entered")
	}

	books, err := accounting.MatchLots(adjusted)
	if err != nil {
		s.log.Debug().Err(err).Str("user_id", userID).Msg("lot matching rejected the ledger")
		return nil, nil, err
	}
	return accounting.Summarize(userID, books), accounting.Realized(userID, books), nil
}

// warmHistory extends the price cache back to the user's earliest transaction.
// Failures are logged only; the next refresh retries them.
func (s *TransactionService) warmHistory(ctx context.Context, userID string) {
	txs, err := s.transactionRepo.ListByUser(ctx, userID)
	if err != nil || len(txs) == 0 {
		return
	}
	if err := s.marketData.EnsureHistory(ctx, symbolsOf(txs), s.since(txs)); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("price history warm-up incomplete")
	}
}

func (s *TransactionService) newTransaction(userID string, req request.CreateTransactionRequest) (model.Transaction, error) {
	tx, err := validation.ToTransaction(req)
	if err != nil {
		return model.Transaction{}, err
	}
	tx.ID = uuid.New().String()
	tx.UserID = userID
	tx.CreatedAt = s.now().UTC()
	return tx, nil
}

// since returns the earliest transaction date, or today for an empty ledger.
func (s *TransactionService) since(txs []model.Transaction) time.Time {
	if len(txs) == 0 {
		return accounting.DayOf(s.now())
	}
	earliest := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(earliest) {
			earliest = tx.Date
		}
	}
	return earliest
}

func indexOf(txs []model.Transaction, id string) int {
	return slices.IndexFunc(txs, func(t model.Transaction) bool { return t.ID == id })
}

// symbolsOf returns the distinct symbols in txs, sorted.
func symbolsOf(txs []model.Transaction) []string {
	symbols := make([]string, 0, len(txs))
	for _, tx := range txs {
		symbols = append(symbols, tx.Symbol)
	}
	slices.Sort(symbols)
	return slices.Compact(symbols)
}

// errorMessages flattens a joined error into its individual messages.
func errorMessages(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, errorMessages(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
