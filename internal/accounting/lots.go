package accounting

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// shareEpsilon absorbs floating point residue left by fractional splits.
const shareEpsilon = 1e-9

// MatchLots runs one FIFO matching pass over a user's full transaction set.
//
// Transactions are stably sorted by date, so same-day entries keep the order
// the caller supplied. BUY opens a lot; SELL and FEE consume the oldest open
// lots first, producing one RealizedRecord per lot touched. FEE records carry
// zero proceeds.
//
// Every shortfall is reported as an *apperrors.InsufficientSharesError joined
// into the returned error. When any error occurs the books are discarded and
// nil is returned, so a failed pass can never be persisted partially.
func MatchLots(txs []model.Transaction) (map[string]*model.Book, error) {
	ordered := slices.Clone(txs)
	slices.SortStableFunc(ordered, func(a, b model.Transaction) int {
		return a.Date.Compare(b.Date)
	})

	books := make(map[string]*model.Book)
	var errs []error

	for _, tx := range ordered {
		book, ok := books[tx.Symbol]
		if !ok {
			book = &model.Book{Symbol: tx.Symbol}
			books[tx.Symbol] = book
		}

		switch tx.Type {
		case model.TransactionTypeBuy:
			book.Open = append(book.Open, model.Lot{
				Symbol:        tx.Symbol,
				TransactionID: tx.ID,
				Date:          tx.Date,
				Quantity:      tx.Quantity,
				UnitCost:      tx.Price,
			})
		case model.TransactionTypeSell, model.TransactionTypeFee:
			if shortfall := consume(book, tx); shortfall > shareEpsilon {
				errs = append(errs, &apperrors.InsufficientSharesError{
					Symbol:        tx.Symbol,
					TransactionID: tx.ID,
					Date:          tx.Date,
					Shortfall:     shortfall,
				})
			}
		default:
			errs = append(errs, fmt.Errorf("transaction %s: %w", tx.ID, apperrors.ErrInvalidTransactionType))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return books, nil
}

// consume closes tx.Quantity shares against the front of the book's queue and
// returns how many shares could not be covered.
func consume(book *model.Book, tx model.Transaction) float64 {
	toClose := tx.Quantity
	for toClose > shareEpsilon && len(book.Open) > 0 {
		lot := &book.Open[0]
		sold := min(toClose, lot.Quantity)

		proceeds := 0.0
		if tx.Type == model.TransactionTypeSell {
			proceeds = sold * tx.Price
		}
		book.Realized = append(book.Realized, model.RealizedRecord{
			Symbol:        tx.Symbol,
			TransactionID: tx.ID,
			Date:          tx.Date,
			Type:          tx.Type,
			Quantity:      sold,
			CostBasis:     sold * lot.UnitCost,
			Proceeds:      proceeds,
		})

		toClose -= sold
		lot.Quantity -= sold
		if lot.Quantity <= shareEpsilon {
			book.Open = book.Open[1:]
		}
	}
	return toClose
}

// OpenQuantity sums the remaining shares across a book's open lots.
func OpenQuantity(book *model.Book) float64 {
	var total float64
	for _, lot := range book.Open {
		total += lot.Quantity
	}
	return total
}
