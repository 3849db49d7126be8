package accounting

import (
	"testing"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func buy(t *testing.T, id, date, symbol string, qty, price float64) model.Transaction {
	t.Helper()
	return model.Transaction{ID: id, Date: day(t, date), Symbol: symbol, Type: model.TransactionTypeBuy, Quantity: qty, Price: price}
}

func sell(t *testing.T, id, date, symbol string, qty, price float64) model.Transaction {
	t.Helper()
	return model.Transaction{ID: id, Date: day(t, date), Symbol: symbol, Type: model.TransactionTypeSell, Quantity: qty, Price: price}
}

func fee(t *testing.T, id, date, symbol string, qty float64) model.Transaction {
	t.Helper()
	return model.Transaction{ID: id, Date: day(t, date), Symbol: symbol, Type: model.TransactionTypeFee, Quantity: qty}
}

// dailySeries returns one point per calendar day starting at start.
func dailySeries(start time.Time, values ...float64) []model.DatedValue {
	out := make([]model.DatedValue, len(values))
	for i, v := range values {
		out[i] = model.DatedValue{Date: start.AddDate(0, 0, i), Value: v}
	}
	return out
}

func constantSeries(start time.Time, days int, v float64) []model.DatedValue {
	values := make([]float64, days)
	for i := range values {
		values[i] = v
	}
	return dailySeries(start, values...)
}
