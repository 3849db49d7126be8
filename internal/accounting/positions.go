package accounting

import (
	"cmp"
	"slices"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// Summarize collapses matched books into one persisted Position per symbol,
// ordered by symbol. Symbols whose lots are fully closed are kept so their
// realized gain stays visible.
func Summarize(userID string, books map[string]*model.Book) []model.Position {
	positions := make([]model.Position, 0, len(books))
	for symbol, book := range books {
		p := model.Position{UserID: userID, Symbol: symbol}
		for _, lot := range book.Open {
			p.Quantity += lot.Quantity
			p.CostBasis += lot.CostBasis()
		}
		for _, r := range book.Realized {
			p.RealizedCostBasis += r.CostBasis
			p.RealizedProceeds += r.Proceeds
		}
		positions = append(positions, p)
	}
	slices.SortFunc(positions, func(a, b model.Position) int {
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	return positions
}

// Realized flattens every book's realized records, ordered by date then symbol.
func Realized(userID string, books map[string]*model.Book) []model.RealizedRecord {
	var records []model.RealizedRecord
	for _, book := range books {
		for _, r := range book.Realized {
			r.UserID = userID
			records = append(records, r)
		}
	}
	slices.SortStableFunc(records, func(a, b model.RealizedRecord) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	return records
}

// BuildPositionRows values positions at the supplied quotes.
//
// A symbol without a quote is valued at zero. Percentages divide by zero-safe
// denominators and report 0 instead. Rows are sorted by market value
// descending with ties broken by symbol ascending.
func BuildPositionRows(positions []model.Position, quotes map[string]model.Quote) []model.PositionRow {
	rows := make([]model.PositionRow, 0, len(positions))
	for _, p := range positions {
		q := quotes[p.Symbol]

		marketValue := q.Price * p.Quantity
		previousValue := q.PreviousClose * p.Quantity
		unrealized := marketValue - p.CostBasis
		realized := p.RealizedProceeds - p.RealizedCostBasis
		totalCost := p.CostBasis + p.RealizedCostBasis

		rows = append(rows, model.PositionRow{
			Symbol:         p.Symbol,
			Quantity:       p.Quantity,
			Price:          q.Price,
			PreviousClose:  q.PreviousClose,
			MarketValue:    marketValue,
			DailyGain:      marketValue - previousValue,
			DailyGainPct:   safeDiv(marketValue-previousValue, previousValue),
			CostBasis:      p.CostBasis,
			TotalCostBasis: totalCost,
			UnrealizedGain: unrealized,
			RealizedGain:   realized,
			TotalGain:      realized + unrealized,
			TotalGainPct:   safeDiv(realized+unrealized, totalCost),
		})
	}
	SortRows(rows)
	return rows
}

// SortRows orders rows by market value descending, then symbol ascending.
func SortRows(rows []model.PositionRow) {
	slices.SortFunc(rows, func(a, b model.PositionRow) int {
		if c := cmp.Compare(b.MarketValue, a.MarketValue); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
}

// Summary totals position rows into portfolio-level figures.
func Summary(rows []model.PositionRow) model.PortfolioSummary {
	var s model.PortfolioSummary
	for _, r := range rows {
		s.MarketValue += r.MarketValue
		s.PreviousValue += r.PreviousClose * r.Quantity
		s.CostBasis += r.CostBasis
		s.TotalCostBasis += r.TotalCostBasis
		s.UnrealizedGain += r.UnrealizedGain
		s.RealizedGain += r.RealizedGain
		if r.Quantity > shareEpsilon {
			s.Positions++
		}
	}
	s.DailyGain = s.MarketValue - s.PreviousValue
	s.DailyGainPct = safeDiv(s.DailyGain, s.PreviousValue)
	s.TotalGain = s.RealizedGain + s.UnrealizedGain
	s.TotalGainPct = safeDiv(s.TotalGain, s.TotalCostBasis)
	return s
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
