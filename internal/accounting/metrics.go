package accounting

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// WindowAll selects the full available history instead of a trailing window.
const WindowAll = 0

// TradingDaysPerYear annualizes daily statistics.
const TradingDaysPerYear = 252

// Windows are the trailing periods, in calendar days, reported by the metrics table.
var Windows = []int{30, 91, 182, 365, 1095, WindowAll}

// WindowLabel returns the short display label for a window.
func WindowLabel(window int) string {
	switch window {
	case 30:
		return "1M"
	case 91:
		return "3M"
	case 182:
		return "6M"
	case 365:
		return "1Y"
	case 1095:
		return "3Y"
	case WindowAll:
		return "All"
	}
	return fmt.Sprintf("%dD", window)
}

// windowed restricts an ascending series to dates on or after asOf minus window.
// ok is false when the series does not reach back to the window start, which
// callers treat as insufficient history. For WindowAll the returned span is the
// series length in calendar days.
func windowed(series []model.DatedValue, window int, asOf time.Time) (sub []model.DatedValue, span float64, ok bool) {
	if len(series) < 2 {
		return nil, 0, false
	}
	if window == WindowAll {
		span = DayOf(series[len(series)-1].Date).Sub(DayOf(series[0].Date)).Hours() / 24
		return series, span, span > 0
	}

	start := DayOf(asOf).AddDate(0, 0, -window)
	if start.Before(DayOf(series[0].Date)) {
		return nil, 0, false
	}
	end := DayOf(asOf)
	for _, v := range series {
		d := DayOf(v.Date)
		if !d.Before(start) && !d.After(end) {
			sub = append(sub, v)
		}
	}
	return sub, float64(window), len(sub) > 0
}

// RateOfReturn returns the annualized return of series over the trailing window:
// (last/first)^(365.25/window) - 1. Insufficient history, an empty window or a
// non-positive starting value yields 0.
func RateOfReturn(series []model.DatedValue, window int, asOf time.Time) float64 {
	sub, span, ok := windowed(series, window, asOf)
	if !ok {
		return 0
	}
	first, last := sub[0].Value, sub[len(sub)-1].Value
	if first <= 0 {
		return 0
	}
	return math.Pow(last/first, 365.25/span) - 1
}

// BetaAlpha fits portfolio daily returns against benchmark daily returns over
// the window by ordinary least squares and returns the slope and intercept.
//
// Returns are computed on the dates both series share. Fewer than two paired
// returns, or insufficient history on either side, yields (0, 0). A benchmark
// with zero return variance yields (0, mean portfolio return).
func BetaAlpha(series, benchmark []model.DatedValue, window int, asOf time.Time) (beta, alpha float64) {
	sub, _, ok := windowed(series, window, asOf)
	if !ok {
		return 0, 0
	}
	bench, _, ok := windowed(benchmark, window, asOf)
	if !ok {
		return 0, 0
	}

	byDate := make(map[time.Time]float64, len(bench))
	for _, v := range bench {
		byDate[DayOf(v.Date)] = v.Value
	}
	var ys, xs []float64
	var prevY, prevX float64
	havePrev := false
	for _, v := range sub {
		x, found := byDate[DayOf(v.Date)]
		if !found {
			continue
		}
		if havePrev && prevY != 0 && prevX != 0 {
			ys = append(ys, (v.Value-prevY)/prevY)
			xs = append(xs, (x-prevX)/prevX)
		}
		prevY, prevX, havePrev = v.Value, x, true
	}
	if len(xs) < 2 {
		return 0, 0
	}

	if stat.Variance(xs, nil) == 0 {
		return 0, stat.Mean(ys, nil)
	}
	alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	return beta, alpha
}

// SharpeRatio returns (mean(daily return) - mean(daily risk-free rate)) divided
// by the standard deviation of daily returns, annualized by sqrt(252).
// riskFree must already be expressed as a daily rate; only its values on the
// return dates are averaged. Insufficient history or zero volatility yields 0.
func SharpeRatio(series []model.DatedValue, window int, asOf time.Time, riskFree []model.DatedValue) float64 {
	sub, _, ok := windowed(series, window, asOf)
	if !ok {
		return 0
	}
	returns := DailyReturns(sub)
	if len(returns) < 2 {
		return 0
	}

	values := make([]float64, len(returns))
	for i, r := range returns {
		values[i] = r.Value
	}
	std := stat.StdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}

	rfByDate := make(map[time.Time]float64, len(riskFree))
	for _, v := range riskFree {
		rfByDate[DayOf(v.Date)] = v.Value
	}
	var rf []float64
	for _, r := range returns {
		if v, found := rfByDate[DayOf(r.Date)]; found && !math.IsNaN(v) {
			rf = append(rf, v)
		}
	}
	var meanRf float64
	if len(rf) > 0 {
		meanRf = stat.Mean(rf, nil)
	}

	return (stat.Mean(values, nil) - meanRf) / std * math.Sqrt(TradingDaysPerYear)
}

// DailyReturns converts a value series into day-over-day percentage changes,
// each dated at the later day. Steps from a zero value are skipped.
func DailyReturns(series []model.DatedValue) []model.DatedValue {
	if len(series) < 2 {
		return nil
	}
	out := make([]model.DatedValue, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Value
		if prev == 0 {
			continue
		}
		out = append(out, model.DatedValue{
			Date:  series[i].Date,
			Value: (series[i].Value - prev) / prev,
		})
	}
	return out
}

// DailyRiskFreeFromYield converts an annual percentage yield series, such as
// the 10-year Treasury index, into a daily rate: yield / 100 / 252.
func DailyRiskFreeFromYield(yields []model.DatedValue) []model.DatedValue {
	out := make([]model.DatedValue, 0, len(yields))
	for _, y := range yields {
		if math.IsNaN(y.Value) {
			continue
		}
		out = append(out, model.DatedValue{Date: y.Date, Value: y.Value / 100 / TradingDaysPerYear})
	}
	return out
}

// BuildMetricsTable computes one row per entry of Windows.
//
// Parameters:
//   - portfolio: the portfolio market value series, ascending by date
//   - benchmarks: comparison index series keyed by symbol
//   - primary: the benchmark symbol beta and alpha are fitted against
//   - riskFree: the daily risk-free rate series
//   - asOf: the day windows trail from
func BuildMetricsTable(portfolio []model.DatedValue, benchmarks map[string][]model.DatedValue, primary string, riskFree []model.DatedValue, asOf time.Time) []model.MetricsRow {
	rows := make([]model.MetricsRow, 0, len(Windows))
	for _, w := range Windows {
		row := model.MetricsRow{
			Window:           w,
			Label:            WindowLabel(w),
			PortfolioReturn:  RateOfReturn(portfolio, w, asOf),
			BenchmarkReturns: make(map[string]float64, len(benchmarks)),
			Sharpe:           SharpeRatio(portfolio, w, asOf, riskFree),
		}
		for symbol, series := range benchmarks {
			row.BenchmarkReturns[symbol] = RateOfReturn(series, w, asOf)
		}
		if bench, ok := benchmarks[primary]; ok {
			row.Beta, row.Alpha = BetaAlpha(portfolio, bench, w, asOf)
		}
		rows = append(rows, row)
	}
	return rows
}
