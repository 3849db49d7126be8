package accounting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

func TestRateOfReturn_FlatSeries(t *testing.T) {
	start := day(t, "2020-01-01")
	series := constantSeries(start, 1500, 250)
	asOf := series[len(series)-1].Date

	for _, w := range Windows {
		assert.InDelta(t, 0, RateOfReturn(series, w, asOf), 1e-12, WindowLabel(w))
	}
}

func TestRateOfReturn_InsufficientHistory(t *testing.T) {
	start := day(t, "2024-01-01")
	series := constantSeries(start, 40, 100)
	series[len(series)-1].Value = 200
	asOf := series[len(series)-1].Date

	assert.Zero(t, RateOfReturn(series, 365, asOf))
	assert.Zero(t, RateOfReturn(series, 1095, asOf))
	assert.NotZero(t, RateOfReturn(series, 30, asOf))
	assert.Zero(t, RateOfReturn(nil, WindowAll, asOf))
	assert.Zero(t, RateOfReturn(series[:1], WindowAll, asOf))
}

func TestRateOfReturn_Annualizes(t *testing.T) {
	start := day(t, "2023-01-01")
	values := make([]float64, 366)
	for i := range values {
		values[i] = 100 + 100*float64(i)/365
	}
	series := dailySeries(start, values...)
	asOf := series[len(series)-1].Date

	got := RateOfReturn(series, 365, asOf)
	assert.InDelta(t, math.Pow(2, 365.25/365)-1, got, 1e-9)

	all := RateOfReturn(series, WindowAll, asOf)
	assert.InDelta(t, math.Pow(2, 365.25/365)-1, all, 1e-9)
}

func TestBetaAlpha(t *testing.T) {
	start := day(t, "2024-01-01")
	benchReturns := []float64{0.01, -0.02, 0.015, 0.03, -0.01, 0.005, -0.004, 0.02}

	bench := []float64{100}
	port := []float64{1000}
	for _, r := range benchReturns {
		bench = append(bench, bench[len(bench)-1]*(1+r))
		port = append(port, port[len(port)-1]*(1+2*r+0.001))
	}
	benchSeries := dailySeries(start, bench...)
	portSeries := dailySeries(start, port...)
	asOf := portSeries[len(portSeries)-1].Date

	beta, alpha := BetaAlpha(portSeries, benchSeries, WindowAll, asOf)

	assert.InDelta(t, 2, beta, 1e-9)
	assert.InDelta(t, 0.001, alpha, 1e-9)
}

func TestBetaAlpha_ZeroBenchmarkVariance(t *testing.T) {
	start := day(t, "2024-01-01")
	bench := constantSeries(start, 4, 100)
	port := dailySeries(start, 100, 101, 103.02, 102)
	asOf := port[len(port)-1].Date

	beta, alpha := BetaAlpha(port, bench, WindowAll, asOf)

	returns := DailyReturns(port)
	var mean float64
	for _, r := range returns {
		mean += r.Value
	}
	mean /= float64(len(returns))

	assert.Zero(t, beta)
	assert.InDelta(t, mean, alpha, 1e-12)
}

func TestBetaAlpha_InsufficientHistory(t *testing.T) {
	start := day(t, "2024-01-01")
	port := dailySeries(start, 100, 101, 99)
	bench := dailySeries(start, 10, 11, 12)
	asOf := port[len(port)-1].Date

	beta, alpha := BetaAlpha(port, bench, 30, asOf)
	assert.Zero(t, beta)
	assert.Zero(t, alpha)

	beta, alpha = BetaAlpha(port[:2], bench[:2], WindowAll, asOf)
	assert.Zero(t, beta)
	assert.Zero(t, alpha)
}

func TestSharpeRatio(t *testing.T) {
	start := day(t, "2024-01-01")
	series := dailySeries(start, 100, 101, 104.03)
	asOf := series[len(series)-1].Date

	t.Run("no risk free rate", func(t *testing.T) {
		// Daily returns 1% and 3%: mean 2%, sample std sqrt(2)/100.
		want := 0.02 / (math.Sqrt2 / 100) * math.Sqrt(252)
		assert.InDelta(t, want, SharpeRatio(series, WindowAll, asOf, nil), 1e-6)
	})

	t.Run("risk free rate is subtracted", func(t *testing.T) {
		rf := dailySeries(start, 0.001, 0.001, 0.001)
		want := (0.02 - 0.001) / (math.Sqrt2 / 100) * math.Sqrt(252)
		assert.InDelta(t, want, SharpeRatio(series, WindowAll, asOf, rf), 1e-6)
	})

	t.Run("zero volatility", func(t *testing.T) {
		flat := constantSeries(start, 10, 100)
		assert.Zero(t, SharpeRatio(flat, WindowAll, flat[len(flat)-1].Date, nil))
	})

	t.Run("insufficient history", func(t *testing.T) {
		assert.Zero(t, SharpeRatio(series, 365, asOf, nil))
	})
}

func TestDailyRiskFreeFromYield(t *testing.T) {
	start := day(t, "2024-01-01")
	got := DailyRiskFreeFromYield(dailySeries(start, 4.2, math.NaN(), 5.04))

	require.Len(t, got, 2)
	assert.InDelta(t, 4.2/100/252, got[0].Value, 1e-15)
	assert.InDelta(t, 0.0002, got[1].Value, 1e-15)
}

func TestBuildMetricsTable(t *testing.T) {
	start := day(t, "2023-01-01")
	portfolio := constantSeries(start, 400, 100)
	benchmarks := map[string][]model.DatedValue{
		"^GSPC": constantSeries(start, 400, 4000),
		"^DJI":  constantSeries(start, 400, 30000),
	}
	asOf := portfolio[len(portfolio)-1].Date

	rows := BuildMetricsTable(portfolio, benchmarks, "^GSPC", nil, asOf)

	require.Len(t, rows, len(Windows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
		assert.Len(t, r.BenchmarkReturns, 2)
		assert.InDelta(t, 0, r.PortfolioReturn, 1e-12)
	}
	assert.Equal(t, []string{"1M", "3M", "6M", "1Y", "3Y", "All"}, labels)
}
