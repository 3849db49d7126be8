package model

// MetricsRow is the risk and return summary for one trailing window.
type MetricsRow struct {
	Window           int                `json:"window"` // Days, 0 for the full history
	Label            string             `json:"label"`
	PortfolioReturn  float64            `json:"portfolioReturn"`
	BenchmarkReturns map[string]float64 `json:"benchmarkReturns"`
	Beta             float64            `json:"beta"`
	Alpha            float64            `json:"alpha"`
	Sharpe           float64            `json:"sharpe"`
}

// AllocationBucket is the share of total market value in one sector or asset class.
type AllocationBucket struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}
