package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

func sumWeights(buckets []model.AllocationBucket) float64 {
	var total float64
	for _, b := range buckets {
		total += b.Weight
	}
	return total
}

func TestAllocate_SingleCategorizedPosition(t *testing.T) {
	rows := []model.PositionRow{{Symbol: "AAPL", MarketValue: 1234.56}}
	sectors := map[string]map[string]float64{"AAPL": {"technology": 1}}
	assets := map[string]map[string]float64{"AAPL": {"stockPosition": 1}}

	s, a := Allocate(rows, sectors, assets)

	assert.InDelta(t, 1, sumWeights(s), 1e-9)
	assert.InDelta(t, 1, sumWeights(a), 1e-9)
	require.Len(t, s, 1)
	assert.Equal(t, "Technology", s[0].Label)
	assert.Equal(t, "Equities", a[0].Label)
}

func TestAllocate_FundSpansBuckets(t *testing.T) {
	rows := []model.PositionRow{
		{Symbol: "VTI", MarketValue: 300},
		{Symbol: "AAPL", MarketValue: 100},
	}
	sectors := map[string]map[string]float64{
		"VTI":  {"technology": 0.3, "healthcare": 0.2, "financial_services": 0.5},
		"AAPL": {"technology": 1},
	}
	assets := map[string]map[string]float64{
		"VTI":  {"stockPosition": 0.9, "cashPosition": 0.1},
		"AAPL": {"stockPosition": 1},
	}

	s, a := Allocate(rows, sectors, assets)

	bySector := map[string]float64{}
	for _, b := range s {
		bySector[b.Key] = b.Weight
	}
	assert.InDelta(t, (90.0+100.0)/400.0, bySector["technology"], 1e-9)
	assert.InDelta(t, 60.0/400.0, bySector["healthcare"], 1e-9)
	assert.InDelta(t, 150.0/400.0, bySector["financial_services"], 1e-9)

	require.Len(t, a, 2)
	assert.Equal(t, "cashPosition", a[0].Key, "ascending by weight")
	assert.InDelta(t, 30.0/400.0, a[0].Weight, 1e-9)
	assert.InDelta(t, 370.0/400.0, a[1].Weight, 1e-9)
}

func TestAllocate_UnknownBucketsIgnored(t *testing.T) {
	rows := []model.PositionRow{{Symbol: "X", MarketValue: 100}}
	sectors := map[string]map[string]float64{"X": {"technology": 0.5, "space_mining": 0.5}}

	s, a := Allocate(rows, sectors, nil)

	require.Len(t, s, 1)
	assert.Equal(t, "technology", s[0].Key)
	assert.InDelta(t, 0.5, s[0].Weight, 1e-9)
	assert.Empty(t, a)
}

func TestAllocate_ZeroTotal(t *testing.T) {
	rows := []model.PositionRow{{Symbol: "X", MarketValue: 0}}
	sectors := map[string]map[string]float64{"X": {"energy": 1}}

	s, _ := Allocate(rows, sectors, nil)

	require.Len(t, s, 1)
	assert.Zero(t, s[0].Weight)
}
