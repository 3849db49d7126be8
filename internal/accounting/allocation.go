package accounting

import (
	"cmp"
	"slices"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// SectorLabels is the closed sector vocabulary and its display names.
var SectorLabels = map[string]string{
	"realestate":             "Real Estate",
	"consumer_cyclical":      "Consumer Discretionary",
	"basic_materials":        "Materials",
	"consumer_defensive":     "Consumer Staples",
	"technology":             "Technology",
	"communication_services": "Communication Services",
	"financial_services":     "Financials",
	"utilities":              "Utilities",
	"industrials":            "Industrials",
	"energy":                 "Energy",
	"healthcare":             "Healthcare",
}

// AssetLabels is the closed asset class vocabulary and its display names.
var AssetLabels = map[string]string{
	"cashPosition":        "Cash",
	"stockPosition":       "Equities",
	"bondPosition":        "Bonds",
	"preferredPosition":   "Preferred Stock",
	"convertiblePosition": "Convertible Bonds",
	"otherPosition":       "Commodities",
	"crypto":              "Crypto",
}

// Allocate distributes each row's market value across sector and asset buckets
// by the symbol's weights and divides by total market value.
//
// Keys outside SectorLabels or AssetLabels are ignored. When total market value
// is 0 every bucket is 0. Buckets with no exposure are omitted; the rest are
// ordered by weight ascending, then key.
func Allocate(rows []model.PositionRow, sectorWeights, assetWeights map[string]map[string]float64) (sectors, assets []model.AllocationBucket) {
	var total float64
	for _, r := range rows {
		total += r.MarketValue
	}
	return buckets(rows, sectorWeights, SectorLabels, total),
		buckets(rows, assetWeights, AssetLabels, total)
}

func buckets(rows []model.PositionRow, weights map[string]map[string]float64, labels map[string]string, total float64) []model.AllocationBucket {
	sums := make(map[string]float64)
	for _, r := range rows {
		for key, w := range weights[r.Symbol] {
			if _, known := labels[key]; !known || w == 0 {
				continue
			}
			sums[key] += r.MarketValue * w
		}
	}

	out := make([]model.AllocationBucket, 0, len(sums))
	for key, sum := range sums {
		out = append(out, model.AllocationBucket{
			Key:    key,
			Label:  labels[key],
			Weight: safeDiv(sum, total),
		})
	}
	slices.SortFunc(out, func(a, b model.AllocationBucket) int {
		if c := cmp.Compare(a.Weight, b.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
