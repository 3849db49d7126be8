package yahoo

import "strings"

// Quote types as reported by Yahoo.
const (
	QuoteTypeEquity     = "EQUITY"
	QuoteTypeETF        = "ETF"
	QuoteTypeMutualFund = "MUTUALFUND"
	QuoteTypeCurrency   = "CURRENCY"
	QuoteTypeCrypto     = "CRYPTOCURRENCY"
	QuoteTypeIndex      = "INDEX"
)

// ClassifyProfile derives sector and asset class weights from a symbol profile.
//
//   - Equity: its own sector at weight 1, all in stockPosition
//   - ETF or mutual fund: the fund's published sector and asset class weightings
//   - Currency: all in cashPosition
//   - Cryptocurrency: all in crypto
//
// Anything else, including indexes, gets no weights.
func ClassifyProfile(p Profile) (sectors, assets map[string]float64) {
	sectors = map[string]float64{}
	assets = map[string]float64{}

	switch strings.ToUpper(p.QuoteType) {
	case QuoteTypeEquity:
		if key := SectorKey(p.Sector); key != "" {
			sectors[key] = 1
		}
		assets["stockPosition"] = 1
	case QuoteTypeETF, QuoteTypeMutualFund:
		for k, v := range p.FundSectors {
			if v != 0 {
				sectors[k] = v
			}
		}
		for k, v := range p.FundAssets {
			if v != 0 {
				assets[k] = v
			}
		}
	case QuoteTypeCurrency:
		assets["cashPosition"] = 1
	case QuoteTypeCrypto:
		assets["crypto"] = 1
	}
	return sectors, assets
}

// SectorKey converts a display sector such as "Consumer Cyclical" into the
// key used by fund sector weightings, e.g. "consumer_cyclical".
func SectorKey(sector string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(sector)), " ", "_")
	if key == "real_estate" {
		return "realestate"
	}
	return key
}
