package yahoo

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata and the latest quote
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Events.Splits: Split events keyed by timestamp, when requested
//   - Chart.Result[].Indicators: Price arrays; missing closes arrive as null
//   - Chart.Error: Optional error object from Yahoo API
type Response struct {
	Chart struct {
		Result []struct {
			Meta       Meta    `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Events     Events  `json:"events"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *APIError `json:"error"`
	} `json:"chart"`
}

// Meta is the symbol metadata block of a chart response.
type Meta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	ExchangeName       string  `json:"exchangeName"`
	InstrumentType     string  `json:"instrumentType"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	GMTOffset          int64   `json:"gmtoffset"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
	PreviousClose      float64 `json:"previousClose"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
}

// Events holds corporate actions attached to a chart response.
type Events struct {
	Splits map[string]Split `json:"splits"`
}

// Split is a single split event. Numerator/Denominator is the share multiplier.
type Split struct {
	Date        int64   `json:"date"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
	SplitRatio  string  `json:"splitRatio"`
}

// APIError is the error object Yahoo embeds in otherwise successful HTTP responses.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// SummaryResponse represents the raw JSON response from the quoteSummary API.
type SummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			QuoteType struct {
				QuoteType string `json:"quoteType"`
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
			} `json:"quoteType"`
			AssetProfile struct {
				Sector string `json:"sector"`
			} `json:"assetProfile"`
			TopHoldings struct {
				CashPosition        RawValue              `json:"cashPosition"`
				StockPosition       RawValue              `json:"stockPosition"`
				BondPosition        RawValue              `json:"bondPosition"`
				PreferredPosition   RawValue              `json:"preferredPosition"`
				ConvertiblePosition RawValue              `json:"convertiblePosition"`
				OtherPosition       RawValue              `json:"otherPosition"`
				SectorWeightings    []map[string]RawValue `json:"sectorWeightings"`
			} `json:"topHoldings"`
		} `json:"result"`
		Error *APIError `json:"error"`
	} `json:"quoteSummary"`
}

// RawValue is Yahoo's {"raw": n, "fmt": "..."} number wrapper.
type RawValue struct {
	Raw float64 `json:"raw"`
}

// Profile is the parsed classification input for a symbol.
type Profile struct {
	QuoteType string
	Name      string
	Sector    string
	// FundSectors and FundAssets are populated for ETFs and mutual funds.
	FundSectors map[string]float64
	FundAssets  map[string]float64
}
