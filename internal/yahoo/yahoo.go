package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// DefaultBaseURL is the Yahoo Finance API host used in production.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and resolves symbols into quotes, split events,
// sector and asset class weights, and daily close history.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client.
// The timeout bounds every individual request; zero means no timeout.
func NewFinanceClient(timeout time.Duration) *FinanceClient {
	return &FinanceClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
	}
}

// WithBaseURL returns a copy of the client that talks to another host.
// Used by tests to point the client at an httptest server.
func (c *FinanceClient) WithBaseURL(baseURL string) *FinanceClient {
	return &FinanceClient{
		httpClient: c.httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// SymbolInfo resolves a symbol into its latest quote, full split history and
// classification weights.
//
// The quote comes from a five day chart, splits from a monthly chart over the
// symbol's whole lifetime. The quoteSummary profile is optional: when Yahoo
// refuses it the instrument type from the chart metadata is used instead, so
// funds end up without weightings but the symbol still resolves.
//
// Returns *apperrors.UnknownSymbolError when Yahoo does not know the symbol.
func (c *FinanceClient) SymbolInfo(ctx context.Context, symbol string) (model.SymbolInfo, error) {
	recent, err := c.QueryYahooFiveDaySymbol(ctx, symbol)
	if err != nil {
		return model.SymbolInfo{}, err
	}
	quote := ParseQuote(recent)

	lifetime, err := c.queryChart(ctx, symbol, url.Values{
		"interval": {"1mo"},
		"range":    {"max"},
		"events":   {"split"},
	})
	if err != nil {
		return model.SymbolInfo{}, err
	}
	splits := ParseSplits(lifetime)

	meta := recent.Chart.Result[0].Meta
	profile, err := c.QueryProfile(ctx, symbol)
	if err != nil {
		profile = Profile{QuoteType: meta.InstrumentType}
	}
	if profile.Name == "" {
		profile.Name = firstNonEmpty(meta.LongName, meta.ShortName, symbol)
	}
	sectors, assets := ClassifyProfile(profile)

	return model.SymbolInfo{
		Symbol:    symbol,
		Name:      profile.Name,
		QuoteType: strings.ToUpper(profile.QuoteType),
		Quote:     quote,
		Splits:    splits,
		Sectors:   sectors,
		Assets:    assets,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// History returns the daily closes for a symbol between start and end, both inclusive.
// Days on which Yahoo reports no close are left out.
func (c *FinanceClient) History(ctx context.Context, symbol string, start, end time.Time) ([]model.DatedValue, error) {
	result, err := c.QueryYahooSymbolByDateRange(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	return ParseChart(result)
}

// QueryYahooFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// This is enough to derive the current price and the previous trading day's close.
func (c *FinanceClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	return c.queryChart(ctx, symbol, url.Values{
		"interval": {"1d"},
		"range":    {"5d"},
	})
}

// QueryYahooSymbolByDateRange fetches daily price data for a symbol within a specific date range.
// The end date is inclusive, so the request runs until the start of the following day.
func (c *FinanceClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	return c.queryChart(ctx, symbol, url.Values{
		"interval": {"1d"},
		"period1":  {fmt.Sprint(day(startDate).Unix())},
		"period2":  {fmt.Sprint(day(endDate).AddDate(0, 0, 1).Unix())},
	})
}

// QueryProfile fetches the quote type, sector and fund weightings for a symbol.
func (c *FinanceClient) QueryProfile(ctx context.Context, symbol string) (Profile, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=quoteType,assetProfile,topHoldings",
		c.baseURL, url.PathEscape(symbol))

	var response SummaryResponse
	status, err := c.queryYahoo(ctx, endpoint, &response)
	if err != nil {
		return Profile{}, err
	}
	if status == http.StatusNotFound || isNotFound(response.QuoteSummary.Error) {
		return Profile{}, &apperrors.UnknownSymbolError{Symbol: symbol}
	}
	if response.QuoteSummary.Error != nil {
		return Profile{}, fmt.Errorf("yahoo error: %s", response.QuoteSummary.Error.Description)
	}
	if status != http.StatusOK || len(response.QuoteSummary.Result) == 0 {
		return Profile{}, fmt.Errorf("no profile returned for symbol %s (status %d)", symbol, status)
	}

	return ParseProfile(response), nil
}

// ParseChart converts a raw Yahoo Finance chart response into a daily close series.
// Timestamps are shifted into the exchange's timezone before being truncated to a
// date, so a close at 16:00 New York time lands on its own trading day. When Yahoo
// reports two points for the same day the later one wins.
func ParseChart(yahooResult Response) ([]model.DatedValue, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return nil, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return []model.DatedValue{}, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no close prices returned")
	}
	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("mismatched data lengths")
	}

	series := make([]model.DatedValue, 0, len(closes))
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			continue
		}
		date := exchangeDay(ts, result.Meta.GMTOffset)
		if n := len(series); n > 0 && series[n-1].Date.Equal(date) {
			series[n-1].Value = *closes[i]
			continue
		}
		series = append(series, model.DatedValue{Date: date, Value: *closes[i]})
	}
	return series, nil
}

// ParseQuote derives the current quote from a short daily chart.
// The previous close is the last close dated before the regular market time,
// falling back to the value Yahoo reports in the chart metadata.
func ParseQuote(yahooResult Response) model.Quote {
	result := yahooResult.Chart.Result[0]
	meta := result.Meta

	asOf := time.Now().UTC()
	if meta.RegularMarketTime > 0 {
		asOf = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	marketDay := exchangeDay(asOf.Unix(), meta.GMTOffset)

	previous := meta.PreviousClose
	if previous == 0 {
		previous = meta.ChartPreviousClose
	}
	if series, err := ParseChart(yahooResult); err == nil {
		for i := len(series) - 1; i >= 0; i-- {
			if series[i].Date.Before(marketDay) {
				previous = series[i].Value
				break
			}
		}
	}

	return model.Quote{
		Symbol:        meta.Symbol,
		Price:         meta.RegularMarketPrice,
		PreviousClose: previous,
		Currency:      meta.Currency,
		AsOf:          asOf,
	}
}

// ParseSplits extracts split events from a chart response requested with events=split.
// Events are returned in date order; malformed ratios are dropped.
func ParseSplits(yahooResult Response) []model.SplitEvent {
	if len(yahooResult.Chart.Result) == 0 {
		return []model.SplitEvent{}
	}
	result := yahooResult.Chart.Result[0]

	splits := make([]model.SplitEvent, 0, len(result.Events.Splits))
	for _, s := range result.Events.Splits {
		if s.Numerator <= 0 || s.Denominator <= 0 {
			continue
		}
		splits = append(splits, model.SplitEvent{
			Symbol: result.Meta.Symbol,
			Date:   exchangeDay(s.Date, result.Meta.GMTOffset),
			Ratio:  s.Numerator / s.Denominator,
		})
	}
	sort.Slice(splits, func(i, j int) bool { return splits[i].Date.Before(splits[j].Date) })
	return splits
}

// ParseProfile flattens a quoteSummary response into a Profile.
func ParseProfile(response SummaryResponse) Profile {
	r := response.QuoteSummary.Result[0]

	profile := Profile{
		QuoteType: r.QuoteType.QuoteType,
		Name:      firstNonEmpty(r.QuoteType.LongName, r.QuoteType.ShortName),
		Sector:    r.AssetProfile.Sector,
	}

	switch strings.ToUpper(profile.QuoteType) {
	case QuoteTypeETF, QuoteTypeMutualFund:
		profile.FundSectors = map[string]float64{}
		for _, weighting := range r.TopHoldings.SectorWeightings {
			for key, value := range weighting {
				profile.FundSectors[key] += value.Raw
			}
		}
		h := r.TopHoldings
		profile.FundAssets = map[string]float64{
			"cashPosition":        h.CashPosition.Raw,
			"stockPosition":       h.StockPosition.Raw,
			"bondPosition":        h.BondPosition.Raw,
			"preferredPosition":   h.PreferredPosition.Raw,
			"convertiblePosition": h.ConvertiblePosition.Raw,
			"otherPosition":       h.OtherPosition.Raw,
		}
	}
	return profile
}

func (c *FinanceClient) queryChart(ctx context.Context, symbol string, params url.Values) (Response, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var response Response
	status, err := c.queryYahoo(ctx, endpoint, &response)
	if err != nil {
		return Response{}, err
	}
	if status == http.StatusNotFound || isNotFound(response.Chart.Error) {
		return Response{}, &apperrors.UnknownSymbolError{Symbol: symbol}
	}
	if response.Chart.Error != nil {
		return Response{}, fmt.Errorf("yahoo error: %s", response.Chart.Error.Description)
	}
	if status != http.StatusOK {
		return Response{}, fmt.Errorf("yahoo returned status %d for symbol %s", status, symbol)
	}
	if len(response.Chart.Result) == 0 {
		return Response{}, &apperrors.UnknownSymbolError{Symbol: symbol}
	}
	return response, nil
}

// queryYahoo is an internal helper that executes HTTP requests to Yahoo Finance API.
// It sets the browser-like headers Yahoo expects and decodes the JSON body into out.
// The HTTP status is returned so callers can map 404 to an unknown symbol. A body
// that is not JSON is only an error for successful responses.
func (c *FinanceClient) queryYahoo(ctx context.Context, endpoint string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if err := json.Unmarshal(data, out); err != nil && resp.StatusCode == http.StatusOK {
		return resp.StatusCode, fmt.Errorf("failed to decode yahoo response: %w", err)
	}
	return resp.StatusCode, nil
}

func isNotFound(e *APIError) bool {
	return e != nil && strings.EqualFold(e.Code, "Not Found")
}

func exchangeDay(unix, gmtOffset int64) time.Time {
	return day(time.Unix(unix+gmtOffset, 0).UTC())
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
