package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"PredictaTrade/internal/model"
)

// DefaultAlphaVantageURL is the public Alpha Vantage query endpoint.
const DefaultAlphaVantageURL = "https://www.alphavantage.co/query"

const avSeriesField = "Time Series (Daily)"

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage TIME_SERIES_DAILY API.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAlphaVantageFetcher creates a new fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	return &AlphaVantageFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avResponse is the subset of the TIME_SERIES_DAILY payload we read. The
// informational fields are only present when the API refuses a request.
type avResponse struct {
	Series       map[string]avBar `json:"Time Series (Daily)"`
	Note         string           `json:"Note"`
	Information  string           `json:"Information"`
	ErrorMessage string           `json:"Error Message"`
}

type avBar struct {
	Open  string `json:"1. open"`
	Close string `json:"4. close"`
}

func (r *avResponse) reason() string {
	switch {
	case r.ErrorMessage != "":
		return r.ErrorMessage
	case r.Note != "":
		return r.Note
	case r.Information != "":
		return r.Information
	}
	return ""
}

// FetchDaily issues one request for the full daily history of symbol.
func (f *AlphaVantageFetcher) FetchDaily(ctx context.Context, symbol string) ([]model.PriceRecord, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", "full")
	q.Set("apikey", f.APIKey)

	req, err := http.NewRequestWithContext(ctx, "GET", f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", model.ErrTransport, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: alphavantage fetch: %v", model.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: alphavantage read body: %v", model.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: alphavantage: status %d, body: %s", model.ErrTransport, resp.StatusCode, string(body))
	}

	var payload avResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: alphavantage decode: %v", model.ErrDataUnavailable, err)
	}
	if len(payload.Series) == 0 {
		if reason := payload.reason(); reason != "" {
			return nil, fmt.Errorf("%w: no %q for %s: %s", model.ErrDataUnavailable, avSeriesField, symbol, reason)
		}
		return nil, fmt.Errorf("%w: no %q for %s", model.ErrDataUnavailable, avSeriesField, symbol)
	}

	records := make([]model.PriceRecord, 0, len(payload.Series))
	for day, bar := range payload.Series {
		rec, err := parseAVBar(day, bar)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrDataUnavailable, symbol, err)
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

func parseAVBar(day string, bar avBar) (model.PriceRecord, error) {
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		return model.PriceRecord{}, fmt.Errorf("parse date %q: %w", day, err)
	}
	open, err := strconv.ParseFloat(bar.Open, 64)
	if err != nil {
		return model.PriceRecord{}, fmt.Errorf("parse open on %s: %w", day, err)
	}
	closePrice, err := strconv.ParseFloat(bar.Close, 64)
	if err != nil {
		return model.PriceRecord{}, fmt.Errorf("parse close on %s: %w", day, err)
	}
	if !finite(open) || !finite(closePrice) {
		return model.PriceRecord{}, fmt.Errorf("non-finite price on %s: open %q close %q", day, bar.Open, bar.Close)
	}
	return model.PriceRecord{Date: date, Open: open, Close: closePrice}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
