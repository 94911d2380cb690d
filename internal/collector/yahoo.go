package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PredictaTrade/internal/model"
)

// DefaultYahooURL is the Yahoo Finance chart endpoint.
const DefaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// HistoryStart is the first day requested from providers that take a range.
var HistoryStart = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	now     func() time.Time
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, proxyURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YahooFetcher{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL),
		now:     time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily requests daily bars from HistoryStart until now.
func (f *YahooFetcher) FetchDaily(ctx context.Context, symbol string) ([]model.PriceRecord, error) {
	u := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		f.BaseURL, url.PathEscape(symbol), HistoryStart.Unix(), f.now().Unix())

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", model.ErrTransport, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch: %v", model.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo read body: %v", model.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: yahoo: status %d, body: %s", model.ErrTransport, resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: yahoo decode: %v", model.ErrDataUnavailable, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo api error: %s", model.ErrDataUnavailable, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no data returned for %s", model.ErrDataUnavailable, symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	if len(quote.Open) != len(result.Timestamp) || len(quote.Close) != len(result.Timestamp) {
		return nil, fmt.Errorf("%w: yahoo: quote length mismatch for %s", model.ErrDataUnavailable, symbol)
	}

	records := make([]model.PriceRecord, 0, len(result.Timestamp))
	seen := make(map[time.Time]bool, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if quote.Open[i] == nil || quote.Close[i] == nil {
			continue // null bars (holidays etc.)
		}
		t := time.Unix(ts, 0).UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if seen[day] {
			continue
		}
		seen[day] = true
		records = append(records, model.PriceRecord{
			Date:  day,
			Open:  *quote.Open[i],
			Close: *quote.Close[i],
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: yahoo: only null bars for %s", model.ErrDataUnavailable, symbol)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}
