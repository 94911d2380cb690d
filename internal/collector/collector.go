package collector

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"PredictaTrade/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Days    int
	Records []model.PriceRecord
	Err     error

	mu    sync.Mutex
	calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(_ context.Context, _ string) ([]model.PriceRecord, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Records != nil {
		return m.Records, nil
	}
	days := m.Days
	if days == 0 {
		days = 500
	}
	return GenerateMockRecords(m.Price, days, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), nil
}

// Calls returns how many times FetchDaily ran.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// GenerateMockRecords builds count consecutive weekday records ending before end.
func GenerateMockRecords(basePrice float64, count int, end time.Time) []model.PriceRecord {
	if basePrice == 0 {
		basePrice = 100
	}
	records := make([]model.PriceRecord, 0, count)
	day := end.AddDate(0, 0, -1)
	for len(records) < count {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			records = append(records, model.PriceRecord{Date: day})
		}
		day = day.AddDate(0, 0, -1)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	for i := range records {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		records[i].Open = p * 0.999
		records[i].Close = p
	}
	return records
}

// Collector validates tickers and memoizes the last fetched series.
type Collector struct {
	Fetcher Fetcher

	mu   sync.Mutex
	last *model.PriceSeries
	now  func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, now: time.Now}
}

// Collect returns the daily history for symbol, fetching it unless it is
// the ticker fetched last.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	if !model.IsKnownTicker(symbol) {
		return nil, fmt.Errorf("%w: unknown ticker %q", model.ErrDataUnavailable, symbol)
	}

	if series := c.memo(symbol); series != nil {
		return series, nil
	}

	// Fetch without the lock held. Concurrent misses may fetch twice and the
	// last one to finish becomes the memo.
	records, err := c.Fetcher.FetchDaily(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s returned no rows for %s", model.ErrDataUnavailable, c.Fetcher.Name(), symbol)
	}
	for i, rec := range records {
		if !finite(rec.Open) || !finite(rec.Close) {
			return nil, fmt.Errorf("%w: %s non-finite price on %s", model.ErrDataUnavailable,
				symbol, rec.Date.Format("2006-01-02"))
		}
		if i > 0 && !rec.Date.After(records[i-1].Date) {
			return nil, fmt.Errorf("%w: %s dates not increasing at %s", model.ErrDataUnavailable,
				symbol, rec.Date.Format("2006-01-02"))
		}
	}

	series := &model.PriceSeries{
		Symbol:    symbol,
		Source:    c.Fetcher.Name(),
		Records:   records,
		FetchedAt: c.now(),
	}
	c.mu.Lock()
	c.last = series
	c.mu.Unlock()

	log.Printf("[INFO] fetched %d rows for %s from %s", len(records), symbol, c.Fetcher.Name())
	return series, nil
}

func (c *Collector) memo(symbol string) *model.PriceSeries {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil && c.last.Symbol == symbol {
		return c.last
	}
	return nil
}

// Invalidate drops the memoized series so the next Collect fetches again.
func (c *Collector) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != nil {
		log.Printf("[INFO] dropping memoized history for %s", c.last.Symbol)
	}
	c.last = nil
}
