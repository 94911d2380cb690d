package model

import "time"

// PriceRecord is one trading day of price history.
type PriceRecord struct {
	Date  time.Time `json:"date"`
	Open  float64   `json:"open"`
	Close float64   `json:"close"`
}

// PriceSeries holds the normalized history for one ticker.
type PriceSeries struct {
	Symbol    string        `json:"symbol"`
	Source    string        `json:"source"`
	Records   []PriceRecord `json:"records"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Closes returns the close prices in date order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Records))
	for i, r := range s.Records {
		closes[i] = r.Close
	}
	return closes
}

// Tail returns at most the last n records.
func Tail[T any](rows []T, n int) []T {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}
