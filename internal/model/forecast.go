package model

import "time"

// Trend describes the direction of a price series.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendFlat    Trend = "flat"
)

// ForecastRecord is one predicted point together with its additive components.
type ForecastRecord struct {
	Date      time.Time `json:"date"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
	Trend     float64   `json:"trend"`
	Weekly    float64   `json:"weekly"`
	Yearly    float64   `json:"yearly"`
}

// Forecast covers every history date followed by Periods future calendar days.
type Forecast struct {
	Symbol  string           `json:"symbol"`
	Periods int              `json:"periods"`
	History int              `json:"history"`
	Records []ForecastRecord `json:"records"`
}

// Future returns only the records after the last history date.
func (f *Forecast) Future() []ForecastRecord {
	if f.History >= len(f.Records) {
		return nil
	}
	return f.Records[f.History:]
}

// Predictions returns the predicted values of recs in order.
func Predictions(recs []ForecastRecord) []float64 {
	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = r.Predicted
	}
	return out
}

// PriceChange compares the two most recent closes.
type PriceChange struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Change   float64 `json:"change"`
	Percent  float64 `json:"percent"`
}
