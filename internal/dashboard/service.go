// Package dashboard serves the forecast page and its JSON API.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"PredictaTrade/internal/calculator"
	"PredictaTrade/internal/chart"
	"PredictaTrade/internal/collector"
	"PredictaTrade/internal/forecast"
	"PredictaTrade/internal/model"
	"PredictaTrade/internal/recorder"
)

// tailRows is how many rows the raw and forecast tables show.
const tailRows = 5

// Result is the numeric outcome of one forecast run.
type Result struct {
	Symbol   string             `json:"symbol"`
	Years    int                `json:"years"`
	Series   *model.PriceSeries `json:"-"`
	Forecast *model.Forecast    `json:"forecast"`
	Change   model.PriceChange  `json:"change"`
	Trend    model.Trend        `json:"trend"`
}

// View is everything the page needs for one ticker and horizon.
type View struct {
	*Result
	RawTail      []model.PriceRecord
	ForecastTail []model.ForecastRecord

	HistoryChart    chart.Snippet
	ForecastChart   chart.Snippet
	ComponentsChart chart.Snippet
}

// Service runs fetch, forecast, summary and chart steps for a request.
type Service struct {
	Collector  *collector.Collector
	Forecaster forecast.Forecaster
	Recorder   recorder.Recorder

	now          func() time.Time
	historyChart func(symbol string, records []model.PriceRecord) (chart.Snippet, error)
}

// NewService creates a Service. A nil recorder disables run logging.
func NewService(col *collector.Collector, fc forecast.Forecaster, rec recorder.Recorder) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Service{
		Collector:    col,
		Forecaster:   fc,
		Recorder:     rec,
		now:          time.Now,
		historyChart: chart.History,
	}
}

// History returns the memoized or freshly fetched history for symbol.
func (s *Service) History(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	return s.Collector.Collect(ctx, symbol)
}

// Forecast fetches history, predicts years ahead and summarizes the result.
// Each call is logged to the recorder, failures included.
func (s *Service) Forecast(ctx context.Context, symbol string, years int) (res *Result, err error) {
	evt := s.newRun(symbol, years)
	defer s.record(evt, &err)

	return s.forecast(ctx, symbol, years, evt)
}

// Build runs the forecast and renders the three charts. The run is logged
// once, after the charts, so a chart failure is recorded as a failure.
func (s *Service) Build(ctx context.Context, symbol string, years int) (v *View, err error) {
	evt := s.newRun(symbol, years)
	defer s.record(evt, &err)

	res, err := s.forecast(ctx, symbol, years, evt)
	if err != nil {
		return nil, err
	}

	v = &View{
		Result:       res,
		RawTail:      model.Tail(res.Series.Records, tailRows),
		ForecastTail: model.Tail(res.Forecast.Records, tailRows),
	}
	if v.HistoryChart, err = s.historyChart(symbol, res.Series.Records); err != nil {
		return nil, err
	}
	if v.ForecastChart, err = chart.Forecast(symbol, res.Series.Records, res.Forecast); err != nil {
		return nil, err
	}
	if v.ComponentsChart, err = chart.Components(symbol, res.Forecast); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) newRun(symbol string, years int) *recorder.RunEvent {
	return &recorder.RunEvent{
		Timestamp: s.now(),
		Symbol:    symbol,
		Years:     model.ClampYears(years),
		Provider:  s.Collector.Fetcher.Name(),
	}
}

// record logs evt with err as its outcome. A panic unwinding through the
// caller is recorded as a failed run and then re-raised.
func (s *Service) record(evt *recorder.RunEvent, errp *error) {
	r := recover()
	err := *errp
	if r != nil {
		err = fmt.Errorf("panic: %v", r)
	}
	evt.Duration = s.now().Sub(evt.Timestamp)
	if err != nil {
		evt.Error = err.Error()
	}
	if rerr := s.Recorder.RecordRun(evt); rerr != nil {
		log.Printf("[ERROR] record run: %v", rerr)
	}
	if r != nil {
		panic(r)
	}
}

func (s *Service) forecast(ctx context.Context, symbol string, years int, evt *recorder.RunEvent) (*Result, error) {
	years = model.ClampYears(years)

	series, err := s.Collector.Collect(ctx, symbol)
	if err != nil {
		return nil, err
	}
	evt.Rows = len(series.Records)

	fc, err := s.Forecaster.Forecast(symbol, series.Records, forecast.HorizonDays(years))
	if err != nil {
		return nil, err
	}

	change, err := calculator.CalculatePriceChange(series.Records)
	if err != nil {
		return nil, fmt.Errorf("price change %s: %w", symbol, err)
	}

	future := model.Predictions(fc.Future())
	trend := calculator.Direction(future)

	evt.CurrentPrice = change.Current
	evt.Change = change.Change
	evt.Percent = change.Percent
	evt.Trend = string(trend)
	if len(future) > 0 {
		evt.LastForecast = future[len(future)-1]
	}

	return &Result{
		Symbol:   symbol,
		Years:    years,
		Series:   series,
		Forecast: fc,
		Change:   change,
		Trend:    trend,
	}, nil
}

// RecentRuns returns the latest recorded runs, newest first.
func (s *Service) RecentRuns(limit int) ([]recorder.RunEvent, error) {
	return s.Recorder.Recent(limit)
}

// errorKind names the failure class shown to users.
func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrTransport):
		return "The data provider could not be reached."
	case errors.Is(err, model.ErrDataUnavailable):
		return "No usable data is available for this request."
	default:
		return "The request could not be completed."
	}
}
