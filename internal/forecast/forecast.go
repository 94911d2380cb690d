// Package forecast produces forward price predictions from daily history.
package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"PredictaTrade/internal/model"
)

// Forecaster predicts closes for every history date plus periods future days.
type Forecaster interface {
	Forecast(symbol string, history []model.PriceRecord, periods int) (*model.Forecast, error)
}

// Options tunes the additive model.
type Options struct {
	WeeklyOrder   int     `yaml:"weekly_order"`
	YearlyOrder   int     `yaml:"yearly_order"`
	IntervalWidth float64 `yaml:"interval_width"`
	Ridge         float64 `yaml:"ridge"`
}

// DefaultOptions mirrors the usual daily-data setup: 3 weekly and 10 yearly
// Fourier pairs with an 80% interval.
func DefaultOptions() Options {
	return Options{WeeklyOrder: 3, YearlyOrder: 10, IntervalWidth: 0.8, Ridge: 1.0}
}

const (
	daySeconds = 24 * 60 * 60
	weekDays   = 7.0
	yearDays   = 365.25
)

// Additive fits close = trend + weekly + yearly by penalized least squares.
// The penalty applies to seasonal terms only; weekday-only history leaves the
// weekly terms underdetermined without it.
type Additive struct {
	opts Options
}

// NewAdditive creates an additive forecaster, filling unset options with defaults.
func NewAdditive(opts Options) *Additive {
	def := DefaultOptions()
	if opts.WeeklyOrder < 0 {
		opts.WeeklyOrder = 0
	}
	if opts.YearlyOrder < 0 {
		opts.YearlyOrder = 0
	}
	if opts.WeeklyOrder == 0 && opts.YearlyOrder == 0 {
		opts.WeeklyOrder, opts.YearlyOrder = def.WeeklyOrder, def.YearlyOrder
	}
	if opts.IntervalWidth <= 0 || opts.IntervalWidth >= 1 {
		opts.IntervalWidth = def.IntervalWidth
	}
	if opts.Ridge <= 0 {
		opts.Ridge = def.Ridge
	}
	return &Additive{opts: opts}
}

// Params is the number of fitted coefficients.
func (a *Additive) Params() int {
	return 2 + 2*a.opts.WeeklyOrder + 2*a.opts.YearlyOrder
}

// fit holds the fitted model over one history.
type fit struct {
	start time.Time
	span  float64
	beta  *mat.VecDense
	sigma float64
}

// Forecast fits the model on history closes and predicts periods calendar days
// past the last history date.
func (a *Additive) Forecast(symbol string, history []model.PriceRecord, periods int) (fc *model.Forecast, err error) {
	defer func() {
		if r := recover(); r != nil {
			fc = nil
			err = fmt.Errorf("%w: forecast %s: %v", model.ErrDataUnavailable, symbol, r)
		}
	}()

	if periods < 0 {
		return nil, fmt.Errorf("%w: forecast %s: negative horizon %d", model.ErrDataUnavailable, symbol, periods)
	}
	f, err := a.fit(history)
	if err != nil {
		return nil, fmt.Errorf("%w: forecast %s: %v", model.ErrDataUnavailable, symbol, err)
	}

	n := len(history)
	z := distuv.UnitNormal.Quantile(0.5 + a.opts.IntervalWidth/2)
	fc = &model.Forecast{
		Symbol:  symbol,
		Periods: periods,
		History: n,
		Records: make([]model.ForecastRecord, 0, n+periods),
	}
	for _, rec := range history {
		fc.Records = append(fc.Records, a.predict(f, rec.Date, z*f.sigma))
	}
	last := history[n-1].Date
	for h := 1; h <= periods; h++ {
		width := z * f.sigma * math.Sqrt(1+float64(h)/float64(n))
		fc.Records = append(fc.Records, a.predict(f, last.AddDate(0, 0, h), width))
	}
	return fc, nil
}

func (a *Additive) fit(history []model.PriceRecord) (*fit, error) {
	n, p := len(history), a.Params()
	if n <= p {
		return nil, fmt.Errorf("need more than %d rows, have %d", p, n)
	}
	start := history[0].Date
	span := history[n-1].Date.Sub(start).Hours() / 24
	if span <= 0 {
		return nil, fmt.Errorf("history spans no time")
	}

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, rec := range history {
		x.SetRow(i, a.features(rec.Date, start, span))
		y.SetVec(i, rec.Close)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j := 2; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+a.opts.Ridge)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	beta := mat.NewVecDense(p, nil)
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, beta)
	resid := make([]float64, n)
	for i := range resid {
		resid[i] = y.AtVec(i) - fitted.AtVec(i)
	}
	return &fit{start: start, span: span, beta: beta, sigma: stat.StdDev(resid, nil)}, nil
}

// features lays out [1, t, weekly sin/cos..., yearly sin/cos...] for date.
// Seasonal phases use the absolute day number so they do not depend on
// where the history starts.
func (a *Additive) features(date, start time.Time, span float64) []float64 {
	row := make([]float64, 0, a.Params())
	row = append(row, 1, date.Sub(start).Hours()/24/span)
	day := float64(date.Unix()) / daySeconds
	row = appendFourier(row, day, weekDays, a.opts.WeeklyOrder)
	row = appendFourier(row, day, yearDays, a.opts.YearlyOrder)
	return row
}

func appendFourier(row []float64, day, period float64, order int) []float64 {
	for k := 1; k <= order; k++ {
		arg := 2 * math.Pi * float64(k) * day / period
		row = append(row, math.Sin(arg), math.Cos(arg))
	}
	return row
}

func (a *Additive) predict(f *fit, date time.Time, halfWidth float64) model.ForecastRecord {
	row := a.features(date, f.start, f.span)
	beta := f.beta.RawVector().Data

	trend := beta[0]*row[0] + beta[1]*row[1]
	weekly, yearly := 0.0, 0.0
	w := 2 + 2*a.opts.WeeklyOrder
	for j := 2; j < w; j++ {
		weekly += beta[j] * row[j]
	}
	for j := w; j < len(row); j++ {
		yearly += beta[j] * row[j]
	}
	yhat := trend + weekly + yearly
	return model.ForecastRecord{
		Date:      date,
		Predicted: yhat,
		Lower:     yhat - halfWidth,
		Upper:     yhat + halfWidth,
		Trend:     trend,
		Weekly:    weekly,
		Yearly:    yearly,
	}
}

// HorizonDays converts a year count into forecast periods.
func HorizonDays(years int) int {
	return model.ClampYears(years) * model.DaysPerYear
}
