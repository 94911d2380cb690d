package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"PredictaTrade/internal/model"
)

// weekdaySeries builds n weekday closes following a line with a small weekly
// wobble and some deterministic jitter.
func weekdaySeries(n int, slope float64) []model.PriceRecord {
	recs := make([]model.PriceRecord, 0, n)
	d := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	for len(recs) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			i := float64(len(recs))
			c := 100 + slope*i + 0.5*math.Sin(float64(wd)) + 0.3*math.Sin(1.3*i)
			recs = append(recs, model.PriceRecord{Date: d, Open: c - 0.2, Close: c})
		}
		d = d.AddDate(0, 0, 1)
	}
	return recs
}

func TestForecast_Shape(t *testing.T) {
	history := weekdaySeries(600, 0.1)
	f := NewAdditive(DefaultOptions())

	fc, err := f.Forecast("AAPL", history, 365)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(fc.Records) != len(history)+365 {
		t.Fatalf("expected %d records, got %d", len(history)+365, len(fc.Records))
	}
	if fc.History != len(history) || fc.Periods != 365 || fc.Symbol != "AAPL" {
		t.Errorf("unexpected header %+v", fc)
	}
	for i, rec := range history {
		if !fc.Records[i].Date.Equal(rec.Date) {
			t.Fatalf("record %d date %v, want %v", i, fc.Records[i].Date, rec.Date)
		}
	}
	future := fc.Future()
	last := history[len(history)-1].Date
	for h, rec := range future {
		if want := last.AddDate(0, 0, h+1); !rec.Date.Equal(want) {
			t.Fatalf("future %d date %v, want %v", h, rec.Date, want)
		}
		if !(rec.Lower < rec.Predicted && rec.Predicted < rec.Upper) {
			t.Fatalf("future %d bounds out of order: %+v", h, rec)
		}
		if d := rec.Predicted - (rec.Trend + rec.Weekly + rec.Yearly); math.Abs(d) > 1e-9 {
			t.Fatalf("future %d components do not add up (off by %g)", h, d)
		}
	}
	if future[len(future)-1].Predicted <= history[len(history)-1].Close {
		t.Errorf("rising history should extrapolate upward: last close %.2f, final prediction %.2f",
			history[len(history)-1].Close, future[len(future)-1].Predicted)
	}
	first, final := future[0], future[len(future)-1]
	if final.Upper-final.Lower <= first.Upper-first.Lower {
		t.Error("interval should widen with the horizon")
	}
}

func TestForecast_HorizonOnlyChangesLength(t *testing.T) {
	history := weekdaySeries(700, -0.05)
	f := NewAdditive(DefaultOptions())

	short, err := f.Forecast("MSFT", history, HorizonDays(1))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	long, err := f.Forecast("MSFT", history, HorizonDays(5))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(long.Records)-len(short.Records) != 4*365 {
		t.Fatalf("length difference = %d, want %d", len(long.Records)-len(short.Records), 4*365)
	}
	for i := range short.Records {
		if short.Records[i] != long.Records[i] {
			t.Fatalf("record %d differs between horizons: %+v vs %+v", i, short.Records[i], long.Records[i])
		}
	}
}

func TestForecast_NotEnoughHistory(t *testing.T) {
	f := NewAdditive(DefaultOptions())
	if _, err := f.Forecast("GME", weekdaySeries(f.Params(), 1), 30); !errors.Is(err, model.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}

	same := make([]model.PriceRecord, 40)
	for i := range same {
		same[i] = model.PriceRecord{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: float64(i)}
	}
	if _, err := f.Forecast("GME", same, 30); !errors.Is(err, model.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable for zero span, got %v", err)
	}
	if _, err := f.Forecast("GME", weekdaySeries(300, 1), -1); !errors.Is(err, model.ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable for negative horizon, got %v", err)
	}
}

func TestHorizonDays(t *testing.T) {
	tests := map[int]int{0: 365, 1: 365, 3: 1095, 5: 1825, 9: 1825}
	for years, want := range tests {
		if got := HorizonDays(years); got != want {
			t.Errorf("HorizonDays(%d) = %d, want %d", years, got, want)
		}
	}
}

func TestNewAdditive_Defaults(t *testing.T) {
	a := NewAdditive(Options{})
	if a.opts != DefaultOptions() {
		t.Errorf("zero options should fall back to defaults, got %+v", a.opts)
	}
	b := NewAdditive(Options{WeeklyOrder: 2, YearlyOrder: 0, IntervalWidth: 0.95, Ridge: 0.5})
	if b.Params() != 6 {
		t.Errorf("Params() = %d, want 6", b.Params())
	}
}
