package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"PredictaTrade/internal/model"
)

func closes(vals ...float64) []model.PriceRecord {
	recs := make([]model.PriceRecord, len(vals))
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range vals {
		recs[i] = model.PriceRecord{Date: d.AddDate(0, 0, i), Open: v, Close: v}
	}
	return recs
}

func TestCalculatePriceChange(t *testing.T) {
	tests := []struct {
		name        string
		prev, cur   float64
		change, pct float64
	}{
		{"five percent up", 100.00, 105.00, 5.00, 5.00},
		{"down", 200.00, 190.00, -10.00, -5.00},
		{"unchanged", 42.42, 42.42, 0, 0},
		{"rounding", 3.00, 3.10, 0.10, 3.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc, err := CalculatePriceChange(closes(1, tt.prev, tt.cur))
			if err != nil {
				t.Fatalf("CalculatePriceChange: %v", err)
			}
			if pc.Current != tt.cur || pc.Previous != tt.prev {
				t.Errorf("current/previous = %.2f/%.2f", pc.Current, pc.Previous)
			}
			if pc.Change != tt.change {
				t.Errorf("change = %v, want %v", pc.Change, tt.change)
			}
			if pc.Percent != tt.pct {
				t.Errorf("percent = %v, want %v", pc.Percent, tt.pct)
			}
		})
	}
}

func TestCalculatePriceChange_NotEnoughData(t *testing.T) {
	bad := [][]model.PriceRecord{
		nil, closes(10), closes(0, 5),
		closes(1, 100, math.NaN()), closes(math.Inf(1), 100), closes(100, math.Inf(-1)),
	}
	for _, recs := range bad {
		if _, err := CalculatePriceChange(recs); !errors.Is(err, model.ErrDataUnavailable) {
			t.Errorf("%v: expected ErrDataUnavailable, got %v", recs, err)
		}
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatPercent(5); got != "5.00%" {
		t.Errorf("FormatPercent(5) = %q", got)
	}
	if got := FormatMoney(105); got != "$105.00" {
		t.Errorf("FormatMoney(105) = %q", got)
	}
	if got := FormatMoney(-2.5); got != "-$2.50" {
		t.Errorf("FormatMoney(-2.5) = %q", got)
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		values []float64
		want   model.Trend
	}{
		{[]float64{1, 2, 3, 4}, model.TrendRising},
		{[]float64{4, 3, 2, 1}, model.TrendFalling},
		{[]float64{5, 5, 5}, model.TrendFlat},
		{[]float64{7}, model.TrendFlat},
		// ends lower than it starts but climbs overall
		{[]float64{10, 11, 12, 13, 14, 15, 16, 9.5}, model.TrendRising},
	}
	for _, tt := range tests {
		if got := Direction(tt.values); got != tt.want {
			t.Errorf("Direction(%v) = %s, want %s", tt.values, got, tt.want)
		}
	}
}

func TestSegmentDirections(t *testing.T) {
	got := SegmentDirections([]float64{1, 2, 2, 1})
	want := []model.Trend{model.TrendRising, model.TrendFlat, model.TrendFalling}
	if len(got) != len(want) {
		t.Fatalf("got %d segments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %s, want %s", i, got[i], want[i])
		}
	}
	if SegmentDirections([]float64{1}) != nil {
		t.Error("single value has no segments")
	}
}
