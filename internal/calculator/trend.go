package calculator

import (
	"gonum.org/v1/gonum/stat"

	"PredictaTrade/internal/model"
)

// flatSlope is the relative slope per step below which a series counts as flat.
const flatSlope = 1e-6

// Direction classifies a series by the sign of its least-squares slope,
// so a dip in the middle of a rising forecast does not flip the label.
func Direction(values []float64) model.Trend {
	if len(values) < 2 {
		return model.TrendFlat
	}
	xs := make([]float64, len(values))
	mean := 0.0
	for i, v := range values {
		xs[i] = float64(i)
		mean += v
	}
	mean /= float64(len(values))

	_, slope := stat.LinearRegression(xs, values, nil, false)
	scale := mean
	if scale < 0 {
		scale = -scale
	}
	if scale == 0 {
		scale = 1
	}
	switch {
	case slope/scale > flatSlope:
		return model.TrendRising
	case slope/scale < -flatSlope:
		return model.TrendFalling
	default:
		return model.TrendFlat
	}
}

// SegmentDirections returns the direction of each step values[i] -> values[i+1].
func SegmentDirections(values []float64) []model.Trend {
	if len(values) < 2 {
		return nil
	}
	out := make([]model.Trend, len(values)-1)
	for i := 0; i < len(values)-1; i++ {
		switch {
		case values[i+1] > values[i]:
			out[i] = model.TrendRising
		case values[i+1] < values[i]:
			out[i] = model.TrendFalling
		default:
			out[i] = model.TrendFlat
		}
	}
	return out
}
