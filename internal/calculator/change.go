package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"PredictaTrade/internal/model"
)

var hundred = decimal.NewFromInt(100)

// CalculatePriceChange compares the last two closes. Amounts are rounded to
// cents and the percentage to two decimals.
func CalculatePriceChange(records []model.PriceRecord) (model.PriceChange, error) {
	if len(records) < 2 {
		return model.PriceChange{}, fmt.Errorf("%w: need 2 closes for price change, have %d", model.ErrDataUnavailable, len(records))
	}
	for _, v := range []float64{records[len(records)-1].Close, records[len(records)-2].Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return model.PriceChange{}, fmt.Errorf("%w: close %v is not a number", model.ErrDataUnavailable, v)
		}
	}
	current := decimal.NewFromFloat(records[len(records)-1].Close)
	previous := decimal.NewFromFloat(records[len(records)-2].Close)
	if previous.IsZero() {
		return model.PriceChange{}, fmt.Errorf("%w: previous close is zero", model.ErrDataUnavailable)
	}

	change := current.Sub(previous)
	percent := change.Div(previous).Mul(hundred)

	return model.PriceChange{
		Current:  current.Round(2).InexactFloat64(),
		Previous: previous.Round(2).InexactFloat64(),
		Change:   change.Round(2).InexactFloat64(),
		Percent:  percent.Round(2).InexactFloat64(),
	}, nil
}

// FormatMoney renders an amount as $X.XX, with the sign ahead of the symbol.
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}
