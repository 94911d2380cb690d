package model

// Tickers is the fixed list of symbols the dashboard offers.
var Tickers = []string{
	"GOOG", "AAPL", "MSFT", "GME",
	"RELIANCE.NS", "TCS.NS", "INFY.NS", "HDFCBANK.NS", "BAJFINANCE.NS",
	"IDFC.NS", "OLAELEC.NS", "MRF.NS", "LICI.NS",
	"NVDA",
}

// DefaultTicker is preselected when a request names no symbol.
const DefaultTicker = "GOOG"

// Forecast horizon bounds, in years.
const (
	MinYears    = 1
	MaxYears    = 5
	DaysPerYear = 365
)

// IsKnownTicker reports whether symbol is on the allow-list.
func IsKnownTicker(symbol string) bool {
	for _, t := range Tickers {
		if t == symbol {
			return true
		}
	}
	return false
}

// ClampYears limits a horizon to MinYears..MaxYears.
func ClampYears(years int) int {
	if years < MinYears {
		return MinYears
	}
	if years > MaxYears {
		return MaxYears
	}
	return years
}
