// Package chart renders price and forecast series as embeddable ECharts snippets.
package chart

import (
	"fmt"
	"html/template"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"PredictaTrade/internal/calculator"
	"PredictaTrade/internal/model"
)

// ScriptURL is the ECharts bundle the snippets expect on the page.
const ScriptURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

const (
	colorOpen    = "blue"
	colorClose   = "green"
	colorActual  = "blue"
	colorRising  = "green"
	colorFalling = "red"
	colorBand    = "#9e9e9e"
)

// gap is the ECharts placeholder for a missing point.
const gap = "-"

// Snippet is a chart ready to be placed into a page.
type Snippet struct {
	Element template.HTML
	Script  template.HTML
}

// History draws daily open and close prices.
func History(symbol string, records []model.PriceRecord) (Snippet, error) {
	dates := make([]string, len(records))
	opens := make([]opts.LineData, len(records))
	closes := make([]opts.LineData, len(records))
	for i, r := range records {
		dates[i] = r.Date.Format("2006-01-02")
		opens[i] = opts.LineData{Value: r.Open}
		closes[i] = opts.LineData{Value: r.Close}
	}

	line := newLine("history", fmt.Sprintf("%s Stock Price Time Series", symbol), "Price (USD)")
	line.SetXAxis(dates).
		AddSeries("Stock Open", opens, lineStyle(colorOpen, 1, "solid")).
		AddSeries("Stock Close", closes, lineStyle(colorClose, 1, "solid"))
	return render(line)
}

// Forecast draws actual closes against the prediction. Each forecast step is
// coloured by its own direction, split over a rising and a falling series.
func Forecast(symbol string, history []model.PriceRecord, fc *model.Forecast) (Snippet, error) {
	n := len(fc.Records)
	dates := make([]string, n)
	actual := make([]opts.LineData, n)
	lower := make([]opts.LineData, n)
	upper := make([]opts.LineData, n)
	rising := make([]opts.LineData, n)
	falling := make([]opts.LineData, n)

	for i, r := range fc.Records {
		dates[i] = r.Date.Format("2006-01-02")
		actual[i] = opts.LineData{Value: gap}
		if i < len(history) {
			actual[i] = opts.LineData{Value: history[i].Close}
		}
		lower[i] = opts.LineData{Value: r.Lower}
		upper[i] = opts.LineData{Value: r.Upper}
		rising[i] = opts.LineData{Value: gap}
		falling[i] = opts.LineData{Value: gap}
	}

	predicted := model.Predictions(fc.Records)
	for i, dir := range calculator.SegmentDirections(predicted) {
		target := rising
		if dir == model.TrendFalling {
			target = falling
		}
		target[i] = opts.LineData{Value: predicted[i]}
		target[i+1] = opts.LineData{Value: predicted[i+1]}
	}
	if n == 1 {
		rising[0] = opts.LineData{Value: predicted[0]}
	}

	line := newLine("forecast", fmt.Sprintf("%s Stock Price Forecast", symbol), "Price (USD)")
	line.SetXAxis(dates).
		AddSeries("Actual Close", actual, lineStyle(colorActual, 1, "solid")).
		AddSeries("Forecast (rising)", rising, lineStyle(colorRising, 2, "solid")).
		AddSeries("Forecast (falling)", falling, lineStyle(colorFalling, 2, "solid")).
		AddSeries("Lower bound", lower, lineStyle(colorBand, 1, "dashed")).
		AddSeries("Upper bound", upper, lineStyle(colorBand, 1, "dashed"))
	return render(line)
}

// Components draws the trend, weekly and yearly parts of the forecast.
func Components(symbol string, fc *model.Forecast) (Snippet, error) {
	dates := make([]string, len(fc.Records))
	trend := make([]opts.LineData, len(fc.Records))
	weekly := make([]opts.LineData, len(fc.Records))
	yearly := make([]opts.LineData, len(fc.Records))
	for i, r := range fc.Records {
		dates[i] = r.Date.Format("2006-01-02")
		trend[i] = opts.LineData{Value: r.Trend}
		weekly[i] = opts.LineData{Value: r.Weekly}
		yearly[i] = opts.LineData{Value: r.Yearly}
	}

	line := newLine("components", fmt.Sprintf("%s Trend and Seasonality", symbol), "Contribution (USD)")
	line.SetXAxis(dates).
		AddSeries("Trend", trend, lineStyle("#1f77b4", 2, "solid")).
		AddSeries("Weekly", weekly, lineStyle("#ff7f0e", 1, "solid")).
		AddSeries("Yearly", yearly, lineStyle("#2ca02c", 1, "solid"))
	return render(line)
}

func newLine(id, title, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:         id,
			Width:           "100%",
			Height:          "480px",
			BackgroundColor: "white",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "slider", Start: 0, End: 100},
			opts.DataZoom{Type: "inside", Start: 0, End: 100},
		),
	)
	return line
}

func lineStyle(color string, width float32, kind string) charts.SeriesOpts {
	return func(s *charts.SingleSeries) {
		charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: width, Type: kind})(s)
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color})(s)
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})(s)
	}
}

// render turns a chart into page fragments. The library panics on template
// failures, which surface here as data errors.
func render(line *charts.Line) (snip Snippet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: render chart: %v", model.ErrDataUnavailable, r)
		}
	}()
	s := line.RenderSnippet()
	return Snippet{
		Element: template.HTML(s.Element),
		Script:  template.HTML(s.Script),
	}, nil
}
