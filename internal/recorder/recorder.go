package recorder

import "time"

// RunEvent holds the outcome of one dashboard build.
type RunEvent struct {
	Timestamp    time.Time     `json:"timestamp"`
	Symbol       string        `json:"symbol"`
	Years        int           `json:"years"`
	Provider     string        `json:"provider"`
	Rows         int           `json:"rows"`
	CurrentPrice float64       `json:"current_price"`
	Change       float64       `json:"change"`
	Percent      float64       `json:"percent"`
	LastForecast float64       `json:"last_forecast"`
	Trend        string        `json:"trend"`
	Duration     time.Duration `json:"duration"`
	Error        string        `json:"error,omitempty"`
}

// Recorder persists a log of dashboard builds for later analysis.
type Recorder interface {
	RecordRun(evt *RunEvent) error
	// Recent returns up to limit runs, newest first.
	Recent(limit int) ([]RunEvent, error)
	Close() error
}
