package model

import "errors"

var (
	// ErrTransport marks a failed network call or a non-2xx response.
	ErrTransport = errors.New("transport error")
	// ErrDataUnavailable marks a response without usable data, or a failure
	// while forecasting or charting it.
	ErrDataUnavailable = errors.New("data unavailable")
)
