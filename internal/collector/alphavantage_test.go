package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"PredictaTrade/internal/model"
)

const avSample = `{
  "Meta Data": {"2. Symbol": "AAPL"},
  "Time Series (Daily)": {
    "2024-03-05": {"1. open": "170.7600", "2. high": "172.0400", "3. low": "169.6200", "4. close": "170.1200", "5. volume": "95132355"},
    "2024-03-01": {"1. open": "179.5500", "2. high": "180.5300", "3. low": "177.3800", "4. close": "179.6600", "5. volume": "73563082"},
    "2024-03-04": {"1. open": "176.1500", "2. high": "176.9000", "3. low": "173.7900", "4. close": "175.1000", "5. volume": "81510101"}
  }
}`

func newAVServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var got http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = *r
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestAlphaVantage_SortedAndComplete(t *testing.T) {
	srv, req := newAVServer(t, http.StatusOK, avSample)
	f := NewAlphaVantageFetcher(srv.URL, "test-key", "")

	records, err := f.FetchDaily(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if !records[i].Date.After(records[i-1].Date) {
			t.Errorf("dates not strictly increasing at %d: %v then %v", i, records[i-1].Date, records[i].Date)
		}
	}
	if records[0].Open != 179.55 || records[0].Close != 179.66 {
		t.Errorf("first record = %+v", records[0])
	}

	q := req.URL.Query()
	want := map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     "AAPL",
		"outputsize": "full",
		"apikey":     "test-key",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("query %s = %q, want %q", k, q.Get(k), v)
		}
	}
}

func TestAlphaVantage_MissingSeries(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"rate limited", `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`},
		{"invalid call", `{"Error Message": "Invalid API call."}`},
		{"not json", `<html>maintenance</html>`},
		{"bad number", `{"Time Series (Daily)": {"2024-03-01": {"1. open": "n/a", "4. close": "1"}}}`},
		{"bad date", `{"Time Series (Daily)": {"March 1": {"1. open": "1", "4. close": "1"}}}`},
		{"NaN", `{"Time Series (Daily)": {"2024-03-01": {"1. open": "NaN", "4. close": "1"}}}`},
		{"Inf", `{"Time Series (Daily)": {"2024-03-01": {"1. open": "1", "4. close": "Inf"}}}`},
		{"+Inf", `{"Time Series (Daily)": {"2024-03-01": {"1. open": "+Inf", "4. close": "-Inf"}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newAVServer(t, http.StatusOK, tt.body)
			f := NewAlphaVantageFetcher(srv.URL, "k", "")
			_, err := f.FetchDaily(context.Background(), "AAPL")
			if !errors.Is(err, model.ErrDataUnavailable) {
				t.Fatalf("expected ErrDataUnavailable, got %v", err)
			}
			if errors.Is(err, model.ErrTransport) {
				t.Errorf("error should not also be a transport error: %v", err)
			}
		})
	}
}

func TestAlphaVantage_Non2xx(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusBadGateway} {
		srv, _ := newAVServer(t, status, avSample)
		f := NewAlphaVantageFetcher(srv.URL, "k", "")
		_, err := f.FetchDaily(context.Background(), "AAPL")
		if !errors.Is(err, model.ErrTransport) {
			t.Errorf("status %d: expected ErrTransport, got %v", status, err)
		}
	}
}

func TestAlphaVantage_NetworkFault(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewAlphaVantageFetcher(url, "k", "")
	_, err := f.FetchDaily(context.Background(), "AAPL")
	if !errors.Is(err, model.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
