package dashboard

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"PredictaTrade/internal/calculator"
	"PredictaTrade/internal/chart"
	"PredictaTrade/internal/model"
	"PredictaTrade/internal/recorder"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultRunLimit = 20

// Server exposes the dashboard page and JSON API.
type Server struct {
	svc          *Service
	defaultYears int
	templates    *template.Template
}

// NewServer creates a Server. defaultYears applies when a request carries
// no usable years parameter.
func NewServer(svc *Service, defaultYears int) *Server {
	funcs := template.FuncMap{
		"money":   calculator.FormatMoney,
		"percent": calculator.FormatPercent,
		"date":    func(t time.Time) string { return t.Format("2006-01-02") },
		"price":   func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	}
	return &Server{
		svc:          svc,
		defaultYears: model.ClampYears(defaultYears),
		templates:    template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/tickers", s.handleTickers)
		r.Get("/history/{symbol}", s.handleHistory)
		r.Get("/forecast/{symbol}", s.handleForecast)
		r.Get("/runs", s.handleRuns)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Printf("[INFO] %s %s status=%d bytes=%d duration=%s request_id=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

type pageData struct {
	Tickers   []string
	Symbol    string
	Years     int
	MinYears  int
	MaxYears  int
	ScriptURL string
	View      *View
	Error     string
	Detail    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := strings.TrimSpace(q.Get("ticker"))
	if symbol == "" {
		symbol = model.DefaultTicker
	}
	years := s.parseYears(q.Get("years"))

	data := pageData{
		Tickers:   model.Tickers,
		Symbol:    symbol,
		Years:     years,
		MinYears:  model.MinYears,
		MaxYears:  model.MaxYears,
		ScriptURL: chart.ScriptURL,
	}

	view, err := s.svc.Build(r.Context(), symbol, years)
	if err != nil {
		log.Printf("[ERROR] build dashboard %s/%dy: %v", symbol, years, err)
		data.Error = errorKind(err)
		data.Detail = err.Error()
	} else {
		data.View = view
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("[ERROR] render index: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleTickers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"tickers": model.Tickers,
		"default": model.DefaultTicker,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	series, err := s.svc.History(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, series)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	years := s.parseYears(r.URL.Query().Get("years"))
	res, err := s.svc.Forecast(r.Context(), chi.URLParam(r, "symbol"), years)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.svc.RecentRuns(limit)
	if err != nil {
		log.Printf("[ERROR] list runs: %v", err)
		writeError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []recorder.RunEvent{}
	}
	writeJSON(w, map[string]any{"runs": runs})
}

// parseYears falls back to the default for missing or malformed input and
// clamps everything else to the supported range.
func (s *Server) parseYears(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return s.defaultYears
	}
	return model.ClampYears(n)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrDataUnavailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrTransport):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("[ERROR] unexpected service error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
