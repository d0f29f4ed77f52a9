// Package server exposes the dashboard data as a JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/j-veylop/speed-dashboard/internal/logger"
	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/stats"
)

// defaultHistogramBins matches the dashboard histograms.
const defaultHistogramBins = 25

// Source provides the data served by the API.
type Source interface {
	Snapshot() *models.Snapshot
	Reload(ctx context.Context) (*models.Snapshot, error)
}

// Server is the HTTP dashboard API.
type Server struct {
	source     Source
	addr       string
	metrics    *metrics
	handler    http.Handler
	httpServer *http.Server
	now        func() time.Time
}

// New builds the router for source. Call Run to start listening.
func New(source Source, addr string) *Server {
	s := &Server{
		source:  source,
		addr:    addr,
		metrics: newMetrics(),
		now:     time.Now,
	}

	router := mux.NewRouter()
	router.Use(s.metrics.instrument)

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.Handle("/metrics", s.metricsHandler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/latest", s.handleLatest).Methods("GET")
	api.HandleFunc("/readings", s.handleReadings).Methods("GET")
	api.HandleFunc("/summary", s.handleSummary).Methods("GET")
	api.HandleFunc("/histogram", s.handleHistogram).Methods("GET")
	api.HandleFunc("/reload", s.handleReload).Methods("POST")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = corsHandler.Handler(router)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) metricsHandler() http.Handler {
	inner := promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.observe(s.source.Snapshot())
		inner.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.source.Snapshot()
	body := map[string]any{
		"status":   "ok",
		"loaded":   snap != nil,
		"readings": snap.Count(),
	}
	if snap != nil {
		body["built_at"] = snap.BuiltAt
	}
	respondJSON(w, http.StatusOK, body)
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	if snap.Latest == nil {
		respondError(w, http.StatusNotFound, "no readings")
		return
	}
	respondJSON(w, http.StatusOK, snap.Latest)
}

func (s *Server) handleReadings(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	tr, err := models.ParseTimeRange(r.URL.Query().Get("range"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings := stats.Filter(snap.Readings, tr, s.now())
	if readings == nil {
		readings = []models.Reading{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"range":    tr.Key(),
		"count":    len(readings),
		"readings": readings,
	})
}

// groupings maps the group query parameter to its summarizer.
var groupings = map[string]func([]models.Reading) models.Summaries{
	"all": stats.SummarizeAll,
	"date": func(r []models.Reading) models.Summaries {
		return stats.SummarizeBy(r, stats.ByDate, false)
	},
	"weekday": func(r []models.Reading) models.Summaries {
		return stats.SummarizeBy(r, stats.ByWeekday, true)
	},
	"hour": func(r []models.Reading) models.Summaries {
		return stats.SummarizeBy(r, stats.ByHour, false)
	},
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	query := r.URL.Query()
	group := query.Get("group")
	if group == "" {
		group = "all"
	}
	summarize, found := groupings[group]
	if !found {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown group %q", group))
		return
	}
	tr, err := models.ParseTimeRange(query.Get("range"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries := summarize(stats.Filter(snap.Readings, tr, s.now()))
	respondJSON(w, http.StatusOK, map[string]any{
		"group":   group,
		"range":   tr.Key(),
		"metrics": summaries,
	})
}

func (s *Server) handleHistogram(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	query := r.URL.Query()
	metric := models.MetricDownload
	if name := query.Get("metric"); name != "" {
		m, err := models.ParseMetric(name)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		metric = m
	}
	bins := defaultHistogramBins
	if raw := query.Get("bins"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			respondError(w, http.StatusBadRequest, "bins must be between 1 and 500")
			return
		}
		bins = n
	}
	tr, err := models.ParseTimeRange(query.Get("range"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hist := stats.Histogram(stats.Values(stats.Filter(snap.Readings, tr, s.now()), metric), bins)
	if hist == nil {
		hist = []stats.Bin{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"metric": metric,
		"unit":   metric.Unit(),
		"range":  tr.Key(),
		"bins":   hist,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.source.Reload(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("reload failed: %v", err))
		return
	}
	s.metrics.observe(snap)
	respondJSON(w, http.StatusOK, map[string]any{
		"readings": snap.Count(),
		"days":     snap.Days,
		"report":   snap.Report,
	})
}

// snapshot writes a 503 when nothing has been loaded yet.
func (s *Server) snapshot(w http.ResponseWriter) (*models.Snapshot, bool) {
	snap := s.source.Snapshot()
	if snap == nil {
		respondError(w, http.StatusServiceUnavailable, "no data loaded")
		return nil, false
	}
	return snap, true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
