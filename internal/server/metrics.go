package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/j-veylop/speed-dashboard/internal/models"
)

// metrics is registered on a per-server registry so several servers can
// coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	latestDownload  prometheus.Gauge
	latestUpload    prometheus.Gauge
	latestPing      prometheus.Gauge
	latestTimestamp prometheus.Gauge
	readings        prometheus.Gauge
	loadOutcomes    *prometheus.GaugeVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		latestDownload: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "speeddash_latest_download_mbps",
			Help: "Download throughput of the most recent speed test",
		}),
		latestUpload: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "speeddash_latest_upload_mbps",
			Help: "Upload throughput of the most recent speed test",
		}),
		latestPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "speeddash_latest_ping_ms",
			Help: "Latency of the most recent speed test",
		}),
		latestTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "speeddash_latest_reading_timestamp_seconds",
			Help: "Unix time of the most recent speed test",
		}),
		readings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "speeddash_readings",
			Help: "Number of readings in the current snapshot",
		}),
		loadOutcomes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "speeddash_load_outcomes",
			Help: "Records by loader outcome in the current snapshot",
		}, []string{"kind"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "speeddash_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "speeddash_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.latestDownload,
		m.latestUpload,
		m.latestPing,
		m.latestTimestamp,
		m.readings,
		m.loadOutcomes,
		m.requestsTotal,
		m.requestDuration,
	)
	return m
}

// observe copies the snapshot state into the gauges.
func (m *metrics) observe(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	m.readings.Set(float64(snap.Count()))
	m.loadOutcomes.WithLabelValues("parsed").Set(float64(snap.Report.Parsed))
	m.loadOutcomes.WithLabelValues("recovered").Set(float64(snap.Report.Recovered))
	m.loadOutcomes.WithLabelValues("skipped").Set(float64(snap.Report.Skipped))

	if snap.Latest != nil {
		m.latestDownload.Set(snap.Latest.DownloadMbps)
		m.latestUpload.Set(snap.Latest.UploadMbps)
		m.latestPing.Set(snap.Latest.Ping)
		m.latestTimestamp.Set(float64(snap.Latest.Time.Unix()))
	}
}

// statusRecorder captures the response code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request counts and latency per route template.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
