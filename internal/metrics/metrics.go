// Package metrics exposes Prometheus collectors for sync runs and the HTTP
// API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
	"github.com/riskibarqy/ground-setup/internal/usecase"
)

const namespace = "ground_setup"

type Registry struct {
	registry *prometheus.Registry

	SyncRunsTotal       *prometheus.CounterVec
	SyncDuration        prometheus.Histogram
	FixturesFetched     prometheus.Counter
	FixtureRows         prometheus.Gauge
	RosterSize          prometheus.Gauge
	WeekViewsRebuilt    prometheus.Counter
	LastSuccessfulSync  prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		SyncRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Fixture syncs by trigger and outcome.",
			},
			[]string{"trigger", "status"},
		),
		SyncDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Wall time of one fixture sync.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		FixturesFetched: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fixtures_fetched_total",
				Help:      "Fixture records kept from the remote source.",
			},
		),
		FixtureRows: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "fixture_table_rows",
				Help:      "Rows in the persisted fixture table after the last sync.",
			},
		),
		RosterSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "roster_teams",
				Help:      "Club teams in the roster after the last sync.",
			},
		),
		WeekViewsRebuilt: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "week_views_rebuilt_total",
				Help:      "Weekly ground views replaced by syncs.",
			},
		),
		LastSuccessfulSync: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_successful_sync_timestamp_seconds",
				Help:      "Unix time the last successful sync finished.",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// ObserveSync implements usecase.SyncObserver.
func (r *Registry) ObserveSync(result usecase.SyncResult) {
	r.SyncRunsTotal.WithLabelValues(result.Trigger, string(result.Status)).Inc()
	if !result.FinishedAt.IsZero() && !result.StartedAt.IsZero() {
		r.SyncDuration.Observe(result.FinishedAt.Sub(result.StartedAt).Seconds())
	}
	if result.Status != syncrun.StatusSuccess {
		return
	}

	r.FixturesFetched.Add(float64(result.Fetched))
	r.FixtureRows.Set(float64(result.FixtureRows))
	r.RosterSize.Set(float64(result.RosterSize))
	r.WeekViewsRebuilt.Add(float64(len(result.WeekStarts)))
	r.LastSuccessfulSync.Set(float64(result.FinishedAt.Unix()))
}

func (r *Registry) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
