package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portfolio/api/models"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"

	labelOther   = "other"
	labelAllTime = "all"
)

// Metrics holds all Prometheus collectors of the API.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	EventsTrackedTotal *prometheus.CounterVec
	StatsRequestsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		EventsTrackedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_analytics_events_tracked_total",
				Help: "Total number of analytics events submitted for tracking",
			},
			[]string{"event_type", "status"},
		),
		StatsRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_analytics_stats_requests_total",
				Help: "Total number of analytics stats requests",
			},
			[]string{"time_range", "status"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.EventsTrackedTotal,
		m.StatsRequestsTotal,
	)

	return m
}

// ObserveTrack records one tracking attempt.
// Event types outside the known set share the "other" label.
func (m *Metrics) ObserveTrack(eventType string, err error) {
	switch eventType {
	case models.EventTypePageView, models.EventTypeClick:
	default:
		eventType = labelOther
	}
	m.EventsTrackedTotal.WithLabelValues(eventType, status(err)).Inc()
}

// ObserveStats records one stats computation.
// Ranges other than 7d and 30d are reported as "all".
func (m *Metrics) ObserveStats(timeRange string, err error) {
	switch timeRange {
	case "7d", "30d":
	default:
		timeRange = labelAllTime
	}
	m.StatsRequestsTotal.WithLabelValues(timeRange, status(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}
