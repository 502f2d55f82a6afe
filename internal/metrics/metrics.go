package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Skyboard
type MetricsRegistry struct {
	// HTTP Metrics (UI service)
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Flights API client
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Dashboard widgets
	WidgetRefreshTotal    *prometheus.CounterVec
	WidgetRefreshDuration *prometheus.HistogramVec
	ChartInstances        prometheus.Gauge
	WorkspacesActive      prometheus.Gauge
}

// NewMetricsRegistry registers all metrics on the default Prometheus registerer
func NewMetricsRegistry() *MetricsRegistry {
	return NewMetricsRegistryWith(prometheus.DefaultRegisterer)
}

// NewMetricsRegistryWith registers all metrics on reg
func NewMetricsRegistryWith(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skyboard_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skyboard_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "skyboard_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skyboard_api_requests_total",
				Help: "Total calls to the flights API by method, endpoint and outcome",
			},
			[]string{"method", "endpoint", "outcome"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skyboard_api_request_duration_seconds",
				Help:    "Flights API call latency in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),

		WidgetRefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skyboard_widget_refresh_total",
				Help: "Widget refreshes by widget, trigger and outcome",
			},
			[]string{"widget", "trigger", "outcome"},
		),
		WidgetRefreshDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skyboard_widget_refresh_duration_seconds",
				Help:    "Widget refresh time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"widget"},
		),
		ChartInstances: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "skyboard_chart_instances",
				Help: "Chart instances currently alive",
			},
		),
		WorkspacesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "skyboard_workspaces_active",
				Help: "Dashboard workspaces currently held in memory",
			},
		),
	}
}
