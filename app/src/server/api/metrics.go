package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and report series on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	ReportFailures *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dnsfilter_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dnsfilter_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ReportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dnsfilter_report_failures_total",
			Help: "Report queries that failed, including those answered with an empty list",
		}, []string{"report"}),
	}
	m.registry.MustRegister(
		m.Requests,
		m.Duration,
		m.ReportFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) reportFailed(report string) {
	if m == nil {
		return
	}
	m.ReportFailures.WithLabelValues(report).Inc()
}

// Middleware records every request. Unmatched paths share one route label.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the status before we read it
				c.Error(err)
			}

			status := c.Response().Status
			route := c.Path()
			if route == "" || status == http.StatusNotFound {
				route = "unmatched"
			}
			code := strconv.Itoa(status)
			m.Requests.WithLabelValues(route, c.Request().Method, code).Inc()
			m.Duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
