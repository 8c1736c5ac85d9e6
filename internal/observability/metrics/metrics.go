// Package metrics exposes prometheus instruments for the portal.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics records request counts and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recruit_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recruit_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// GinMiddleware instruments inbound requests.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// PortalMetrics counts the domain events staff watch during a round.
type PortalMetrics struct {
	applicationsCreated   prometheus.Counter
	applicationsSubmitted prometheus.Counter
	emailsSent            *prometheus.CounterVec
	tokenValidations      *prometheus.CounterVec
}

func NewPortalMetrics() *PortalMetrics {
	return &PortalMetrics{
		applicationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recruit_applications_created_total",
			Help: "Applications created in draft.",
		}),
		applicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recruit_applications_submitted_total",
			Help: "Applications submitted.",
		}),
		emailsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recruit_emails_sent_total",
			Help: "Outbound notification emails by template and outcome.",
		}, []string{"template", "outcome"}),
		tokenValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recruit_token_validations_total",
			Help: "Verification and reset token validations by outcome.",
		}, []string{"kind", "outcome"}),
	}
}

func (m *PortalMetrics) RecordApplicationCreated() {
	if m == nil {
		return
	}
	m.applicationsCreated.Inc()
}

func (m *PortalMetrics) RecordApplicationSubmitted() {
	if m == nil {
		return
	}
	m.applicationsSubmitted.Inc()
}

func (m *PortalMetrics) RecordEmailSent(template string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.emailsSent.WithLabelValues(template, outcome).Inc()
}

func (m *PortalMetrics) RecordTokenValidation(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "denied"
	}
	m.tokenValidations.WithLabelValues(kind, outcome).Inc()
}
