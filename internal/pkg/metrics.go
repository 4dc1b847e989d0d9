package pkg

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 进程内所有指标，注册到独立的 Registry，测试可以反复创建
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	MessagesPosted      prometheus.Counter
	ModerationActions   *prometheus.CounterVec
	SubmissionsResolved *prometheus.CounterVec
	SpotsRelayed        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ows_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ows_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		MessagesPosted: f.NewCounter(prometheus.CounterOpts{
			Name: "ows_messages_posted_total",
			Help: "Channel messages posted",
		}),
		ModerationActions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ows_moderation_actions_total",
			Help: "Moderation actions that changed state",
		}, []string{"action"}),
		SubmissionsResolved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ows_submissions_resolved_total",
			Help: "Inbox submissions resolved by outcome",
		}, []string{"status"}),
		SpotsRelayed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ows_spot_handoffs_total",
			Help: "Spot catalog hand-off attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncMessagesPosted() {
	if m == nil {
		return
	}
	m.MessagesPosted.Inc()
}

func (m *Metrics) IncModeration(action string) {
	if m == nil {
		return
	}
	m.ModerationActions.WithLabelValues(action).Inc()
}

func (m *Metrics) IncSubmissionResolved(status string) {
	if m == nil {
		return
	}
	m.SubmissionsResolved.WithLabelValues(status).Inc()
}

func (m *Metrics) IncSpotRelayed(result string) {
	if m == nil {
		return
	}
	m.SpotsRelayed.WithLabelValues(result).Inc()
}
