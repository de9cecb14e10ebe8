package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	timerUpdates *prometheus.CounterVec
	logins       *prometheus.CounterVec
}

// newMetrics registers the server collectors on reg. Each server gets its
// own registry, so several can coexist in one process.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routinr_http_requests_total",
			Help: "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routinr_http_request_duration_seconds",
			Help:    "HTTP request latency by route template.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		timerUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routinr_routine_timer_updates_total",
			Help: "Countdown progress pushes received, split by whether they finished the routine.",
		}, []string{"finished"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routinr_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
	}
}
