// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_executed_total",
			Help: "Total number of text commands executed, by intent and response type",
		},
		[]string{"intent", "type"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of text command execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	SalesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_recorded_total",
			Help: "Total number of sales recorded through commands or the REST API",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)
)
