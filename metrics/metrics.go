// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mediafolder"

// Folder action results.
const (
	ResultSuccess  = "success"
	ResultNotFound = "not_found"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Folder action metrics
var (
	// FolderActionsTotal counts service operations by action and result
	FolderActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "folder_actions_total",
			Help:      "Total media folder actions by action and result",
		},
		[]string{"action", "result"},
	)

	FolderActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "folder_action_duration_seconds",
			Help:      "Media folder action duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"action"},
	)
)

// Orphan configuration cleanup metrics
var (
	OrphanConfigurationsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_configurations_deleted_total",
			Help:      "Total folder configurations removed because no folder referenced them",
		},
	)

	// OrphanCleanupRuns counts cleanup runs by status (success/error)
	OrphanCleanupRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_cleanup_runs_total",
			Help:      "Total orphan configuration cleanup runs by status",
		},
		[]string{"status"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)
)

// ObserveFolderAction records one finished service operation.
func ObserveFolderAction(action, result string, started time.Time) {
	FolderActionsTotal.WithLabelValues(action, result).Inc()
	FolderActionDuration.WithLabelValues(action).Observe(time.Since(started).Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
