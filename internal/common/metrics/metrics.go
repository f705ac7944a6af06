// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExecutionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_executions_completed_total",
			Help: "Total number of checklist executions reaching a terminal state",
		},
		[]string{"target_kind", "status"},
	)

	ExecutionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_executions_failed_total",
			Help: "Total number of execution requests rejected or failed",
		},
		[]string{"target_kind", "error_code"},
	)

	ExecutionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "checklist_executions_active",
			Help: "Number of executions currently being scored",
		},
		[]string{"target_kind"},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "checklist_scoring_duration_seconds",
			Help: "End-to-end duration of one execution request",
		},
		[]string{"target_kind"},
	)

	IncidentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_incidents_created_total",
			Help: "Total number of automatically generated incidents",
		},
		[]string{"severity"},
	)

	SinkPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_sink_publish_failures_total",
			Help: "Total number of incident sink publish failures",
		},
		[]string{"sink"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_catalog_cache_hits_total",
			Help: "Catalog cache hits by entity type",
		},
		[]string{"entity"},
	)

	CatalogCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_catalog_cache_misses_total",
			Help: "Catalog cache misses by entity type",
		},
		[]string{"entity"},
	)
)
