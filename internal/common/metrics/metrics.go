// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kvk_api_requests_total",
			Help: "Total number of registry API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	APIRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kvk_api_rate_limited_total",
			Help: "Total number of 429 responses received from the registry",
		},
	)

	RecordsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_records_upserted_total",
			Help: "Total number of records written to the mirror by record type",
		},
		[]string{"record_type"},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirror_records_skipped_total",
			Help: "Records skipped because they were already mirrored or recently fetched",
		},
		[]string{"record_type", "reason"},
	)

	SyncCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sync_cycle_duration_seconds",
			Help: "Duration of one daemon sync cycle in seconds",
		},
		[]string{"app"},
	)

	SyncCycleRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_records_processed_total",
			Help: "Records processed per app and mode",
		},
		[]string{"app", "mode"},
	)
)
