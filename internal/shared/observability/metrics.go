package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "envinfer_parsing_seconds",
		Help:    "Time spent parsing a source unit.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	UnitsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "envinfer_units_processed_total",
		Help: "Total number of source units processed, by kind and outcome.",
	}, []string{"kind", "status"})

	DependencyPartitionSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "envinfer_dependency_partition_size",
		Help: "Number of top-level modules in each dependency partition.",
	}, []string{"partition"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "envinfer_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	RegistryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "envinfer_registry_requests_total",
		Help: "Total number of package registry lookups, by outcome.",
	}, []string{"status"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "envinfer_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
