package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"evdash/internal/engine"
)

var (
	datasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evdash_dataset_rows",
		Help: "Number of records in the dataset currently served",
	})

	datasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evdash_dataset_loads_total",
		Help: "Dataset loads by outcome",
	}, []string{"state"})

	viewDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evdash_view_duration_seconds",
		Help:    "Time spent filtering and aggregating one request",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"endpoint"})

	viewMatches = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evdash_view_matched_records",
		Help:    "Records matching the search term per view",
		Buckets: prometheus.ExponentialBuckets(1, 10, 7),
	})
)

// ObserveDataset is a store observer recording every published dataset.
func ObserveDataset(ds *engine.Dataset) {
	datasetRows.Set(float64(ds.Len()))
	datasetLoads.WithLabelValues(string(ds.State())).Inc()
}

// ViewTimer measures one view computation; call ObserveDuration when done.
func ViewTimer(endpoint string) *prometheus.Timer {
	return prometheus.NewTimer(viewDuration.WithLabelValues(endpoint))
}

func ObserveMatches(n int) {
	viewMatches.Observe(float64(n))
}
