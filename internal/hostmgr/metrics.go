package hostmgr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts ingest outcomes and tracks the live scoreboard size.
type Metrics struct {
	SamplesIngested prometheus.Counter
	SamplesDropped  prometheus.Counter
	WriteFailures   prometheus.Counter
	ScoreboardSize  prometheus.Gauge
	IngestDuration  prometheus.Histogram
}

// NewMetrics registers the ingest metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SamplesIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleetmon_samples_ingested_total",
			Help: "Snapshots accepted and fanned out to the store.",
		}),
		SamplesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleetmon_samples_dropped_total",
			Help: "Snapshots rejected for missing host identity.",
		}),
		WriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "fleetmon_store_write_failures_total",
			Help: "Failed inserts across all telemetry tables.",
		}),
		ScoreboardSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fleetmon_scoreboard_hosts",
			Help: "Hosts currently tracked on the in-memory scoreboard.",
		}),
		IngestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetmon_ingest_duration_seconds",
			Help:    "Wall time to process one snapshot, store writes included.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
