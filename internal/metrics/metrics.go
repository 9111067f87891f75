// Package metrics exposes prometheus instrumentation for the ingestion
// pipeline, served on the router's /metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingest outcome labels.
const (
	OutcomeAccepted        = "accepted"
	OutcomeInvalid         = "invalid"
	OutcomeRawError        = "raw_error"
	OutcomeRelationalError = "relational_error"
)

var ingestEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "smartpark_ingest_events_total",
		Help: "Sensor event ingest outcomes by kind.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(ingestEvents)
}

// ObserveIngest counts one ingest outcome.
func ObserveIngest(outcome string) {
	ingestEvents.WithLabelValues(outcome).Inc()
}
