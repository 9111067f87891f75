// Package health probes both stores independently and reports a composite
// readiness signal. A failing probe means a transient dependency outage, not a
// programming fault, and maps to 503 rather than 500.
package health

import "context"

// Pinger is the minimal liveness check a store exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Report is the readiness state of both stores. Errors is present only when
// OK is false, keyed by store name; it is never an empty-but-present map.
type Report struct {
	OK       bool              `json:"ok"`
	Postgres bool              `json:"postgres"`
	Mongo    bool              `json:"mongo"`
	Errors   map[string]string `json:"errors,omitempty"`
}

type Aggregator struct {
	postgres Pinger
	mongo    Pinger
}

func New(postgres, mongo Pinger) *Aggregator {
	return &Aggregator{postgres: postgres, mongo: mongo}
}

// Check probes both stores and reports ok = postgres AND mongo.
func (a *Aggregator) Check(ctx context.Context) Report {
	r := Report{Postgres: true, Mongo: true}
	errs := map[string]string{}

	if err := a.postgres.Ping(ctx); err != nil {
		r.Postgres = false
		errs["postgres"] = err.Error()
	}
	if err := a.mongo.Ping(ctx); err != nil {
		r.Mongo = false
		errs["mongo"] = err.Error()
	}

	r.OK = r.Postgres && r.Mongo
	if !r.OK {
		r.Errors = errs
	}
	return r
}
