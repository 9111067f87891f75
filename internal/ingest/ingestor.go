// Package ingest sequences the dual-store write path: validate, append to the
// raw log, then project into the relational store. The raw log is the
// write-ahead record — if it cannot be written the event is treated as
// not-yet-happened and the projection is never attempted. A projection failure
// after a durable raw write leaves a documented inconsistency window; the raw
// write is never rolled back.
package ingest

import (
	"context"
	"time"

	"github.com/R0SEWT/smartParkSystem/internal/domain"
)

type Ingestor struct {
	codec domain.Codec
	raw   domain.RawStore
	rel   domain.RecordStore
	now   func() time.Time
}

func New(codec domain.Codec, raw domain.RawStore, rel domain.RecordStore) *Ingestor {
	return &Ingestor{codec: codec, raw: raw, rel: rel, now: time.Now}
}

// Result reports the canonical timestamp and accepted state of an ingested
// event. Estado is empty for lot-level events.
type Result struct {
	TS     time.Time
	Estado domain.State
}

// Ingest runs the write pipeline for one request body. No retries, no
// rollback: errors carry a kind distinguishing "never recorded" (validation,
// raw-store failure) from "partially recorded" (relational failure).
func (ing *Ingestor) Ingest(ctx context.Context, body []byte) (Result, error) {
	in, err := ing.codec.Decode(body)
	if err != nil {
		return Result{}, err
	}

	// The substitution happens exactly once so both stores agree on when the
	// event occurred.
	ts := in.Timestamp()
	if ts.IsZero() {
		ts = ing.now().UTC()
	}
	in.SetTimestamp(ts)

	if err := ing.raw.Append(ctx, in.Raw()); err != nil {
		return Result{}, domain.E(domain.KindRawStore, "mongo insert", err)
	}

	if err := ing.rel.Project(ctx, in); err != nil {
		// The raw record is already durable at this point. The raw log stays
		// authoritative; a reconciliation pass can backfill the projection.
		return Result{}, domain.E(domain.KindRelationalWrite, "pg insert", err)
	}

	return Result{TS: ts, Estado: in.State()}, nil
}
