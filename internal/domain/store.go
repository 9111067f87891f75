package domain

import (
	"context"
	"time"
)

// RawEvent is the document shape of the append-only raw log. Sensor-centric
// generations fill the sensor fields, the lot generation fills the lot fields.
// Records are immutable once written; duplicates are permitted and expected.
type RawEvent struct {
	SensorID       any            `bson:"sensor_id,omitempty" json:"sensor_id,omitempty"`
	SiteID         string         `bson:"estacionamiento_id,omitempty" json:"estacionamiento_id,omitempty"`
	Estado         State          `bson:"estado,omitempty" json:"estado,omitempty"`
	LotID          int64          `bson:"lot_id,omitempty" json:"lot_id,omitempty"`
	OccupiedSpaces *int           `bson:"occupied_spaces,omitempty" json:"occupied_spaces,omitempty"`
	TotalSpaces    *int           `bson:"total_spaces,omitempty" json:"total_spaces,omitempty"`
	TS             time.Time      `bson:"ts" json:"ts"`
	Payload        map[string]any `bson:"payload,omitempty" json:"payload,omitempty"`
}

// Record is one normalized row of registro_data. Rows are append-only; the
// current state of a sensor is the most recent row, never a mutated one.
type Record struct {
	SensorID    string     `json:"sensor_id"`
	SiteID      string     `json:"estacionamiento_id"`
	Estado      State      `json:"estado"`
	HoraLibre   *time.Time `json:"hora_libre"`
	HoraOcupado *time.Time `json:"hora_ocupado"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Shape selects which normalized table the relational projector targets.
type Shape string

const (
	ShapeRegistro  Shape = "registro"
	ShapeOccupancy Shape = "occupancy"
)

// Filter is the optional conjunction of equality predicates for normalized
// listings. Zero values mean "no predicate".
type Filter struct {
	SiteID   string
	SensorID string
	Limit    int
}

// RawStore is the append-only document store holding the raw event log.
type RawStore interface {
	Append(ctx context.Context, ev RawEvent) error
	// RecentEvents returns up to limit raw events, newest first.
	RecentEvents(ctx context.Context, limit int) ([]RawEvent, error)
	Ping(ctx context.Context) error
}

// RecordStore is the relational store holding the normalized projection.
type RecordStore interface {
	// Project derives and inserts one normalized row for the event. It never
	// updates rows in place.
	Project(ctx context.Context, in Ingested) error
	// List returns normalized rows matching the filter, newest first.
	List(ctx context.Context, f Filter) ([]Record, error)
	// Recent returns up to limit normalized rows, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	// RecentPoints returns up to limit occupancy snapshots, newest first.
	// Only meaningful for the occupancy shape.
	RecentPoints(ctx context.Context, limit int) ([]OccupancyPoint, error)
	Ping(ctx context.Context) error
}
