package domain

import (
	"encoding/json"
	"time"
)

// State is the occupancy state of a single parking spot. The wire values are
// kept in the deployment's original Spanish form.
type State string

const (
	StateOccupied State = "ocupado"
	StateFree     State = "libre"
)

// Valid reports whether s is one of the recognized state literals.
func (s State) Valid() bool {
	return s == StateOccupied || s == StateFree
}

// Event is the canonical, generation-independent form of a sensor reading.
// Every wire schema generation is converted into this shape at the boundary
// before any store is touched.
type Event struct {
	// SensorID is the canonical identifier. Wire integer identifiers are
	// formatted as decimal strings.
	SensorID string
	// WireID is the identifier exactly as it appeared on the wire (int64 or
	// string), preserved for the raw log.
	WireID any
	SiteID string
	State  State
	// Timestamp is zero when the sender supplied none; the ingestor fills it
	// exactly once so both stores agree on when the event occurred.
	Timestamp time.Time
	Payload   map[string]any
}

// StateTimes derives the hora_libre / hora_ocupado pair from the state and the
// event timestamp. Exactly one of the two is non-nil.
func (ev *Event) StateTimes() (horaLibre, horaOcupado *time.Time) {
	ts := ev.Timestamp
	if ev.State == StateFree {
		return &ts, nil
	}
	return nil, &ts
}

// OccupancyPoint is a lot-level occupancy snapshot, the alternate normalized
// entity used by lot-centric deployments.
type OccupancyPoint struct {
	LotID          int64     `json:"lot_id"`
	Timestamp      time.Time `json:"ts"`
	OccupiedSpaces int       `json:"occupied_spaces"`
	TotalSpaces    int       `json:"total_spaces"`
}

// Ratio returns occupied over total spaces, and 0 when total is 0. The zero
// guard holds even though TotalSpaces is validated > 0 at the boundary.
func (p OccupancyPoint) Ratio() float64 {
	if p.TotalSpaces == 0 {
		return 0.0
	}
	return float64(p.OccupiedSpaces) / float64(p.TotalSpaces)
}

// MarshalJSON includes the derived occupancy_ratio alongside the stored
// fields.
func (p OccupancyPoint) MarshalJSON() ([]byte, error) {
	type alias OccupancyPoint
	return json.Marshal(struct {
		alias
		OccupancyRatio float64 `json:"occupancy_ratio"`
	}{alias(p), p.Ratio()})
}

// Ingested is the tagged variant produced by a schema codec: either a
// sensor-centric Event or a lot-centric OccupancyPoint, never both.
type Ingested struct {
	Event *Event
	Point *OccupancyPoint
}

// Timestamp returns the sender-supplied timestamp, zero when absent.
func (in Ingested) Timestamp() time.Time {
	if in.Point != nil {
		return in.Point.Timestamp
	}
	return in.Event.Timestamp
}

// SetTimestamp stamps the canonical ingestion timestamp onto the variant. Both
// downstream writes read it from here, so raw and normalized records never
// disagree on when the event occurred.
func (in Ingested) SetTimestamp(ts time.Time) {
	if in.Point != nil {
		in.Point.Timestamp = ts
		return
	}
	in.Event.Timestamp = ts
}

// State returns the occupancy state, empty for the lot variant.
func (in Ingested) State() State {
	if in.Event != nil {
		return in.Event.State
	}
	return ""
}

// Raw builds the document persisted in the append-only raw log.
func (in Ingested) Raw() RawEvent {
	if in.Point != nil {
		occupied, total := in.Point.OccupiedSpaces, in.Point.TotalSpaces
		return RawEvent{
			LotID:          in.Point.LotID,
			OccupiedSpaces: &occupied,
			TotalSpaces:    &total,
			TS:             in.Point.Timestamp,
		}
	}
	ev := in.Event
	payload := ev.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return RawEvent{
		SensorID: ev.WireID,
		SiteID:   ev.SiteID,
		Estado:   ev.State,
		TS:       ev.Timestamp,
		Payload:  payload,
	}
}
