package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Generation names a wire schema generation. Sensor identifier typing, the
// state encoding and the aggregation level drifted across deployments; each
// generation gets an explicit codec instead of branching on field presence.
type Generation string

const (
	// GenerationExtended is the original wire form: integer sensor_id,
	// estacionamiento_id and an estado enum.
	GenerationExtended Generation = "extended"
	// GenerationSimplified is the later form: string sensor_id and an
	// occupied boolean.
	GenerationSimplified Generation = "simplified"
	// GenerationLot is the lot-centric form carrying occupancy counts
	// instead of per-sensor states.
	GenerationLot Generation = "lot"
)

// Codec converts one wire schema generation into the canonical Ingested form,
// rejecting payloads that fail the generation's validation rules.
type Codec interface {
	Decode(body []byte) (Ingested, error)
}

// CodecFor returns the codec for a schema generation.
func CodecFor(g Generation) (Codec, error) {
	switch g {
	case GenerationExtended, "":
		return extendedCodec{}, nil
	case GenerationSimplified:
		return simplifiedCodec{}, nil
	case GenerationLot:
		return lotCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown schema generation %q", g)
	}
}

const opInvalidPayload = "invalid payload"

func invalid(msg string) error {
	return E(KindValidation, opInvalidPayload, errors.New(msg))
}

type extendedCodec struct{}

func (extendedCodec) Decode(body []byte) (Ingested, error) {
	var w struct {
		SensorID *int64         `json:"sensor_id"`
		SiteID   string         `json:"estacionamiento_id"`
		Estado   string         `json:"estado"`
		TS       *time.Time     `json:"ts"`
		Payload  map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(body, &w); err != nil {
		return Ingested{}, E(KindValidation, opInvalidPayload, err)
	}
	if w.SensorID == nil {
		return Ingested{}, invalid("sensor_id is required")
	}
	if w.SiteID == "" {
		return Ingested{}, invalid("estacionamiento_id is required")
	}
	state := State(w.Estado)
	if !state.Valid() {
		return Ingested{}, invalid("estado must be ocupado or libre")
	}
	ev := &Event{
		SensorID: strconv.FormatInt(*w.SensorID, 10),
		WireID:   *w.SensorID,
		SiteID:   w.SiteID,
		State:    state,
		Payload:  w.Payload,
	}
	if w.TS != nil {
		ev.Timestamp = *w.TS
	}
	return Ingested{Event: ev}, nil
}

type simplifiedCodec struct{}

func (simplifiedCodec) Decode(body []byte) (Ingested, error) {
	var w struct {
		SensorID string         `json:"sensor_id"`
		SiteID   string         `json:"estacionamiento_id"`
		Occupied *bool          `json:"occupied"`
		TS       *time.Time     `json:"ts"`
		Payload  map[string]any `json:"payload"`
	}
	if err := json.Unmarshal(body, &w); err != nil {
		return Ingested{}, E(KindValidation, opInvalidPayload, err)
	}
	if w.SensorID == "" {
		return Ingested{}, invalid("sensor_id is required")
	}
	if w.Occupied == nil {
		return Ingested{}, invalid("occupied is required")
	}
	state := StateFree
	if *w.Occupied {
		state = StateOccupied
	}
	ev := &Event{
		SensorID: w.SensorID,
		WireID:   w.SensorID,
		// estacionamiento_id is optional in this generation; senders that
		// predate lot assignment leave it empty.
		SiteID:  w.SiteID,
		State:   state,
		Payload: w.Payload,
	}
	if w.TS != nil {
		ev.Timestamp = *w.TS
	}
	return Ingested{Event: ev}, nil
}

type lotCodec struct{}

func (lotCodec) Decode(body []byte) (Ingested, error) {
	var w struct {
		LotID          *int64     `json:"lot_id"`
		OccupiedSpaces *int       `json:"occupied_spaces"`
		TotalSpaces    *int       `json:"total_spaces"`
		TS             *time.Time `json:"ts"`
	}
	if err := json.Unmarshal(body, &w); err != nil {
		return Ingested{}, E(KindValidation, opInvalidPayload, err)
	}
	if w.LotID == nil {
		return Ingested{}, invalid("lot_id is required")
	}
	if w.OccupiedSpaces == nil || w.TotalSpaces == nil {
		return Ingested{}, invalid("occupied_spaces and total_spaces are required")
	}
	if *w.OccupiedSpaces < 0 {
		return Ingested{}, invalid("occupied_spaces must not be negative")
	}
	if *w.TotalSpaces <= 0 {
		return Ingested{}, invalid("total_spaces must be positive")
	}
	pt := &OccupancyPoint{
		LotID:          *w.LotID,
		OccupiedSpaces: *w.OccupiedSpaces,
		TotalSpaces:    *w.TotalSpaces,
	}
	if w.TS != nil {
		pt.Timestamp = *w.TS
	}
	return Ingested{Point: pt}, nil
}
