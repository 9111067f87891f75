// Package query serves the read side of both stores: filtered listings of the
// normalized projection and a recent-activity snapshot for dashboards.
package query

import (
	"context"
	"log"

	"github.com/R0SEWT/smartParkSystem/internal/domain"
)

const (
	// DefaultLimit applies when a listing request names no limit.
	DefaultLimit = 50
	// MaxLimit caps a single listing response.
	MaxLimit = 500

	overviewLimit = 5
)

// ClampLimit bounds a requested limit to [1, MaxLimit]. The DefaultLimit for
// requests that name no limit is applied at the HTTP layer, before clamping.
func ClampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

type Service struct {
	raw   domain.RawStore
	rel   domain.RecordStore
	shape domain.Shape
}

func New(raw domain.RawStore, rel domain.RecordStore, shape domain.Shape) *Service {
	if shape == "" {
		shape = domain.ShapeRegistro
	}
	return &Service{raw: raw, rel: rel, shape: shape}
}

// List returns normalized rows matching the filter, newest first, with the
// limit clamped.
func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.Record, error) {
	f.Limit = ClampLimit(f.Limit)
	records, err := s.rel.List(ctx, f)
	if err != nil {
		return nil, domain.E(domain.KindQuery, "pg query", err)
	}
	return records, nil
}

// Overview is a point-in-time snapshot of recent activity in both stores. It
// is not a consistency-checked join: each side is queried independently.
// Records is filled for the registro shape, Points for the occupancy shape.
type Overview struct {
	LastEvents []domain.RawEvent
	Records    []domain.Record
	Points     []domain.OccupancyPoint
}

// StatusOverview never fails: a sub-query failure degrades that side to an
// empty slice with a logged warning, so one store's outage does not blank out
// the other's data.
func (s *Service) StatusOverview(ctx context.Context) Overview {
	ov := Overview{
		LastEvents: []domain.RawEvent{},
		Records:    []domain.Record{},
		Points:     []domain.OccupancyPoint{},
	}

	events, err := s.raw.RecentEvents(ctx, overviewLimit)
	if err != nil {
		log.Printf("[WARN] mongo read: %v", err)
	} else if events != nil {
		ov.LastEvents = events
	}

	if s.shape == domain.ShapeOccupancy {
		points, err := s.rel.RecentPoints(ctx, overviewLimit)
		if err != nil {
			log.Printf("[WARN] pg read: %v", err)
		} else if points != nil {
			ov.Points = points
		}
		return ov
	}

	records, err := s.rel.Recent(ctx, overviewLimit)
	if err != nil {
		log.Printf("[WARN] pg read: %v", err)
	} else if records != nil {
		ov.Records = records
	}
	return ov
}

// Shape reports which normalized shape this deployment serves.
func (s *Service) Shape() domain.Shape {
	return s.shape
}
