package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/R0SEWT/smartParkSystem/internal/domain"
)

const (
	pgMinConns       = 1
	pgMaxConns       = 6
	pgConnectTimeout = 20 * time.Second
)

// NewPostgresPool builds a bounded connection pool and verifies the
// connection before the service accepts traffic.
func NewPostgresPool(ctx context.Context, conn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	cfg.MinConns = pgMinConns
	cfg.MaxConns = pgMaxConns
	cfg.ConnConfig.ConnectTimeout = pgConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	return pool, nil
}

// RecordStore projects accepted events into the configured normalized table:
// per-sensor registro_data rows or lot-level occupancy snapshots. Rows are
// append-only; the current state of a sensor is the most recent row.
type RecordStore struct {
	pool  *pgxpool.Pool
	shape domain.Shape
}

func NewRecordStore(pool *pgxpool.Pool, shape domain.Shape) *RecordStore {
	if shape == "" {
		shape = domain.ShapeRegistro
	}
	return &RecordStore{pool: pool, shape: shape}
}

// Project inserts exactly one row for the event. The duration columns
// (tiempo_libre, tiempo_ocupado) are left NULL; they belong to a downstream
// aggregation, not to ingestion.
func (s *RecordStore) Project(ctx context.Context, in domain.Ingested) error {
	switch s.shape {
	case domain.ShapeOccupancy:
		if in.Point == nil {
			return errors.New("occupancy projection requires a lot-level event")
		}
		_, err := s.pool.Exec(ctx, `
INSERT INTO occupancy (lot_id, ts, occupied_spaces, total_spaces)
VALUES ($1, $2, $3, $4)`,
			in.Point.LotID, in.Point.Timestamp, in.Point.OccupiedSpaces, in.Point.TotalSpaces)
		return err
	default:
		if in.Event == nil {
			return errors.New("registro projection requires a sensor event")
		}
		ev := in.Event
		horaLibre, horaOcupado := ev.StateTimes()
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		_, err = s.pool.Exec(ctx, `
INSERT INTO registro_data (
	sensor_id, estacionamiento_id, hora_libre, tiempo_libre,
	hora_ocupado, tiempo_ocupado, estado, payload, created_at
) VALUES ($1, $2, $3, NULL, $4, NULL, $5, $6, $7)`,
			ev.SensorID, ev.SiteID, horaLibre, horaOcupado, string(ev.State), payload, ev.Timestamp)
		return err
	}
}

// List returns registro_data rows matching the filter, newest first. The
// occupancy shape has no per-sensor listing.
func (s *RecordStore) List(ctx context.Context, f domain.Filter) ([]domain.Record, error) {
	if s.shape == domain.ShapeOccupancy {
		return nil, errors.New("listing requires the registro projection")
	}

	where := []string{}
	params := []any{}
	if f.SiteID != "" {
		params = append(params, f.SiteID)
		where = append(where, fmt.Sprintf("estacionamiento_id = $%d", len(params)))
	}
	if f.SensorID != "" {
		params = append(params, f.SensorID)
		where = append(where, fmt.Sprintf("sensor_id = $%d", len(params)))
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}
	params = append(params, f.Limit)

	query := fmt.Sprintf(`
SELECT sensor_id, estacionamiento_id, estado, hora_libre, hora_ocupado, created_at
FROM registro_data
%s
ORDER BY created_at DESC
LIMIT $%d`, whereSQL, len(params))

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var r domain.Record
		var estado string
		if err := rows.Scan(&r.SensorID, &r.SiteID, &estado, &r.HoraLibre, &r.HoraOcupado, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Estado = domain.State(estado)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Recent returns up to limit registro_data rows, newest first.
func (s *RecordStore) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	return s.List(ctx, domain.Filter{Limit: limit})
}

// RecentPoints returns up to limit occupancy snapshots, newest first.
func (s *RecordStore) RecentPoints(ctx context.Context, limit int) ([]domain.OccupancyPoint, error) {
	rows, err := s.pool.Query(ctx, `
SELECT lot_id, ts, occupied_spaces, total_spaces
FROM occupancy
ORDER BY ts DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []domain.OccupancyPoint{}
	for rows.Next() {
		var p domain.OccupancyPoint
		if err := rows.Scan(&p.LotID, &p.Timestamp, &p.OccupiedSpaces, &p.TotalSpaces); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *RecordStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *RecordStore) Close() error {
	s.pool.Close()
	return nil
}
