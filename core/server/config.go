package server

import (
	"context"
	"io"

	"github.com/R0SEWT/smartParkSystem/internal/db"
	"github.com/R0SEWT/smartParkSystem/internal/domain"
)

type ServerConfig struct {
	RawStore    domain.RawStore
	RecordStore domain.RecordStore
	Codec       domain.Codec
	Shape       domain.Shape
	Origins     []string
	Port        string

	closers []io.Closer
}

type ConfigOption func(*ServerConfig) error

// WithMongo connects the raw event log.
func WithMongo(uri, database string) ConfigOption {
	return func(config *ServerConfig) error {
		client, err := db.NewMongoConnection(uri)
		if err != nil {
			return err
		}
		store := db.NewRawEventStore(client, database)
		config.RawStore = store
		config.closers = append(config.closers, store)
		return nil
	}
}

// WithPostgres connects the normalized projection targeting the given shape.
func WithPostgres(conn string, shape domain.Shape) ConfigOption {
	return func(config *ServerConfig) error {
		pool, err := db.NewPostgresPool(context.Background(), conn)
		if err != nil {
			return err
		}
		store := db.NewRecordStore(pool, shape)
		config.RecordStore = store
		config.Shape = shape
		config.closers = append(config.closers, store)
		return nil
	}
}

// WithSchema selects the wire schema generation accepted on /sensor_event.
func WithSchema(g domain.Generation) ConfigOption {
	return func(config *ServerConfig) error {
		codec, err := domain.CodecFor(g)
		if err != nil {
			return err
		}
		config.Codec = codec
		return nil
	}
}

// WithStores injects pre-built store implementations. Used by tests.
func WithStores(raw domain.RawStore, rel domain.RecordStore) ConfigOption {
	return func(config *ServerConfig) error {
		config.RawStore = raw
		config.RecordStore = rel
		return nil
	}
}

func WithCORS(origins []string) ConfigOption {
	return func(config *ServerConfig) error {
		config.Origins = origins
		return nil
	}
}

func WithPort(port string) ConfigOption {
	return func(config *ServerConfig) error {
		config.Port = port
		return nil
	}
}
