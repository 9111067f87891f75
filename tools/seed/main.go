// Seed loader: creates the normalized tables when missing and loads base
// demo data (campus, parking sites, sensor metadata) into both stores.
// Idempotent: reruns are no-ops.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS campus (
		id SERIAL PRIMARY KEY,
		codigo TEXT UNIQUE NOT NULL,
		nombre TEXT NOT NULL,
		direccion TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS estacionamiento (
		id TEXT PRIMARY KEY,
		campus_id INT REFERENCES campus(id),
		ubicacion TEXT,
		piso INT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS registro_data (
		id BIGSERIAL PRIMARY KEY,
		sensor_id TEXT NOT NULL,
		estacionamiento_id TEXT,
		hora_libre TIMESTAMPTZ,
		tiempo_libre INTERVAL,
		hora_ocupado TIMESTAMPTZ,
		tiempo_ocupado INTERVAL,
		estado TEXT NOT NULL,
		payload JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS registro_data_created_at_idx ON registro_data (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS occupancy (
		id BIGSERIAL PRIMARY KEY,
		lot_id BIGINT NOT NULL,
		ts TIMESTAMPTZ NOT NULL,
		occupied_spaces INT NOT NULL,
		total_spaces INT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS occupancy_ts_idx ON occupancy (ts DESC)`,
}

func main() {
	pgConn := os.Getenv("PG_CONN")
	mongoURI := os.Getenv("MONGODB_URI")
	if pgConn == "" || mongoURI == "" {
		log.Fatal("PG_CONN and MONGODB_URI must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	seedPostgres(ctx, pgConn)
	seedMongo(ctx, mongoURI)
	log.Println("Seed complete")
}

func seedPostgres(ctx context.Context, conn string) {
	pool, err := pgxpool.New(ctx, conn)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pool.Close()

	for _, stmt := range ddl {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalf("ddl: %v", err)
		}
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO campus (codigo, nombre, direccion)
		VALUES
			('C-NORTE', 'Campus Norte', 'Av. Principal 123'),
			('C-SUR', 'Campus Sur', 'Av. Costanera 456')
		ON CONFLICT (codigo) DO NOTHING`); err != nil {
		log.Fatalf("seed campus: %v", err)
	}

	sites := []struct {
		id, campus, ubicacion string
		piso                  int
	}{
		{"EST-001", "C-NORTE", "Puerta A", 1},
		{"EST-002", "C-NORTE", "Puerta B", 1},
		{"EST-003", "C-SUR", "Bloque C", 2},
	}
	for _, s := range sites {
		if _, err := pool.Exec(ctx, `
			INSERT INTO estacionamiento (id, campus_id, ubicacion, piso)
			SELECT $1, id, $3, $4 FROM campus WHERE codigo = $2
			ON CONFLICT (id) DO NOTHING`,
			s.id, s.campus, s.ubicacion, s.piso); err != nil {
			log.Fatalf("seed estacionamiento: %v", err)
		}
	}
	log.Println("Postgres seeded")
}

func seedMongo(ctx context.Context, uri string) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer client.Disconnect(ctx)

	col := client.Database("smartpark").Collection("sensors_meta")
	for i := 1; i <= 10; i++ {
		filter := bson.D{{Key: "sensor_id", Value: 1000 + i}}
		update := bson.D{{Key: "$setOnInsert", Value: bson.D{
			{Key: "sensor_id", Value: 1000 + i},
			{Key: "estacionamiento_id", Value: "EST-001"},
			{Key: "model", Value: "PK-US-2"},
			{Key: "installed_at", Value: time.Now().UTC()},
		}}}
		opts := options.UpdateOne().SetUpsert(true)
		if _, err := col.UpdateOne(ctx, filter, update, opts); err != nil {
			log.Fatalf("seed sensors_meta: %v", err)
		}
	}
	log.Println("Mongo seeded")
}
