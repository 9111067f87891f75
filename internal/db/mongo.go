package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/R0SEWT/smartParkSystem/internal/domain"
)

const (
	DefaultDatabase = "smartpark"
	rawCollection   = "events_raw"

	mongoConnectTimeout = 20 * time.Second
)

// RawEventStore is the append-only raw log of sensor events, backed by a
// MongoDB collection. Documents are never updated or deleted.
type RawEventStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewMongoConnection(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetConnectTimeout(mongoConnectTimeout).
		SetServerSelectionTimeout(mongoConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return client, nil
}

// NewRawEventStore binds the store to its collection and ensures the two
// read-optimized indexes. Index creation is idempotent and best-effort: a
// failure is logged as a warning and never blocks startup.
func NewRawEventStore(client *mongo.Client, database string) *RawEventStore {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	col := client.Database(database).Collection(rawCollection)

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "sensor_id", Value: 1},
				{Key: "ts", Value: -1},
			},
			Options: options.Index().SetName("sid_ts"),
		},
		{
			Keys:    bson.D{{Key: "ts", Value: -1}},
			Options: options.Index().SetName("ts_desc"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Printf("[WARN] creating mongo indexes: %v", err)
	}

	return &RawEventStore{client: client, col: col}
}

// Append inserts one raw event document.
func (s *RawEventStore) Append(ctx context.Context, ev domain.RawEvent) error {
	_, err := s.col.InsertOne(ctx, ev)
	return err
}

// RecentEvents returns up to limit raw events, newest first.
func (s *RawEventStore) RecentEvents(ctx context.Context, limit int) ([]domain.RawEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "ts", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.D{{Key: "_id", Value: 0}})

	cursor, err := s.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []domain.RawEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *RawEventStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *RawEventStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
