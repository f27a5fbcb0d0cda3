package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/models"
)

// MongoStore implements Store on a MongoDB collection of SentRecord
// documents. This is the default backend.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore creates a new MongoDB store instance. The client is
// constructed here and owned by the caller; connectivity problems surface on
// Ping and on the first query, not at construction.
func NewMongoStore(ctx context.Context, cfg config.StorageConfig) (*MongoStore, error) {
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MongoDB URI is not configured")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// FindSentBetween returns every record whose datetime falls within the
// inclusive range.
func (m *MongoStore) FindSentBetween(ctx context.Context, start, end time.Time) ([]models.SentRecord, error) {
	filter := bson.M{"datetime": bson.M{"$gte": start, "$lte": end}}

	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query sent records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.SentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode sent records: %w", err)
	}

	return records, nil
}

// RecordSent inserts the batch as a single multi-insert.
func (m *MongoStore) RecordSent(ctx context.Context, records []models.SentRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i, record := range records {
		docs[i] = record
	}

	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert sent records: %w", err)
	}

	return nil
}

// Ping verifies connectivity to the primary.
func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
