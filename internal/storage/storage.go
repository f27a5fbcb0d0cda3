package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/models"
)

// Store is the persistence contract for the sent-offer ledger. Records are
// append-only; there is no upsert and no delete.
type Store interface {
	FindSentBetween(ctx context.Context, start, end time.Time) ([]models.SentRecord, error)
	RecordSent(ctx context.Context, records []models.SentRecord) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewStore creates a store instance based on configuration
func NewStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "mongodb":
		return NewMongoStore(ctx, cfg)
	case "dynamodb":
		return NewDynamoStore(cfg)
	case "postgresql":
		return NewPostgresStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// Disabled returns a Store whose every operation fails with the reason the
// real store could not be constructed. The ledger reads fail open on top of
// it, so a run still completes, just without deduplication history.
func Disabled(reason error) Store {
	return disabledStore{reason: reason}
}

type disabledStore struct {
	reason error
}

func (d disabledStore) FindSentBetween(ctx context.Context, start, end time.Time) ([]models.SentRecord, error) {
	return nil, fmt.Errorf("ledger store is disabled: %w", d.reason)
}

func (d disabledStore) RecordSent(ctx context.Context, records []models.SentRecord) error {
	return fmt.Errorf("ledger store is disabled: %w", d.reason)
}

func (d disabledStore) Ping(ctx context.Context) error {
	return fmt.Errorf("ledger store is disabled: %w", d.reason)
}

func (d disabledStore) Close(ctx context.Context) error {
	return nil
}
