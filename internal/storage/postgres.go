package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/models"
)

// PostgresStore implements Store on a sent_offers table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store instance
func NewPostgresStore(cfg config.StorageConfig) (*PostgresStore, error) {
	if cfg.PostgresURI == "" {
		return nil, fmt.Errorf("PostgreSQL URI is not configured")
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.ensureTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure table exists: %w", err)
	}

	return store, nil
}

func (p *PostgresStore) ensureTable() error {
	_, err := p.db.Exec(`
		CREATE TABLE IF NOT EXISTS sent_offers (
			datetime   TIMESTAMPTZ NOT NULL,
			id         TEXT NOT NULL,
			price_from TEXT NOT NULL,
			price_to   TEXT NOT NULL
		)
	`)
	return err
}

// FindSentBetween returns every record whose datetime falls within the
// inclusive range.
func (p *PostgresStore) FindSentBetween(ctx context.Context, start, end time.Time) ([]models.SentRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT datetime, id, price_from, price_to
		FROM sent_offers
		WHERE datetime BETWEEN $1 AND $2
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query sent records: %w", err)
	}
	defer rows.Close()

	var records []models.SentRecord
	for rows.Next() {
		var record models.SentRecord
		if err := rows.Scan(&record.Datetime, &record.ID, &record.PriceFrom, &record.PriceTo); err != nil {
			return nil, fmt.Errorf("failed to scan sent record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sent records: %w", err)
	}

	return records, nil
}

// RecordSent inserts the batch inside one transaction.
func (p *PostgresStore) RecordSent(ctx context.Context, records []models.SentRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, record := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sent_offers (datetime, id, price_from, price_to)
			VALUES ($1, $2, $3, $4)
		`, record.Datetime, record.ID, record.PriceFrom, record.PriceTo)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert sent record for residence %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sent records: %w", err)
	}

	return nil
}

// Ping verifies connectivity to the database.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the connection pool.
func (p *PostgresStore) Close(ctx context.Context) error {
	return p.db.Close()
}
