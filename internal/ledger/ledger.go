// Package ledger answers "was this offer already notified today" on top of
// an underlying document store. Reads fail open: a storage error counts as
// "nothing sent yet", so an offer is re-sent rather than silently suppressed.
package ledger

import (
	"context"
	"log"
	"time"

	"github.com/arpejfinder/residence-notifier/internal/models"
	"github.com/arpejfinder/residence-notifier/internal/storage"
)

// Ledger is the dedup source of truth for one process.
type Ledger struct {
	store storage.Store
}

// New creates a ledger over the given store.
func New(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// DayBounds returns the inclusive bounds of t's local calendar day,
// [00:00:00.000, 23:59:59.999].
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24*time.Hour - time.Millisecond)
}

// SentToday loads every record written during the current local day.
func (l *Ledger) SentToday(ctx context.Context) []models.SentRecord {
	start, end := DayBounds(time.Now())

	records, err := l.store.FindSentBetween(ctx, start, end)
	if err != nil {
		log.Printf("Failed to load sent records, treating as none sent today: %v", err)
		return nil
	}

	return records
}

// RecordSent persists one record per offer as a single batch, all stamped
// with the same current time.
func (l *Ledger) RecordSent(ctx context.Context, offers []models.FlattenedOffer) error {
	now := time.Now()

	records := make([]models.SentRecord, len(offers))
	for i, offer := range offers {
		records[i] = models.SentRecord{
			Datetime:  now,
			ID:        offer.ID,
			PriceFrom: offer.PriceFrom,
			PriceTo:   offer.PriceTo,
		}
	}

	return l.store.RecordSent(ctx, records)
}
