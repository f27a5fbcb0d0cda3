// Package pipeline orchestrates one fetch-filter-notify cycle: list
// residences, resolve their IDs, fetch offers, flatten, filter by price,
// drop what was already notified today, send the digest and commit the
// survivors to the ledger.
package pipeline

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/digest"
	"github.com/arpejfinder/residence-notifier/internal/models"
	"github.com/arpejfinder/residence-notifier/internal/resolver"
)

// Client is the subset of the upstream booking API used by a run.
type Client interface {
	ListAvailable(ctx context.Context) ([]models.Residence, error)
	FetchToken(ctx context.Context) (models.Token, error)
	FetchAvailabilityMonths(ctx context.Context, id string, token models.Token) ([]string, error)
	FetchOffersForMonth(ctx context.Context, id, month string, token models.Token) ([]models.RawOffer, error)
}

// Ledger is the dedup source of truth for already-notified offers.
type Ledger interface {
	SentToday(ctx context.Context) []models.SentRecord
	RecordSent(ctx context.Context, offers []models.FlattenedOffer) error
}

// Sender delivers a rendered digest.
type Sender interface {
	Send(msg *digest.Message) error
}

// Pipeline runs the notification cycle end to end.
type Pipeline struct {
	mu     sync.Mutex
	cfg    config.PipelineConfig
	client Client
	ledger Ledger
	sender Sender
}

// New creates a pipeline.
func New(cfg config.PipelineConfig, client Client, ledger Ledger, sender Sender) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		client: client,
		ledger: ledger,
		sender: sender,
	}
}

// Run executes one full cycle. Upstream fetch failures degrade to empty
// results with a logged warning; an unreadable mapping file is the only
// condition that aborts the run with an error. A send failure skips the
// ledger commit so the same offers are retried on the next run, and a commit
// failure after a successful send is logged but does not fail the run.
//
// Concurrent runs are serialized: two runs both reading the ledger before
// either commits would produce duplicate notifications.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	log.Println("Loading slug mapping")
	mapping, err := resolver.LoadMapping(p.cfg.MappingFile)
	if err != nil {
		return err
	}

	log.Println("Fetching available residences")
	residences, err := p.client.ListAvailable(ctx)
	if err != nil {
		log.Printf("Residence listing degraded to empty: %v", err)
	}

	ids := make([]string, len(residences))
	for i, residence := range residences {
		ids[i] = resolver.Resolve(residence, mapping)
		if ids[i] == "" {
			log.Printf("No ID mapping for residence %q (%s), its offers cannot be fetched", residence.Name, residence.Link)
		}
	}

	log.Println("Fetching offers")
	offersByResidence := p.fetchOffers(ctx, ids)

	offers := Flatten(offersByResidence, ids, residences)
	offers = FilterByPrice(offers, p.cfg.PriceCeiling)
	offers = FilterDedup(offers, p.ledger.SentToday(ctx))

	if len(offers) == 0 {
		log.Println("No offers to send")
		return nil
	}

	msg := digest.Render(offers, time.Now())
	if msg == nil {
		return nil
	}

	log.Printf("Sending digest with %d offers", len(offers))
	if err := p.sender.Send(msg); err != nil {
		log.Printf("Failed to send digest, offers will be retried on the next run: %v", err)
		return nil
	}

	if err := p.ledger.RecordSent(ctx, offers); err != nil {
		// The digest went out but history was not written; the next run may
		// notify these offers again.
		log.Printf("Failed to record sent offers: %v", err)
	}

	return nil
}

// fetchOffers gathers raw offers per residence under a bounded worker pool.
// Results are addressed by the residence's index in ids, so output order does
// not depend on goroutine scheduling. Residences with an empty ID are skipped
// and contribute an empty slot, keeping index alignment for Flatten.
func (p *Pipeline) fetchOffers(ctx context.Context, ids []string) [][]models.RawOffer {
	results := make([][]models.RawOffer, len(ids))

	token, err := p.client.FetchToken(ctx)
	if err != nil {
		log.Printf("Token exchange failed, treating every residence as having no offers: %v", err)
		return results
	}

	maxWorkers := p.cfg.MaxConcurrency
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxWorkers)

	for i, id := range ids {
		if id == "" {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, id string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			results[i] = p.fetchResidenceOffers(ctx, id, token)
		}(i, id)
	}
	wg.Wait()

	return results
}

// fetchResidenceOffers fetches every availability month for one residence,
// sequentially, degrading each failed call to an empty result.
func (p *Pipeline) fetchResidenceOffers(ctx context.Context, id string, token models.Token) []models.RawOffer {
	months, err := p.client.FetchAvailabilityMonths(ctx, id, token)
	if err != nil {
		log.Printf("Availability months degraded to empty for residence id=%s: %v", id, err)
		return nil
	}

	var offers []models.RawOffer
	for _, month := range months {
		monthOffers, err := p.client.FetchOffersForMonth(ctx, id, month, token)
		if err != nil {
			log.Printf("Offers degraded to empty for residence id=%s month=%s: %v", id, month, err)
			continue
		}
		offers = append(offers, monthOffers...)
	}

	return offers
}

// Flatten pairs each residence with its raw offers by index, carrying the
// residence's name, address and link onto every offer and stamping the
// residence ID.
func Flatten(offersByResidence [][]models.RawOffer, ids []string, residences []models.Residence) []models.FlattenedOffer {
	var flattened []models.FlattenedOffer
	for i, rawOffers := range offersByResidence {
		for _, raw := range rawOffers {
			flattened = append(flattened, models.FlattenedOffer{
				Name:      residences[i].Name,
				Address:   residences[i].Address,
				Link:      residences[i].Link,
				PriceFrom: raw.PriceFrom,
				PriceTo:   raw.PriceTo,
				ID:        ids[i],
			})
		}
	}
	return flattened
}

// FilterByPrice keeps offers whose lower price bound is at most ceiling.
// Upstream prices use a comma decimal separator; a price that does not parse
// excludes the offer rather than aborting the run.
func FilterByPrice(offers []models.FlattenedOffer, ceiling float64) []models.FlattenedOffer {
	var kept []models.FlattenedOffer
	for _, offer := range offers {
		price, err := strconv.ParseFloat(strings.ReplaceAll(offer.PriceFrom, ",", "."), 64)
		if err != nil {
			log.Printf("Unparseable price_from %q for residence id=%s, excluding offer", offer.PriceFrom, offer.ID)
			continue
		}
		if price <= ceiling {
			kept = append(kept, offer)
		}
	}
	return kept
}

// FilterDedup drops offers already notified today. Matching is exact string
// equality on the (id, price_from, price_to) triple against what was last
// persisted.
func FilterDedup(offers []models.FlattenedOffer, sent []models.SentRecord) []models.FlattenedOffer {
	var kept []models.FlattenedOffer
	for _, offer := range offers {
		duplicate := false
		for _, record := range sent {
			if record.Matches(offer) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, offer)
		}
	}
	return kept
}
