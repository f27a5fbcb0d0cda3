package models

import "time"

// Residence is one bookable residence as returned by the public listing
// endpoint. It lives only for the duration of a pipeline run and is never
// persisted.
type Residence struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Link    string `json:"link"`
}

// Token is the client-credentials token used against the customer API.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RawOffer is a single bookable offer for a residence and availability month.
// Offers under an active booking restriction are dropped at fetch time and
// never reach this type.
type RawOffer struct {
	Reserved  bool   `json:"reserved"`
	PriceFrom string `json:"price_from"`
	PriceTo   string `json:"price_to"`
}

// FlattenedOffer pairs a raw offer with the identity of its residence.
// ID is the residence ID, not a per-offer identifier; deduplication keys on
// the (ID, PriceFrom, PriceTo) triple regardless, so two distinct offers for
// one residence with equal price bounds count as one within a day.
type FlattenedOffer struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Link      string `json:"link"`
	PriceFrom string `json:"price_from"`
	PriceTo   string `json:"price_to"`
	ID        string `json:"id"`
}

// SentRecord marks one offer as notified. Records are append-only; an offer
// counts as already sent when a record with the same triple exists within the
// current local calendar day.
type SentRecord struct {
	Datetime  time.Time `json:"datetime" bson:"datetime" dynamodbav:"datetime"`
	ID        string    `json:"id" bson:"id" dynamodbav:"id"`
	PriceFrom string    `json:"price_from" bson:"price_from" dynamodbav:"price_from"`
	PriceTo   string    `json:"price_to" bson:"price_to" dynamodbav:"price_to"`
}

// Matches reports whether the offer corresponds to this record. Comparison is
// exact string equality on the stored representation, with no normalization.
func (r SentRecord) Matches(o FlattenedOffer) bool {
	return r.ID == o.ID && r.PriceFrom == o.PriceFrom && r.PriceTo == o.PriceTo
}
