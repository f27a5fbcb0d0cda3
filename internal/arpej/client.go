// Package arpej talks to the two ARPEJ API surfaces: the public WordPress
// listing endpoint and the authenticated customer booking API used by the
// ibail.arpej.fr frontend. Every method returns an explicit error; the
// degrade-to-empty policy on failure belongs to the caller, not this package.
package arpej

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/models"
	"github.com/arpejfinder/residence-notifier/internal/resolver"
)

// Credentials and headers mirror what the ibail.arpej.fr booking frontend
// sends; the API rejects requests without them.
const (
	oauthClientID     = "5d54af239945619afffa307db180badc712e9d315d3937296facc6fe01cefd4d"
	oauthClientSecret = "82b421e591bb4c158b41063cfd30a1133a7380d7a63a43ab15d084641449ddb4"

	acceptHeader = "application/json;version=1"
	refererURL   = "https://ibail.arpej.fr/"
)

// Client issues the listing, token, availability and per-month offer calls.
type Client struct {
	http          *resty.Client
	publicBaseURL string
	adminBaseURL  string
}

// NewClient creates a client for the configured API base URLs.
func NewClient(cfg config.ArpejConfig) *Client {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)

	return &Client{
		http:          client,
		publicBaseURL: cfg.PublicBaseURL,
		adminBaseURL:  cfg.AdminBaseURL,
	}
}

type listingResponse struct {
	Residences []struct {
		Title     string `json:"title"`
		Link      string `json:"link"`
		ExtraData struct {
			Address string `json:"address"`
			City    string `json:"city"`
			ZipCode string `json:"zip_code"`
		} `json:"extra_data"`
	} `json:"residences"`
}

// ListAvailable fetches the currently listed residences for the configured
// city: student housing under 600, excluding full residences and shared
// units.
func (c *Client) ListAvailable(ctx context.Context) ([]models.Residence, error) {
	var payload listingResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"related_city[]":      "52524",
			"price_from":          "0",
			"price_to":            "600",
			"public":              "etudiants",
			"show_if_full":        "false",
			"show_if_colocations": "false",
		}).
		SetResult(&payload).
		Get(c.publicBaseURL + "/wp-json/sn/residences")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch residence listing: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("residence listing returned status %d", res.StatusCode())
	}

	residences := make([]models.Residence, 0, len(payload.Residences))
	for _, r := range payload.Residences {
		residences = append(residences, models.Residence{
			Key:     resolver.SlugFromLink(r.Link),
			Name:    r.Title,
			Address: fmt.Sprintf("%s %s %s", r.ExtraData.Address, r.ExtraData.City, r.ExtraData.ZipCode),
			Link:    r.Link,
		})
	}

	return residences, nil
}

// FetchToken performs the client-credentials exchange for the customer API.
func (c *Client) FetchToken(ctx context.Context) (models.Token, error) {
	var token models.Token
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("accept", acceptHeader).
		SetHeader("content-type", "application/json;charset=UTF-8").
		SetBody(map[string]string{
			"client_id":     oauthClientID,
			"client_secret": oauthClientSecret,
			"grant_type":    "client_credentials",
		}).
		SetResult(&token).
		Post(c.adminBaseURL + "/api/oauth/token")
	if err != nil {
		return models.Token{}, fmt.Errorf("failed to fetch token: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return models.Token{}, fmt.Errorf("token exchange returned status %d", res.StatusCode())
	}

	return token, nil
}

func customerHeaders(token models.Token) map[string]string {
	return map[string]string{
		"accept":        acceptHeader,
		"authorization": fmt.Sprintf("%s %s", token.TokenType, token.AccessToken),
		"x-locale":      "fr",
		"Referer":       refererURL,
	}
}

type residenceDetail struct {
	AvailabilityMonths []string `json:"availability_months"`
}

// FetchAvailabilityMonths returns the bookable availability windows for one
// residence.
func (c *Client) FetchAvailabilityMonths(ctx context.Context, id string, token models.Token) ([]string, error) {
	var detail residenceDetail
	res, err := c.http.R().
		SetContext(ctx).
		SetHeaders(customerHeaders(token)).
		SetResult(&detail).
		Get(fmt.Sprintf("%s/api/customer/residences/%s", c.adminBaseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability months for residence %s: %w", id, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("availability months for residence %s returned status %d", id, res.StatusCode())
	}

	return detail.AvailabilityMonths, nil
}

type offerPayload struct {
	BookingRestriction struct {
		Enabled bool `json:"enabled"`
	} `json:"booking_restriction"`
	OfferPricing struct {
		RentAmountFrom string `json:"rent_amount_from"`
		RentAmountTo   string `json:"rent_amount_to"`
	} `json:"offer_pricing"`
}

// FetchOffersForMonth returns the offers for one residence and availability
// month. Offers under an active booking restriction are dropped here, before
// the pipeline ever sees them.
func (c *Client) FetchOffersForMonth(ctx context.Context, id, month string, token models.Token) ([]models.RawOffer, error) {
	var payload []offerPayload
	res, err := c.http.R().
		SetContext(ctx).
		SetHeaders(customerHeaders(token)).
		SetResult(&payload).
		Get(fmt.Sprintf("%s/api/customer/residences/%s/availabilities/%s/offers", c.adminBaseURL, id, month))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offers for residence %s month %s: %w", id, month, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("offers for residence %s month %s returned status %d", id, month, res.StatusCode())
	}

	var offers []models.RawOffer
	for _, offer := range payload {
		if offer.BookingRestriction.Enabled {
			continue
		}
		offers = append(offers, models.RawOffer{
			Reserved:  false,
			PriceFrom: offer.OfferPricing.RentAmountFrom,
			PriceTo:   offer.OfferPricing.RentAmountTo,
		})
	}

	return offers, nil
}
