package arpej

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/models"
)

func newTestClient(publicURL, adminURL string) *Client {
	return NewClient(config.ArpejConfig{
		PublicBaseURL: publicURL,
		AdminBaseURL:  adminURL,
		Timeout:       30 * time.Second,
	})
}

func TestClient_ListAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/sn/residences", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "52524", query.Get("related_city[]"))
		assert.Equal(t, "etudiants", query.Get("public"))
		assert.Equal(t, "600", query.Get("price_to"))
		assert.Equal(t, "false", query.Get("show_if_full"))
		assert.Equal(t, "false", query.Get("show_if_colocations"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"residences": [
				{
					"title": "Les Estudines",
					"link": "https://www.arpej.fr/residence/les-estudines/",
					"extra_data": {"address": "1 rue de la Paix", "city": "Paris", "zip_code": "75002"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	residences, err := client.ListAvailable(context.Background())

	assert.NoError(t, err)
	assert.Len(t, residences, 1)
	assert.Equal(t, models.Residence{
		Key:     "les-estudines",
		Name:    "Les Estudines",
		Address: "1 rue de la Paix Paris 75002",
		Link:    "https://www.arpej.fr/residence/les-estudines/",
	}, residences[0])
}

func TestClient_ListAvailable_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	residences, err := client.ListAvailable(context.Background())

	assert.Error(t, err)
	assert.Nil(t, residences)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_FetchToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/oauth/token", r.URL.Path)
		assert.Equal(t, acceptHeader, r.Header.Get("accept"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client_credentials", body["grant_type"])
		assert.NotEmpty(t, body["client_id"])
		assert.NotEmpty(t, body["client_secret"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "abc123", "token_type": "Bearer"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	token, err := client.FetchToken(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, models.Token{AccessToken: "abc123", TokenType: "Bearer"}, token)
}

func TestClient_FetchToken_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	_, err := client.FetchToken(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_FetchAvailabilityMonths(t *testing.T) {
	token := models.Token{AccessToken: "abc123", TokenType: "Bearer"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customer/residences/101", r.URL.Path)
		assert.Equal(t, "Bearer abc123", r.Header.Get("authorization"))
		assert.Equal(t, "fr", r.Header.Get("x-locale"))
		assert.Equal(t, refererURL, r.Header.Get("Referer"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"availability_months": ["2026-09", "2026-10"]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	months, err := client.FetchAvailabilityMonths(context.Background(), "101", token)

	assert.NoError(t, err)
	assert.Equal(t, []string{"2026-09", "2026-10"}, months)
}

func TestClient_FetchOffersForMonth(t *testing.T) {
	token := models.Token{AccessToken: "abc123", TokenType: "Bearer"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customer/residences/101/availabilities/2026-09/offers", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"booking_restriction": {"enabled": false},
				"offer_pricing": {"rent_amount_from": "550,00", "rent_amount_to": "610,00"}
			},
			{
				"booking_restriction": {"enabled": true},
				"offer_pricing": {"rent_amount_from": "400,00", "rent_amount_to": "450,00"}
			}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	offers, err := client.FetchOffersForMonth(context.Background(), "101", "2026-09", token)

	assert.NoError(t, err)
	// The restricted offer is dropped at fetch time.
	assert.Equal(t, []models.RawOffer{
		{Reserved: false, PriceFrom: "550,00", PriceTo: "610,00"},
	}, offers)
}

func TestClient_FetchOffersForMonth_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, server.URL)

	offers, err := client.FetchOffersForMonth(context.Background(), "101", "2026-09", models.Token{})

	assert.Error(t, err)
	assert.Nil(t, offers)
}
