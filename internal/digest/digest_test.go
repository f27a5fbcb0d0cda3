package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arpejfinder/residence-notifier/internal/models"
)

func TestRender_EmptyReturnsNoMessage(t *testing.T) {
	assert.Nil(t, Render(nil, time.Now()))
	assert.Nil(t, Render([]models.FlattenedOffer{}, time.Now()))
}

func TestRender_OneOffer(t *testing.T) {
	offers := []models.FlattenedOffer{
		{
			Name:      "Les Estudines",
			Address:   "1 rue de la Paix Paris 75002",
			Link:      "https://www.arpej.fr/residence/les-estudines/",
			PriceFrom: "550,00",
			PriceTo:   "610,00",
			ID:        "101",
		},
	}
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)

	msg := Render(offers, now)

	assert.NotNil(t, msg)
	assert.Equal(t, "ARPEJ's Available Residences - 31/08", msg.Subject)
	assert.Contains(t, msg.HTML, "Les Estudines")
	assert.Contains(t, msg.HTML, "1 rue de la Paix Paris 75002")
	assert.Contains(t, msg.HTML, "550,00 €/mois")
	assert.Contains(t, msg.HTML, "610,00 €/mois")
	assert.Contains(t, msg.HTML, `<a href="https://www.arpej.fr/residence/les-estudines/" target="_blank">Visit Residence</a>`)
}

func TestRender_OneRowPerOffer(t *testing.T) {
	offers := []models.FlattenedOffer{
		{Name: "A", PriceFrom: "500,00", PriceTo: "550,00"},
		{Name: "B", PriceFrom: "520,00", PriceTo: "560,00"},
		{Name: "C", PriceFrom: "530,00", PriceTo: "570,00"},
	}

	msg := Render(offers, time.Now())

	assert.NotNil(t, msg)
	// Header row plus one row per offer.
	assert.Equal(t, 4, strings.Count(msg.HTML, "<tr>"))
}

func TestRender_InsertsTextVerbatim(t *testing.T) {
	// Offer fields pass through unescaped; the markup reflects the upstream
	// payload as-is.
	offers := []models.FlattenedOffer{{Name: "<b>Les & Estudines</b>"}}

	msg := Render(offers, time.Now())

	assert.NotNil(t, msg)
	assert.Contains(t, msg.HTML, "<b>Les & Estudines</b>")
}
