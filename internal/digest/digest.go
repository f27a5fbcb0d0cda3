// Package digest renders a qualifying offer list into a send-ready email
// payload.
package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/arpejfinder/residence-notifier/internal/models"
)

// Message is a rendered, send-ready digest.
type Message struct {
	Subject string
	HTML    string
}

const bodyHeader = `
    <html>
    <head>
        <style>
            table {
                border-collapse: collapse;
                width: 100%;
            }
            th, td {
                border: 1px solid #dddddd;
                text-align: left;
                padding: 8px;
            }
            th {
                background-color: #f2f2f2;
            }
        </style>
    </head>
    <body>
        <h2>Residences Information</h2>
        <table>
            <tr>
                <th>Name</th>
                <th>Address</th>
                <th>Price (From)</th>
                <th>Price (To)</th>
                <th>Link</th>
            </tr>`

const bodyFooter = `
        </table>
    </body>
    </html>`

const rowFormat = `
        <tr>
            <td>%s</td>
            <td>%s</td>
            <td>%s €/mois</td>
            <td>%s €/mois</td>
            <td><a href="%s" target="_blank">Visit Residence</a></td>
        </tr>`

// Render builds the digest for the given offers, one table row per offer.
// It returns nil when there is nothing to send; callers must check before
// attempting delivery. Offer text is inserted into the markup verbatim,
// without HTML escaping, matching what was historically sent.
func Render(offers []models.FlattenedOffer, now time.Time) *Message {
	if len(offers) == 0 {
		return nil
	}

	var body strings.Builder
	body.WriteString(bodyHeader)
	for _, offer := range offers {
		fmt.Fprintf(&body, rowFormat, offer.Name, offer.Address, offer.PriceFrom, offer.PriceTo, offer.Link)
	}
	body.WriteString(bodyFooter)

	return &Message{
		Subject: fmt.Sprintf("ARPEJ's Available Residences - %s", now.Format("02/01")),
		HTML:    body.String(),
	}
}
