package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/digest"
)

func TestSend_MissingCredentials(t *testing.T) {
	m := New(config.SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		Recipient: "someone@example.com",
	})

	err := m.Send(&digest.Message{Subject: "test", HTML: "<p>test</p>"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSend_UnreachableServer(t *testing.T) {
	m := New(config.SMTPConfig{
		Host:      "127.0.0.1",
		Port:      1, // nothing listens here
		Address:   "sender@example.com",
		Password:  "secret",
		Recipient: "someone@example.com",
	})

	err := m.Send(&digest.Message{Subject: "test", HTML: "<p>test</p>"})

	assert.Error(t, err)
}
