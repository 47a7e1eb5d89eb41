package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMailConfig(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USER", "mailer")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	config := NewMailConfig()
	assert.Equal(t, "smtp.example.com", config.Host)
	assert.Equal(t, 2525, config.Port)
	assert.Equal(t, "mailer", config.User)
	assert.Equal(t, "noreply@example.com", config.From)
}

func TestNewMailConfigDefaultPort(t *testing.T) {
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("SMTP_USER", "mailer")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	assert.Equal(t, 587, NewMailConfig().Port)
}

func TestNewSMSConfig(t *testing.T) {
	t.Setenv("SMS_API_KEY", "key-123")
	t.Setenv("SMS_API_URL", "https://sms.example.com/v1/send")
	t.Setenv("SMS_SENDER_ID", "SmartScore")

	config := NewSMSConfig()
	assert.Equal(t, "key-123", config.APIKey)
	assert.Equal(t, "https://sms.example.com/v1/send", config.APIURL)
	assert.Equal(t, "SmartScore", config.Sender)
}

func TestNewMongoDBConfigDefaultDatabase(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DATABASE", "")

	config := NewMongoDBConfig()
	assert.Equal(t, "mongodb://localhost:27017", config.URI)
	assert.Equal(t, "smartscore", config.Database)
}
