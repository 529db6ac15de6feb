package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"meetflow/config"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := &config.Config{}

	assert.Equal(t, 10*time.Minute, cfg.HoldTTL())
	assert.Equal(t, 24*time.Hour, cfg.CancelDeadline())
	assert.Equal(t, 45*time.Second, cfg.AvailabilityCacheTTL())
	assert.Equal(t, 5, cfg.WebhookMaxAttempts())
	assert.Equal(t, 60*time.Second, cfg.WebhookMaxBackoff())
	assert.Equal(t, 12*time.Hour, cfg.SubscriptionDuration())
	assert.Equal(t, 30*time.Minute, cfg.RenewalThreshold())
	assert.Equal(t, "booking-system", cfg.TokenAudience())
}

func TestConfig_Overrides(t *testing.T) {
	cfg := &config.Config{}
	cfg.Booking.HoldTTLMinutes = 3
	cfg.Webhook.MaxAttempts = 8
	cfg.App.BaseURL = "https://book.example"

	assert.Equal(t, 3*time.Minute, cfg.HoldTTL())
	assert.Equal(t, 8, cfg.WebhookMaxAttempts())
	assert.Equal(t, "https://book.example", cfg.TokenIssuer())

	cfg.Token.Issuer = "issuer"
	assert.Equal(t, "issuer", cfg.TokenIssuer())
}

func TestConfig_WebhookStaleAfterOutlastsBackoff(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, 5*time.Minute, cfg.WebhookStaleAfter())

	cfg.Webhook.Recovery.StaleAfterSeconds = 30
	assert.Equal(t, 2*cfg.WebhookMaxBackoff(), cfg.WebhookStaleAfter())
}
