package config

import "time"

const (
	defaultHoldTTLMinutes              = 10
	defaultCancelDeadlineHours         = 24
	defaultProviderTimeoutSeconds      = 30
	defaultAvailabilityCacheTTLSeconds = 45
	defaultAvailabilityCacheSize       = 1024
	defaultBusyBufferMinutes           = 10
	defaultWebhookMaxAttempts          = 5
	defaultWebhookPollIntervalSeconds  = 2
	defaultWebhookMaxBackoffSeconds    = 60
	defaultRecoveryIntervalSeconds     = 60
	defaultRecoveryStaleAfterSeconds   = 300
	defaultRecoveryBatchSize           = 100
	defaultExpiryIntervalSeconds       = 60
	defaultSubscriptionIntervalSeconds = 60
	defaultSubscriptionDurationHours   = 12
	defaultRenewalThresholdMinutes     = 30
	defaultLockTTLSeconds              = 50
	defaultTokenAudience               = "booking-system"
)

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}

	return value
}

// HoldTTL is how long a fresh hold reserves its slot.
func (c *Config) HoldTTL() time.Duration {
	return time.Duration(orDefault(c.Booking.HoldTTLMinutes, defaultHoldTTLMinutes)) * time.Minute
}

// CancelDeadline is the minimum lead time before start for cancel and reschedule.
func (c *Config) CancelDeadline() time.Duration {
	return time.Duration(orDefault(c.Booking.CancelDeadlineHours, defaultCancelDeadlineHours)) * time.Hour
}

func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(orDefault(c.Booking.ProviderTimeoutSeconds, defaultProviderTimeoutSeconds)) * time.Second
}

func (c *Config) AvailabilityCacheTTL() time.Duration {
	return time.Duration(orDefault(c.Booking.Availability.CacheTTLSeconds, defaultAvailabilityCacheTTLSeconds)) * time.Second
}

func (c *Config) AvailabilityCacheSize() int {
	return orDefault(c.Booking.Availability.CacheSize, defaultAvailabilityCacheSize)
}

func (c *Config) BusyBuffer() time.Duration {
	return time.Duration(orDefault(c.Booking.Availability.BusyBufferMin, defaultBusyBufferMinutes)) * time.Minute
}

func (c *Config) WebhookMaxAttempts() int {
	return orDefault(c.Webhook.MaxAttempts, defaultWebhookMaxAttempts)
}

func (c *Config) WebhookPollInterval() time.Duration {
	return time.Duration(orDefault(c.Webhook.PollIntervalSeconds, defaultWebhookPollIntervalSeconds)) * time.Second
}

func (c *Config) WebhookMaxBackoff() time.Duration {
	return time.Duration(orDefault(c.Webhook.MaxBackoffSeconds, defaultWebhookMaxBackoffSeconds)) * time.Second
}

func (c *Config) WebhookRecoveryInterval() time.Duration {
	return time.Duration(orDefault(c.Webhook.Recovery.IntervalSeconds, defaultRecoveryIntervalSeconds)) * time.Second
}

// WebhookStaleAfter is how long an in-flight job may go untouched before it is
// handed back to the queue. It must exceed the max backoff.
func (c *Config) WebhookStaleAfter() time.Duration {
	staleAfter := time.Duration(orDefault(c.Webhook.Recovery.StaleAfterSeconds, defaultRecoveryStaleAfterSeconds)) * time.Second
	if floor := 2 * c.WebhookMaxBackoff(); staleAfter < floor {
		return floor
	}

	return staleAfter
}

func (c *Config) WebhookRecoveryBatch() int {
	return orDefault(c.Webhook.Recovery.BatchSize, defaultRecoveryBatchSize)
}

func (c *Config) ExpiryInterval() time.Duration {
	return time.Duration(orDefault(c.Worker.ExpiryIntervalSeconds, defaultExpiryIntervalSeconds)) * time.Second
}

func (c *Config) SubscriptionInterval() time.Duration {
	return time.Duration(orDefault(c.Worker.SubscriptionIntervalSeconds, defaultSubscriptionIntervalSeconds)) * time.Second
}

func (c *Config) SubscriptionDuration() time.Duration {
	return time.Duration(orDefault(c.Worker.SubscriptionDurationHours, defaultSubscriptionDurationHours)) * time.Hour
}

func (c *Config) RenewalThreshold() time.Duration {
	return time.Duration(orDefault(c.Worker.RenewalThresholdMinutes, defaultRenewalThresholdMinutes)) * time.Minute
}

func (c *Config) WorkerLockTTL() time.Duration {
	return time.Duration(orDefault(c.Worker.LockTTLSeconds, defaultLockTTLSeconds)) * time.Second
}

func (c *Config) TokenAudience() string {
	if c.Token.Audience == "" {
		return defaultTokenAudience
	}

	return c.Token.Audience
}

func (c *Config) TokenIssuer() string {
	if c.Token.Issuer != "" {
		return c.Token.Issuer
	}

	return c.App.BaseURL
}
