package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidOverride      = errors.New("manual period override must be a positive day count")
	ErrQuotaExceeded        = errors.New("quote quota exceeded for the current period")
	ErrInvalidBillingCycle  = errors.New("invalid billing cycle")

	ErrFailedToSaveSubscription = errors.New("failed to save subscription")
	ErrFailedToLoadUsage        = errors.New("failed to load usage counter")
	ErrFailedToRecordUsage      = errors.New("failed to record usage")

	// Provider-specific errors
	ErrMissingAPIKey             = errors.New("billing provider API key is required")
	ErrMissingWebhookSecret      = errors.New("billing provider webhook secret is required")
	ErrInvalidProviderEnv        = errors.New("invalid billing provider environment")
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrMissingWebhookMetadata    = errors.New("webhook event is missing required metadata")
	ErrNoCheckoutURL             = errors.New("no checkout URL returned from provider")
)
