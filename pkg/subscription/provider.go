package subscription

import (
	"context"
	"time"

	"github.com/quoteforge/quoteforge/pkg/tier"
)

// BillingProvider defines the minimal interface for payment gateway
// integrations. The provider handles all payment complexity through hosted
// checkouts; this logic trusts the tier/cycle/user metadata it reports once
// the event's authenticity has been verified by ParseWebhook.
type BillingProvider interface {
	// CreateCheckoutLink creates a hosted checkout session carrying the
	// tier, billing cycle, and user ID as event metadata.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// ParseWebhook validates the event signature and returns a normalized
	// event. Must reject unverifiable payloads to prevent spoofing.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	UserID     string
	Tier       tier.Tier
	Cycle      tier.BillingCycle
	Price      tier.Money
	Email      string // pre-fill billing email if known
	SuccessURL string
	CancelURL  string
}

// CheckoutLink represents a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// EventType represents the normalized billing event type.
type EventType string

const (
	EventPaymentApproved       EventType = "payment_approved"
	EventPaymentFailed         EventType = "payment_failed"
	EventSubscriptionCancelled EventType = "subscription_cancelled"
)

// WebhookEvent is a normalized "payment approved" (or related) event from
// the gateway, carrying the metadata the activation flow needs.
type WebhookEvent struct {
	Type          EventType
	ProviderEvent string // original provider event name
	EventRef      string // provider's event/transaction reference (idempotency key)
	UserID        string
	Tier          string
	BillingCycle  string
	Raw           map[string]any
}
