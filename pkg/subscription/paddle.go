package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"

	"github.com/quoteforge/quoteforge/pkg/tier"
)

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements BillingProvider for Paddle.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
	config   PaddleConfig
}

// NewPaddleProvider creates a new Paddle billing provider.
func NewPaddleProvider(config PaddleConfig) (*PaddleProvider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProviderEnv, config.Environment)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(config.WebhookSecret),
		config:   config,
	}, nil
}

// CreateCheckoutLink creates a hosted checkout transaction in Paddle.
// The tier, billing cycle, and user ID ride along as custom data so the
// webhook confirmation can map the payment back to an activation.
func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.UserID == "" {
		return nil, errors.New("user ID is required")
	}
	if req.Tier == "" {
		return nil, errors.New("tier is required")
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  priceIDFor(req.Tier, req.Cycle),
		Quantity: 1,
	})

	transactionReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"user_id":       req.UserID,
			"tier":          string(req.Tier),
			"billing_cycle": string(req.Cycle),
		},
	}

	if req.Email != "" {
		transactionReq.CustomData["email"] = req.Email
	}

	if req.SuccessURL != "" {
		transactionReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	transaction, err := p.client.TransactionsClient.CreateTransaction(ctx, transactionReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}

	if transaction.Checkout == nil || transaction.Checkout.URL == nil {
		return nil, ErrNoCheckoutURL
	}

	return &CheckoutLink{
		URL:       *transaction.Checkout.URL,
		SessionID: transaction.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour), // Paddle checkout links expire in 24 hours
	}, nil
}

// ParseWebhook validates and parses incoming webhook data from Paddle.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	// The Paddle verifier works on http.Request, so wrap the raw payload.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for verification: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, errors.Join(ErrWebhookVerificationFailed, err)
	}
	if !valid {
		return nil, ErrWebhookVerificationFailed
	}

	var paddleEvent struct {
		EventID   string         `json:"event_id"`
		EventType string         `json:"event_type"`
		Data      map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &paddleEvent); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	event := &WebhookEvent{
		Type:          mapPaddleEventType(paddleEvent.EventType),
		ProviderEvent: paddleEvent.EventType,
		EventRef:      paddleEvent.EventID,
		Raw:           paddleEvent.Data,
	}

	if id, ok := paddleEvent.Data["id"].(string); ok && event.EventRef == "" {
		event.EventRef = id
	}

	if customData, ok := paddleEvent.Data["custom_data"].(map[string]any); ok {
		if userID, ok := customData["user_id"].(string); ok {
			event.UserID = userID
		}
		if t, ok := customData["tier"].(string); ok {
			event.Tier = t
		}
		if cycle, ok := customData["billing_cycle"].(string); ok {
			event.BillingCycle = cycle
		}
	}

	return event, nil
}

// priceIDFor maps a tier/cycle pair to the Paddle catalog price ID.
// Price IDs follow the "price_<tier>_<cycle>" convention in the Paddle
// dashboard; lifetime has a single one-time price.
func priceIDFor(t tier.Tier, cycle tier.BillingCycle) string {
	if t == tier.Lifetime {
		return "price_lifetime_onetime"
	}
	if cycle == "" {
		cycle = tier.CycleMonthly
	}
	return fmt.Sprintf("price_%s_%s", t, cycle)
}

// mapPaddleEventType maps Paddle event names to normalized internal types.
func mapPaddleEventType(paddleEvent string) EventType {
	switch paddleEvent {
	case "transaction.completed", "transaction.payment_succeeded", "subscription.created":
		return EventPaymentApproved
	case "transaction.payment_failed":
		return EventPaymentFailed
	case "subscription.canceled":
		return EventSubscriptionCancelled
	default:
		return EventType(paddleEvent)
	}
}
