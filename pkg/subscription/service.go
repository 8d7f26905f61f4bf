package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quoteforge/quoteforge/pkg/tier"
)

// Service defines the public interface for subscription management.
type Service interface {
	// Activation and lifecycle
	Activate(ctx context.Context, userID uuid.UUID, t tier.Tier, cycle tier.BillingCycle, opts ...ActivateOption) (*Subscription, error)
	Cancel(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	Reactivate(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// Quota and features
	CheckQuota(ctx context.Context, userID uuid.UUID) (AccessDecision, error)
	RecordQuote(ctx context.Context, userID uuid.UUID) (AccessDecision, error)
	HasFeature(ctx context.Context, userID uuid.UUID, feature tier.Feature) bool

	// Billing provider interactions
	CreateCheckoutLink(ctx context.Context, userID uuid.UUID, t tier.Tier, cycle tier.BillingCycle, opts CheckoutOptions) (*CheckoutLink, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// CheckoutOptions contains options for creating a checkout session.
type CheckoutOptions struct {
	Email      string
	SuccessURL string
	CancelURL  string
}

// ActivateOption adjusts a single activation.
type ActivateOption func(*activateOptions)

type activateOptions struct {
	windowOpts []WindowOption
	paymentRef string
	status     Status
}

// WithActivationDays forces the period window to an exact day count.
// Used by manual admin activation; rejected when non-positive.
func WithActivationDays(days int) ActivateOption {
	return func(o *activateOptions) {
		o.windowOpts = append(o.windowOpts, WithDayOverride(days))
	}
}

// WithPaymentRef records the provider transaction reference on the row.
func WithPaymentRef(ref string) ActivateOption {
	return func(o *activateOptions) {
		o.paymentRef = ref
	}
}

// WithStatus overrides the status the row is activated with.
// Defaults to active; the test tier activates as trialing.
func WithStatus(status Status) ActivateOption {
	return func(o *activateOptions) {
		o.status = status
	}
}

// validCycle reports whether the cycle belongs to the closed set. The empty
// string is accepted and treated as monthly by the window rules.
func validCycle(c tier.BillingCycle) bool {
	switch c {
	case "", tier.CycleMonthly, tier.CycleYearly, tier.CycleLifetime:
		return true
	default:
		return false
	}
}

type service struct {
	catalog  *tier.Catalog
	store    Store
	usage    UsageStore
	provider BillingProvider
	now      func() time.Time
}

// NewService creates a new Service. Panics if required dependencies are nil
// to fail fast during initialization rather than at the first request.
func NewService(catalog *tier.Catalog, store Store, usage UsageStore, provider BillingProvider, opts ...ServiceOption) Service {
	if catalog == nil {
		panic("subscription: tier.Catalog is required")
	}
	if store == nil {
		panic("subscription: Store is required")
	}
	if usage == nil {
		panic("subscription: UsageStore is required")
	}
	if provider == nil {
		panic("subscription: BillingProvider is required")
	}

	s := &service{
		catalog:  catalog,
		store:    store,
		usage:    usage,
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate creates or replaces the user's subscription with a freshly
// computed period window. Checkout success, webhook confirmation, and admin
// activation all land here; the upsert is keyed by user ID so the last
// writer for a user wins.
func (s *service) Activate(ctx context.Context, userID uuid.UUID, t tier.Tier, cycle tier.BillingCycle, opts ...ActivateOption) (*Subscription, error) {
	var o activateOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !validCycle(cycle) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBillingCycle, cycle)
	}

	// The test tier bypasses the priced catalog; everything else must
	// resolve to a real definition before any write happens.
	if t != tier.Test {
		if _, err := s.catalog.Lookup(t); err != nil {
			return nil, err
		}
	}

	now := s.now()
	window, err := PeriodWindow(t, cycle, now, o.windowOpts...)
	if err != nil {
		return nil, err
	}

	status := o.status
	if status == "" {
		status = StatusActive
		if t == tier.Test {
			status = StatusTrialing
		}
	}

	sub := &Subscription{
		UserID:             userID,
		Tier:               t,
		Status:             status,
		BillingCycle:       cycle,
		CurrentPeriodStart: window.Start,
		CurrentPeriodEnd:   window.End,
		PaymentRef:         o.paymentRef,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.Upsert(ctx, sub); err != nil {
		return nil, errors.Join(ErrFailedToSaveSubscription, err)
	}
	return sub, nil
}

// Cancel marks the subscription canceled without touching the period end:
// already-paid-for access persists until natural expiry.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub.Status = StatusCanceled
	sub.CanceledAt = &now
	sub.UpdatedAt = now

	if err := s.store.Update(ctx, sub); err != nil {
		return nil, errors.Join(ErrFailedToSaveSubscription, err)
	}
	return sub, nil
}

// Reactivate clears a cancellation, restoring active status on the existing
// period window.
func (s *service) Reactivate(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub.Status = StatusActive
	sub.CanceledAt = nil
	sub.UpdatedAt = s.now()

	if err := s.store.Update(ctx, sub); err != nil {
		return nil, errors.Join(ErrFailedToSaveSubscription, err)
	}
	return sub, nil
}

// GetSubscription retrieves a user's subscription.
func (s *service) GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	return s.store.Get(ctx, userID)
}

// CheckQuota loads the subscription and usage counter and computes a fresh
// access decision. Users without a row fall through to the free ceiling.
func (s *service) CheckQuota(ctx context.Context, userID uuid.UUID) (AccessDecision, error) {
	sub, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
		return AccessDecision{}, err
	}

	usage, err := s.usage.GetUsage(ctx, userID)
	if err != nil {
		return AccessDecision{}, errors.Join(ErrFailedToLoadUsage, err)
	}

	return Decide(s.catalog, sub, usage, s.now())
}

// RecordQuote checks the quota and, when allowed, atomically increments the
// usage counter for the current period window. The store applies the
// ceiling inside the same atomic statement, so concurrent racers on the
// last slot cannot push usage past the limit: the losers come back with
// ErrQuotaExceeded.
func (s *service) RecordQuote(ctx context.Context, userID uuid.UUID) (AccessDecision, error) {
	decision, err := s.CheckQuota(ctx, userID)
	if err != nil {
		return AccessDecision{}, err
	}
	if !decision.Allowed {
		return decision, ErrQuotaExceeded
	}

	window, err := s.currentWindow(ctx, userID)
	if err != nil {
		return AccessDecision{}, err
	}

	limit := tier.Unlimited
	if !decision.IsUnlimited && decision.Max != nil {
		limit = *decision.Max
	}

	counter, err := s.usage.IncrementUsage(ctx, userID, window, limit)
	if errors.Is(err, ErrQuotaExceeded) {
		decision.Allowed = false
		if decision.Max != nil {
			decision.Current = *decision.Max
			remaining := int64(0)
			decision.Remaining = &remaining
		}
		return decision, ErrQuotaExceeded
	}
	if err != nil {
		return AccessDecision{}, errors.Join(ErrFailedToRecordUsage, err)
	}

	decision.Current = counter.QuotesGenerated
	if !decision.IsUnlimited && decision.Max != nil {
		remaining := max(*decision.Max-counter.QuotesGenerated, 0)
		decision.Remaining = &remaining
	}
	return decision, nil
}

// currentWindow resolves the usage window to attribute an increment to: the
// subscription's period when one is live, otherwise the window of the
// counter row that already covers now, and only when neither exists a fresh
// free-tier month anchored at now. Reusing the live counter's window keeps
// repeated free-tier increments accumulating in one row instead of each
// request opening a new window and resetting the count.
func (s *service) currentWindow(ctx context.Context, userID uuid.UUID) (Window, error) {
	now := s.now()

	sub, err := s.store.Get(ctx, userID)
	if err == nil && sub.Status.grantsAccess() && !sub.ExpiredAt(now) {
		return Window{Start: sub.CurrentPeriodStart, End: sub.CurrentPeriodEnd}, nil
	}
	if err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
		return Window{}, err
	}

	usage, err := s.usage.GetUsage(ctx, userID)
	if err != nil {
		return Window{}, errors.Join(ErrFailedToLoadUsage, err)
	}
	if usage != nil && usage.CoversAt(now) {
		return Window{Start: usage.PeriodStart, End: usage.PeriodEnd}, nil
	}

	return PeriodWindow(tier.Free, tier.CycleMonthly, now)
}

// HasFeature checks if a feature is available on the user's effective tier.
// Returns false on any error to fail closed for capability gates.
func (s *service) HasFeature(ctx context.Context, userID uuid.UUID, feature tier.Feature) bool {
	sub, err := s.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
		return false
	}

	effective := tier.Free
	if sub != nil && sub.Status.grantsAccess() && !sub.ExpiredAt(s.now()) {
		effective = sub.Tier
	}

	def, err := effectiveDefinition(s.catalog, effective)
	if err != nil {
		return false
	}
	return def.HasFeature(feature)
}

// CreateCheckoutLink generates a hosted checkout link for a paid tier.
func (s *service) CreateCheckoutLink(ctx context.Context, userID uuid.UUID, t tier.Tier, cycle tier.BillingCycle, opts CheckoutOptions) (*CheckoutLink, error) {
	if !validCycle(cycle) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBillingCycle, cycle)
	}

	price, err := s.catalog.PriceFor(t, cycle)
	if err != nil {
		return nil, err
	}

	return s.provider.CreateCheckoutLink(ctx, CheckoutRequest{
		UserID:     userID.String(),
		Tier:       t,
		Cycle:      cycle,
		Price:      price,
		Email:      opts.Email,
		SuccessURL: opts.SuccessURL,
		CancelURL:  opts.CancelURL,
	})
}

// HandleWebhook processes a verified gateway event. Payment approval maps
// to an activation upsert keyed by user ID, which makes redelivery of the
// same event a no-op in effect.
func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case EventPaymentApproved:
		if event.UserID == "" || event.Tier == "" {
			return fmt.Errorf("%w: user_id and tier are required", ErrMissingWebhookMetadata)
		}

		userID, err := uuid.Parse(event.UserID)
		if err != nil {
			return fmt.Errorf("invalid user ID in webhook: %w", err)
		}

		t, err := tier.Parse(event.Tier)
		if err != nil {
			return err
		}

		cycle := tier.BillingCycle(event.BillingCycle)
		if cycle == "" {
			cycle = tier.CycleMonthly
		}

		_, err = s.Activate(ctx, userID, t, cycle, WithPaymentRef(event.EventRef))
		return err

	case EventSubscriptionCancelled:
		userID, err := uuid.Parse(event.UserID)
		if err != nil {
			return fmt.Errorf("invalid user ID in webhook: %w", err)
		}
		_, err = s.Cancel(ctx, userID)
		return err

	case EventPaymentFailed:
		userID, err := uuid.Parse(event.UserID)
		if err != nil {
			return fmt.Errorf("invalid user ID in webhook: %w", err)
		}

		sub, err := s.store.Get(ctx, userID)
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil // nothing to mark past due
		}
		if err != nil {
			return err
		}

		sub.Status = StatusPastDue
		sub.UpdatedAt = s.now()
		if err := s.store.Update(ctx, sub); err != nil {
			return errors.Join(ErrFailedToSaveSubscription, err)
		}
		return nil
	}

	// Unrecognized events are acknowledged without action so the gateway
	// does not retry them forever.
	return nil
}
