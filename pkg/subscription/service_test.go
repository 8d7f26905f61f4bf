package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quoteforge/quoteforge/pkg/subscription"
	"github.com/quoteforge/quoteforge/pkg/tier"
)

// Mock implementations

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockStore) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

type mockUsageStore struct {
	mock.Mock
}

func (m *mockUsageStore) GetUsage(ctx context.Context, userID uuid.UUID) (*subscription.UsageCounter, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.UsageCounter), args.Error(1)
}

func (m *mockUsageStore) IncrementUsage(ctx context.Context, userID uuid.UUID, window subscription.Window, limit int64) (*subscription.UsageCounter, error) {
	args := m.Called(ctx, userID, window, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.UsageCounter), args.Error(1)
}

// fakeUsageStore mirrors the SQL counter semantics: one row per user, a
// same-window increment accumulates, a different window resets the count to
// one, and a same-window row at the limit refuses the increment.
type fakeUsageStore struct {
	counter *subscription.UsageCounter
}

func (f *fakeUsageStore) GetUsage(ctx context.Context, userID uuid.UUID) (*subscription.UsageCounter, error) {
	return f.counter, nil
}

func (f *fakeUsageStore) IncrementUsage(ctx context.Context, userID uuid.UUID, window subscription.Window, limit int64) (*subscription.UsageCounter, error) {
	if f.counter == nil || !f.counter.PeriodStart.Equal(window.Start) {
		f.counter = &subscription.UsageCounter{
			UserID:          userID,
			PeriodStart:     window.Start,
			PeriodEnd:       window.End,
			QuotesGenerated: 1,
		}
		return f.counter, nil
	}
	if limit >= 0 && f.counter.QuotesGenerated >= limit {
		return nil, subscription.ErrQuotaExceeded
	}
	f.counter.QuotesGenerated++
	return f.counter, nil
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateCheckoutLink(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.CheckoutLink), args.Error(1)
}

func (m *mockProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*subscription.WebhookEvent, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.WebhookEvent), args.Error(1)
}

var fixedNow = time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store *mockStore, usage *mockUsageStore, provider *mockProvider) subscription.Service {
	t.Helper()
	catalog, err := tier.NewCatalog(context.Background(), tier.DefaultSource())
	require.NoError(t, err)
	return subscription.NewService(catalog, store, usage, provider,
		subscription.WithClock(func() time.Time { return fixedNow }),
	)
}

func TestService_Activate(t *testing.T) {
	t.Parallel()

	t.Run("upserts a monthly subscription with a calendar-month window", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		userID := uuid.New()

		var saved *subscription.Subscription
		store.On("Upsert", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*subscription.Subscription) }).
			Return(nil)

		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		sub, err := svc.Activate(context.Background(), userID, tier.Starter, tier.CycleMonthly)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Equal(t, fixedNow, sub.CurrentPeriodStart)
		assert.Equal(t, fixedNow.AddDate(0, 1, 0), sub.CurrentPeriodEnd)
		require.NotNil(t, saved)
		assert.Equal(t, userID, saved.UserID)
	})

	t.Run("admin day override beats the tier default", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		store.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		sub, err := svc.Activate(context.Background(), uuid.New(), tier.Professional, tier.CycleMonthly,
			subscription.WithActivationDays(7))
		require.NoError(t, err)

		assert.Equal(t, fixedNow.AddDate(0, 0, 7), sub.CurrentPeriodEnd)
	})

	t.Run("rejects a non-positive override before any write", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		_, err := svc.Activate(context.Background(), uuid.New(), tier.Professional, tier.CycleMonthly,
			subscription.WithActivationDays(0))
		assert.ErrorIs(t, err, subscription.ErrInvalidOverride)
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown tiers before any write", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		_, err := svc.Activate(context.Background(), uuid.New(), tier.Tier("platinum"), tier.CycleMonthly)
		assert.ErrorIs(t, err, tier.ErrUnknownTier)
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("rejects a billing cycle outside the closed set", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		_, err := svc.Activate(context.Background(), uuid.New(), tier.Starter, tier.BillingCycle("weekly"))
		assert.ErrorIs(t, err, subscription.ErrInvalidBillingCycle)
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("test tier activates as a 7-day trial", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		store.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		sub, err := svc.Activate(context.Background(), uuid.New(), tier.Test, "")
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assert.Equal(t, fixedNow.AddDate(0, 0, 7), sub.CurrentPeriodEnd)
	})

	t.Run("lifetime tier gets the 100-year sentinel", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		store.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		sub, err := svc.Activate(context.Background(), uuid.New(), tier.Lifetime, tier.CycleLifetime)
		require.NoError(t, err)

		assert.Equal(t, fixedNow.AddDate(100, 0, 0), sub.CurrentPeriodEnd)
	})
}

func TestService_CancelReactivate(t *testing.T) {
	t.Parallel()

	t.Run("cancel keeps the period end", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		end := fixedNow.AddDate(0, 0, 20)
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).Return(&subscription.Subscription{
			UserID:             userID,
			Tier:               tier.Starter,
			Status:             subscription.StatusActive,
			CurrentPeriodStart: fixedNow.AddDate(0, 0, -10),
			CurrentPeriodEnd:   end,
		}, nil)
		store.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		sub, err := svc.Cancel(context.Background(), userID)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusCanceled, sub.Status)
		require.NotNil(t, sub.CanceledAt)
		assert.Equal(t, fixedNow, *sub.CanceledAt)
		assert.Equal(t, end, sub.CurrentPeriodEnd)
	})

	t.Run("cancel without a row surfaces not found", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).Return(nil, subscription.ErrSubscriptionNotFound)

		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		_, err := svc.Cancel(context.Background(), userID)
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})

	t.Run("reactivate clears the cancellation", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		canceledAt := fixedNow.AddDate(0, 0, -2)
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).Return(&subscription.Subscription{
			UserID:           userID,
			Tier:             tier.Starter,
			Status:           subscription.StatusCanceled,
			CanceledAt:       &canceledAt,
			CurrentPeriodEnd: fixedNow.AddDate(0, 0, 20),
		}, nil)
		store.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		sub, err := svc.Reactivate(context.Background(), userID)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Nil(t, sub.CanceledAt)
	})
}

func TestService_CheckQuota(t *testing.T) {
	t.Parallel()

	t.Run("free fallback when no row exists", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		usage := &mockUsageStore{}
		store.On("Get", mock.Anything, userID).Return(nil, subscription.ErrSubscriptionNotFound)
		usage.On("GetUsage", mock.Anything, userID).Return(nil, nil)

		svc := newTestService(t, store, usage, &mockProvider{})

		decision, err := svc.CheckQuota(context.Background(), userID)
		require.NoError(t, err)

		assert.Equal(t, tier.Free, decision.Tier)
		assert.True(t, decision.Allowed)
		require.NotNil(t, decision.Max)
		assert.Equal(t, int64(3), *decision.Max)
	})

	t.Run("canceled mid-period still allowed", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		canceledAt := fixedNow.AddDate(0, 0, -10)
		sub := &subscription.Subscription{
			UserID:             userID,
			Tier:               tier.Starter,
			Status:             subscription.StatusCanceled,
			CanceledAt:         &canceledAt,
			CurrentPeriodStart: fixedNow.AddDate(0, 0, -20),
			CurrentPeriodEnd:   fixedNow.AddDate(0, 0, 10),
		}
		store := &mockStore{}
		usage := &mockUsageStore{}
		store.On("Get", mock.Anything, userID).Return(sub, nil)
		usage.On("GetUsage", mock.Anything, userID).Return(&subscription.UsageCounter{
			UserID:          userID,
			PeriodStart:     sub.CurrentPeriodStart,
			PeriodEnd:       sub.CurrentPeriodEnd,
			QuotesGenerated: 10,
		}, nil)

		svc := newTestService(t, store, usage, &mockProvider{})

		decision, err := svc.CheckQuota(context.Background(), userID)
		require.NoError(t, err)

		assert.True(t, decision.Allowed)
		assert.Equal(t, tier.Starter, decision.Tier)
	})
}

func TestService_RecordQuote(t *testing.T) {
	t.Parallel()

	t.Run("increments within the subscription window when allowed", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		sub := &subscription.Subscription{
			UserID:             userID,
			Tier:               tier.Starter,
			Status:             subscription.StatusActive,
			CurrentPeriodStart: fixedNow.AddDate(0, 0, -5),
			CurrentPeriodEnd:   fixedNow.AddDate(0, 0, 25),
		}
		window := subscription.Window{Start: sub.CurrentPeriodStart, End: sub.CurrentPeriodEnd}

		store := &mockStore{}
		usage := &mockUsageStore{}
		store.On("Get", mock.Anything, userID).Return(sub, nil)
		usage.On("GetUsage", mock.Anything, userID).Return(&subscription.UsageCounter{
			UserID:          userID,
			PeriodStart:     window.Start,
			PeriodEnd:       window.End,
			QuotesGenerated: 10,
		}, nil)
		usage.On("IncrementUsage", mock.Anything, userID, window, int64(50)).Return(&subscription.UsageCounter{
			UserID:          userID,
			PeriodStart:     window.Start,
			PeriodEnd:       window.End,
			QuotesGenerated: 11,
		}, nil)

		svc := newTestService(t, store, usage, &mockProvider{})

		decision, err := svc.RecordQuote(context.Background(), userID)
		require.NoError(t, err)

		assert.Equal(t, int64(11), decision.Current)
		require.NotNil(t, decision.Remaining)
		assert.Equal(t, int64(39), *decision.Remaining)
		usage.AssertCalled(t, "IncrementUsage", mock.Anything, userID, window, int64(50))
	})

	t.Run("blocked at the ceiling without incrementing", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		sub := &subscription.Subscription{
			UserID:             userID,
			Tier:               tier.Starter,
			Status:             subscription.StatusActive,
			CurrentPeriodStart: fixedNow.AddDate(0, 0, -5),
			CurrentPeriodEnd:   fixedNow.AddDate(0, 0, 25),
		}

		store := &mockStore{}
		usage := &mockUsageStore{}
		store.On("Get", mock.Anything, userID).Return(sub, nil)
		usage.On("GetUsage", mock.Anything, userID).Return(&subscription.UsageCounter{
			UserID:          userID,
			PeriodStart:     sub.CurrentPeriodStart,
			PeriodEnd:       sub.CurrentPeriodEnd,
			QuotesGenerated: 50,
		}, nil)

		svc := newTestService(t, store, usage, &mockProvider{})

		decision, err := svc.RecordQuote(context.Background(), userID)
		assert.ErrorIs(t, err, subscription.ErrQuotaExceeded)
		assert.False(t, decision.Allowed)
		usage.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("free usage accumulates across requests until the ceiling", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).Return(nil, subscription.ErrSubscriptionNotFound)
		usage := &fakeUsageStore{}

		catalog, err := tier.NewCatalog(context.Background(), tier.DefaultSource())
		require.NoError(t, err)

		// Each request sees a later clock, as real traffic does. The counter
		// window must stay put so the count climbs to the free ceiling of 3.
		clock := fixedNow
		svc := subscription.NewService(catalog, store, usage, &mockProvider{},
			subscription.WithClock(func() time.Time {
				clock = clock.Add(time.Second)
				return clock
			}),
		)

		for i := int64(1); i <= 3; i++ {
			decision, err := svc.RecordQuote(context.Background(), userID)
			require.NoError(t, err)
			assert.Equal(t, i, decision.Current)
		}

		decision, err := svc.RecordQuote(context.Background(), userID)
		assert.ErrorIs(t, err, subscription.ErrQuotaExceeded)
		assert.False(t, decision.Allowed)
		assert.Equal(t, int64(3), usage.counter.QuotesGenerated)
	})

	t.Run("racer losing the last slot at the store gets quota exceeded", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		sub := &subscription.Subscription{
			UserID:             userID,
			Tier:               tier.Starter,
			Status:             subscription.StatusActive,
			CurrentPeriodStart: fixedNow.AddDate(0, 0, -5),
			CurrentPeriodEnd:   fixedNow.AddDate(0, 0, 25),
		}
		window := subscription.Window{Start: sub.CurrentPeriodStart, End: sub.CurrentPeriodEnd}

		store := &mockStore{}
		usage := &mockUsageStore{}
		store.On("Get", mock.Anything, userID).Return(sub, nil)
		// The check sees one slot left, but a concurrent request fills it
		// before the increment lands.
		usage.On("GetUsage", mock.Anything, userID).Return(&subscription.UsageCounter{
			UserID:          userID,
			PeriodStart:     window.Start,
			PeriodEnd:       window.End,
			QuotesGenerated: 49,
		}, nil)
		usage.On("IncrementUsage", mock.Anything, userID, window, int64(50)).
			Return(nil, subscription.ErrQuotaExceeded)

		svc := newTestService(t, store, usage, &mockProvider{})

		decision, err := svc.RecordQuote(context.Background(), userID)
		assert.ErrorIs(t, err, subscription.ErrQuotaExceeded)
		assert.False(t, decision.Allowed)
		require.NotNil(t, decision.Remaining)
		assert.Equal(t, int64(0), *decision.Remaining)
	})
}

func TestService_HasFeature(t *testing.T) {
	t.Parallel()

	t.Run("paid tier feature gate", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).Return(&subscription.Subscription{
			UserID:             userID,
			Tier:               tier.Enterprise,
			Status:             subscription.StatusActive,
			CurrentPeriodStart: fixedNow.AddDate(0, 0, -1),
			CurrentPeriodEnd:   fixedNow.AddDate(0, 1, 0),
		}, nil)

		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		assert.True(t, svc.HasFeature(context.Background(), userID, tier.FeatureWhiteLabel))
	})

	t.Run("free fallback has only pdf generation", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		store.On("Get", mock.Anything, userID).Return(nil, subscription.ErrSubscriptionNotFound)

		svc := newTestService(t, store, &mockUsageStore{}, &mockProvider{})

		assert.True(t, svc.HasFeature(context.Background(), userID, tier.FeaturePDFGeneration))
		assert.False(t, svc.HasFeature(context.Background(), userID, tier.FeatureDashboard))
	})
}

func TestService_HandleWebhook(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"event_type":"transaction.completed"}`)
	const signature = "ts=1;h1=abc"

	t.Run("payment approved activates the subscription", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, payload, signature).Return(&subscription.WebhookEvent{
			Type:         subscription.EventPaymentApproved,
			EventRef:     "txn_123",
			UserID:       userID.String(),
			Tier:         "professional",
			BillingCycle: "yearly",
		}, nil)

		var saved *subscription.Subscription
		store.On("Upsert", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*subscription.Subscription) }).
			Return(nil)

		svc := newTestService(t, store, &mockUsageStore{}, provider)

		err := svc.HandleWebhook(context.Background(), payload, signature)
		require.NoError(t, err)

		require.NotNil(t, saved)
		assert.Equal(t, tier.Professional, saved.Tier)
		assert.Equal(t, tier.CycleYearly, saved.BillingCycle)
		assert.Equal(t, "txn_123", saved.PaymentRef)
		assert.Equal(t, fixedNow.AddDate(1, 0, 0), saved.CurrentPeriodEnd)
	})

	t.Run("unknown tier in metadata fails without a write", func(t *testing.T) {
		t.Parallel()
		store := &mockStore{}
		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, payload, signature).Return(&subscription.WebhookEvent{
			Type:   subscription.EventPaymentApproved,
			UserID: uuid.NewString(),
			Tier:   "platinum",
		}, nil)

		svc := newTestService(t, store, &mockUsageStore{}, provider)

		err := svc.HandleWebhook(context.Background(), payload, signature)
		assert.ErrorIs(t, err, tier.ErrUnknownTier)
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("missing metadata is rejected", func(t *testing.T) {
		t.Parallel()
		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, payload, signature).Return(&subscription.WebhookEvent{
			Type: subscription.EventPaymentApproved,
		}, nil)

		svc := newTestService(t, &mockStore{}, &mockUsageStore{}, provider)

		err := svc.HandleWebhook(context.Background(), payload, signature)
		assert.ErrorIs(t, err, subscription.ErrMissingWebhookMetadata)
	})

	t.Run("payment failed marks an existing row past due", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, payload, signature).Return(&subscription.WebhookEvent{
			Type:   subscription.EventPaymentFailed,
			UserID: userID.String(),
		}, nil)
		store.On("Get", mock.Anything, userID).Return(&subscription.Subscription{
			UserID: userID,
			Tier:   tier.Starter,
			Status: subscription.StatusActive,
		}, nil)

		var updated *subscription.Subscription
		store.On("Update", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { updated = args.Get(1).(*subscription.Subscription) }).
			Return(nil)

		svc := newTestService(t, store, &mockUsageStore{}, provider)

		err := svc.HandleWebhook(context.Background(), payload, signature)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, subscription.StatusPastDue, updated.Status)
	})

	t.Run("payment failed without a row is a no-op", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		store := &mockStore{}
		provider := &mockProvider{}
		provider.On("ParseWebhook", mock.Anything, payload, signature).Return(&subscription.WebhookEvent{
			Type:   subscription.EventPaymentFailed,
			UserID: userID.String(),
		}, nil)
		store.On("Get", mock.Anything, userID).Return(nil, subscription.ErrSubscriptionNotFound)

		svc := newTestService(t, store, &mockUsageStore{}, provider)

		assert.NoError(t, svc.HandleWebhook(context.Background(), payload, signature))
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestService_CreateCheckoutLink(t *testing.T) {
	t.Parallel()

	t.Run("passes contractual price and metadata to the provider", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		provider := &mockProvider{}
		provider.On("CreateCheckoutLink", mock.Anything, mock.MatchedBy(func(req subscription.CheckoutRequest) bool {
			return req.UserID == userID.String() &&
				req.Tier == tier.Starter &&
				req.Cycle == tier.CycleMonthly &&
				req.Price.Amount == 1990
		})).Return(&subscription.CheckoutLink{URL: "https://checkout.example/abc"}, nil)

		svc := newTestService(t, &mockStore{}, &mockUsageStore{}, provider)

		link, err := svc.CreateCheckoutLink(context.Background(), userID, tier.Starter, tier.CycleMonthly,
			subscription.CheckoutOptions{Email: "maker@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example/abc", link.URL)
	})

	t.Run("unknown tier never reaches the provider", func(t *testing.T) {
		t.Parallel()
		provider := &mockProvider{}
		svc := newTestService(t, &mockStore{}, &mockUsageStore{}, provider)

		_, err := svc.CreateCheckoutLink(context.Background(), uuid.New(), tier.Tier("gold"), tier.CycleMonthly,
			subscription.CheckoutOptions{})
		assert.ErrorIs(t, err, tier.ErrUnknownTier)
		provider.AssertNotCalled(t, "CreateCheckoutLink", mock.Anything, mock.Anything)
	})
}
