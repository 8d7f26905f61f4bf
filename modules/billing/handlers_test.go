package billing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quoteforge/quoteforge/modules/billing"
	"github.com/quoteforge/quoteforge/pkg/archive"
	"github.com/quoteforge/quoteforge/pkg/costing"
	"github.com/quoteforge/quoteforge/pkg/quotepdf"
	"github.com/quoteforge/quoteforge/pkg/subscription"
	"github.com/quoteforge/quoteforge/pkg/tier"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Activate(ctx context.Context, userID uuid.UUID, t tier.Tier, cycle tier.BillingCycle, opts ...subscription.ActivateOption) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID, t, cycle, opts)
	if sub := args.Get(0); sub != nil {
		return sub.(*subscription.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Cancel(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if sub := args.Get(0); sub != nil {
		return sub.(*subscription.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Reactivate(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if sub := args.Get(0); sub != nil {
		return sub.(*subscription.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) GetSubscription(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if sub := args.Get(0); sub != nil {
		return sub.(*subscription.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) CheckQuota(ctx context.Context, userID uuid.UUID) (subscription.AccessDecision, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(subscription.AccessDecision), args.Error(1)
}

func (m *mockService) RecordQuote(ctx context.Context, userID uuid.UUID) (subscription.AccessDecision, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(subscription.AccessDecision), args.Error(1)
}

func (m *mockService) HasFeature(ctx context.Context, userID uuid.UUID, feature tier.Feature) bool {
	args := m.Called(ctx, userID, feature)
	return args.Bool(0)
}

func (m *mockService) CreateCheckoutLink(ctx context.Context, userID uuid.UUID, t tier.Tier, cycle tier.BillingCycle, opts subscription.CheckoutOptions) (*subscription.CheckoutLink, error) {
	args := m.Called(ctx, userID, t, cycle, opts)
	if link := args.Get(0); link != nil {
		return link.(*subscription.CheckoutLink), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog(t *testing.T) *tier.Catalog {
	t.Helper()
	catalog, err := tier.NewCatalog(context.Background(), tier.DefaultSource())
	require.NoError(t, err)
	return catalog
}

func newServer(t *testing.T, svc subscription.Service) *httptest.Server {
	t.Helper()

	generator := billing.NewQuoteGenerator(
		svc,
		quotepdf.NewRenderer(quotepdf.Company{Name: "QuoteForge", Email: "hello@quoteforge.io"}),
		archive.NewLocalStorage(t.TempDir(), "http://localhost:8080/files"),
		"http://localhost:8080/q",
	)
	handler := billing.NewHandler(svc, testCatalog(t), generator, nil, discardLogger())

	srv := httptest.NewServer(billing.Router(billing.RouterOptions{Handler: handler}))
	t.Cleanup(srv.Close)
	return srv
}

func quoteRequestBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(billing.QuoteRequest{
		CustomerName: "Acme Prototyping",
		ProjectName:  "Bracket v2",
		Input: costing.Input{
			Currency:  "EUR",
			Quantity:  2,
			MarginPct: 15,
			Material:  costing.Material{Name: "PETG", PricePerKg: 3000, GramsUsed: 80},
			Machine:   costing.Machine{HourlyRate: 200, PrintTime: 3 * time.Hour},
			Energy:    costing.Energy{PowerWatts: 150, PricePerKWh: 30},
			Labor:     costing.Labor{HourlyRate: 2500, Hours: 0.25},
		},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func allowedDecision(remaining int64) subscription.AccessDecision {
	maxQ := int64(50)
	return subscription.AccessDecision{
		Tier:      tier.Starter,
		Status:    subscription.StatusActive,
		Current:   maxQ - remaining,
		Max:       &maxQ,
		Remaining: &remaining,
		Allowed:   true,
	}
}

func TestListPlans(t *testing.T) {
	t.Parallel()

	srv := newServer(t, &mockService{})
	resp, err := http.Get(srv.URL + "/plans")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Plans []struct {
			Tier         string `json:"tier"`
			PriceMonthly struct {
				Amount int64 `json:"amount"`
			} `json:"price_monthly"`
		} `json:"plans"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Plans, 5)
	assert.Equal(t, "free", payload.Plans[0].Tier)
	assert.Equal(t, "starter", payload.Plans[1].Tier)
	assert.Equal(t, int64(1990), payload.Plans[1].PriceMonthly.Amount)
}

func TestGetQuota(t *testing.T) {
	t.Parallel()

	t.Run("returns access decision", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc := &mockService{}
		svc.On("CheckQuota", mock.Anything, userID).Return(allowedDecision(10), nil)

		srv := newServer(t, svc)
		resp, err := http.Get(srv.URL + "/users/" + userID.String() + "/quota")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var decision subscription.AccessDecision
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decision))
		assert.True(t, decision.Allowed)
		assert.Equal(t, int64(10), *decision.Remaining)
	})

	t.Run("rejects malformed user id", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, &mockService{})
		resp, err := http.Get(srv.URL + "/users/not-a-uuid/quota")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateQuote(t *testing.T) {
	t.Parallel()

	t.Run("prices a job and renders the pdf", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc := &mockService{}
		svc.On("RecordQuote", mock.Anything, userID).Return(allowedDecision(49), nil)
		svc.On("HasFeature", mock.Anything, userID, tier.FeaturePDFGeneration).Return(true)

		srv := newServer(t, svc)
		resp, err := http.Post(srv.URL+"/users/"+userID.String()+"/quotes", "application/json", quoteRequestBody(t))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var result billing.QuoteResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.NotEmpty(t, result.QuoteNumber)
		assert.NotEmpty(t, result.PDFURL)
		assert.Positive(t, result.Breakdown.Total.Amount)
		svc.AssertExpectations(t)
	})

	t.Run("free tier gets a breakdown without pdf", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc := &mockService{}
		svc.On("RecordQuote", mock.Anything, userID).Return(allowedDecision(2), nil)
		svc.On("HasFeature", mock.Anything, userID, tier.FeaturePDFGeneration).Return(false)

		srv := newServer(t, svc)
		resp, err := http.Post(srv.URL+"/users/"+userID.String()+"/quotes", "application/json", quoteRequestBody(t))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var result billing.QuoteResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Empty(t, result.PDFURL)
	})

	t.Run("quota exhausted answers 429 with the decision", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		denied := allowedDecision(0)
		denied.Allowed = false

		svc := &mockService{}
		svc.On("RecordQuote", mock.Anything, userID).Return(denied, subscription.ErrQuotaExceeded)

		srv := newServer(t, svc)
		resp, err := http.Post(srv.URL+"/users/"+userID.String()+"/quotes", "application/json", quoteRequestBody(t))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	})

	t.Run("invalid costing input answers 422", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		srv := newServer(t, &mockService{})

		body, err := json.Marshal(billing.QuoteRequest{
			CustomerName: "Acme",
			Input:        costing.Input{Currency: "EUR", Quantity: 0},
		})
		require.NoError(t, err)

		resp, err := http.Post(srv.URL+"/users/"+userID.String()+"/quotes", "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestHandleWebhook(t *testing.T) {
	t.Parallel()

	t.Run("acknowledges processed events", func(t *testing.T) {
		t.Parallel()
		svc := &mockService{}
		svc.On("HandleWebhook", mock.Anything, []byte(`{"event":"x"}`), "sig").Return(nil)

		srv := newServer(t, svc)
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/webhooks/paddle", bytes.NewBufferString(`{"event":"x"}`))
		require.NoError(t, err)
		req.Header.Set("Paddle-Signature", "sig")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("verification failure answers 400", func(t *testing.T) {
		t.Parallel()
		svc := &mockService{}
		svc.On("HandleWebhook", mock.Anything, mock.Anything, mock.Anything).
			Return(subscription.ErrWebhookVerificationFailed)

		srv := newServer(t, svc)
		resp, err := http.Post(srv.URL+"/webhooks/paddle", "application/json", bytes.NewBufferString(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminActivate(t *testing.T) {
	t.Parallel()

	t.Run("activates with a day override", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		now := time.Now().UTC()
		sub := &subscription.Subscription{
			UserID:             userID,
			Tier:               tier.Professional,
			Status:             subscription.StatusActive,
			BillingCycle:       tier.CycleMonthly,
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   now.AddDate(0, 0, 14),
		}

		svc := &mockService{}
		svc.On("Activate", mock.Anything, userID, tier.Professional, tier.CycleMonthly,
			mock.MatchedBy(func(opts []subscription.ActivateOption) bool { return len(opts) == 1 })).
			Return(sub, nil)

		srv := newServer(t, svc)
		body := bytes.NewBufferString(`{"tier":"professional","days":14}`)
		resp, err := http.Post(srv.URL+"/admin/subscriptions/"+userID.String()+"/activate", "application/json", body)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("unknown tier answers 400", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, &mockService{})
		body := bytes.NewBufferString(`{"tier":"platinum"}`)
		resp, err := http.Post(srv.URL+"/admin/subscriptions/"+uuid.NewString()+"/activate", "application/json", body)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminCancel(t *testing.T) {
	t.Parallel()

	t.Run("missing subscription answers 404", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc := &mockService{}
		svc.On("Cancel", mock.Anything, userID).Return(nil, subscription.ErrSubscriptionNotFound)

		srv := newServer(t, svc)
		resp, err := http.Post(srv.URL+"/admin/subscriptions/"+userID.String()+"/cancel", "application/json", bytes.NewBufferString(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
