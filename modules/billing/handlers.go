package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quoteforge/quoteforge/pkg/costing"
	"github.com/quoteforge/quoteforge/pkg/logger"
	"github.com/quoteforge/quoteforge/pkg/quotepdf"
	"github.com/quoteforge/quoteforge/pkg/subscription"
	"github.com/quoteforge/quoteforge/pkg/tier"
)

// maxWebhookBody bounds webhook payload reads.
const maxWebhookBody = 1 << 20

// Handler serves the billing HTTP surface.
type Handler struct {
	subs     subscription.Service
	catalog  *tier.Catalog
	quotes   *QuoteGenerator
	notifier *Notifier
	log      *slog.Logger
}

// NewHandler creates the billing handler. The notifier is optional;
// everything else panics when nil.
func NewHandler(subs subscription.Service, catalog *tier.Catalog, quotes *QuoteGenerator, notifier *Notifier, log *slog.Logger) *Handler {
	if subs == nil {
		panic("billing: subscription.Service is required")
	}
	if catalog == nil {
		panic("billing: tier.Catalog is required")
	}
	if quotes == nil {
		panic("billing: QuoteGenerator is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		subs:     subs,
		catalog:  catalog,
		quotes:   quotes,
		notifier: notifier,
		log:      log,
	}
}

type planResponse struct {
	Tier         tier.Tier      `json:"tier"`
	Name         string         `json:"name"`
	PriceMonthly tier.Money     `json:"price_monthly"`
	PriceYearly  tier.Money     `json:"price_yearly"`
	MaxQuotes    int64          `json:"max_quotes"`
	MaxClients   int64          `json:"max_clients"`
	MaxCompanies int64          `json:"max_companies"`
	Features     []tier.Feature `json:"features"`
}

// ListPlans returns the public tier catalog.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	tiers := h.catalog.Tiers()
	plans := make([]planResponse, 0, len(tiers))
	for _, t := range tiers {
		def, err := h.catalog.Lookup(t)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		plans = append(plans, planResponse{
			Tier:         def.Tier,
			Name:         def.Name,
			PriceMonthly: def.PriceMonthly,
			PriceYearly:  def.PriceYearly,
			MaxQuotes:    def.MaxQuotes,
			MaxClients:   def.MaxClients,
			MaxCompanies: def.MaxCompanies,
			Features:     def.Features,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

type checkoutRequest struct {
	UserID       string `json:"user_id"`
	Tier         string `json:"tier"`
	BillingCycle string `json:"billing_cycle"`
	Email        string `json:"email"`
	SuccessURL   string `json:"success_url"`
	CancelURL    string `json:"cancel_url"`
}

// CreateCheckout returns a hosted checkout link for a paid tier.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid user_id")
		return
	}
	t, err := tier.Parse(req.Tier)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cycle := tier.BillingCycle(req.BillingCycle)
	if cycle == "" {
		cycle = tier.CycleMonthly
	}

	link, err := h.subs.CreateCheckoutLink(r.Context(), userID, t, cycle, subscription.CheckoutOptions{
		Email:      req.Email,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, link)
}

// HandleWebhook verifies and applies a billing provider event. The
// provider retries non-2xx responses, so only verification and
// malformed-payload failures answer 400.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	signature := r.Header.Get("Paddle-Signature")
	if err := h.subs.HandleWebhook(r.Context(), payload, signature); err != nil {
		h.log.ErrorContext(r.Context(), "webhook processing failed", logger.Error(err))
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSubscription returns the raw subscription row.
func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	sub, err := h.subs.GetSubscription(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

// GetQuota returns a fresh access decision, computed on every call.
func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	decision, err := h.subs.CheckQuota(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, decision)
}

// CreateQuote prices a print job, spends a quota slot, and renders the
// PDF when the tier includes it.
func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.quotes.Generate(r.Context(), userID, req)
	if errors.Is(err, subscription.ErrQuotaExceeded) {
		h.writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":    "quote quota exceeded for the current period",
			"decision": result.Decision,
		})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

type adminActivateRequest struct {
	Tier         string `json:"tier"`
	BillingCycle string `json:"billing_cycle"`
	Days         int    `json:"days,omitempty"`
	Email        string `json:"email,omitempty"`
}

// AdminActivate manually activates a subscription, optionally with an
// exact day count instead of the tier's natural window.
func (h *Handler) AdminActivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var req adminActivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := tier.Parse(req.Tier)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cycle := tier.BillingCycle(req.BillingCycle)
	if cycle == "" {
		cycle = tier.CycleMonthly
	}

	var opts []subscription.ActivateOption
	if req.Days != 0 {
		opts = append(opts, subscription.WithActivationDays(req.Days))
	}

	sub, err := h.subs.Activate(r.Context(), userID, t, cycle, opts...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.notifier != nil && req.Email != "" {
		price, priceErr := h.catalog.PriceFor(t, cycle)
		if priceErr == nil {
			h.notifier.SubscriptionActivated(r.Context(), req.Email, sub, price)
		}
	}
	h.writeJSON(w, http.StatusOK, sub)
}

type adminLifecycleRequest struct {
	Email string `json:"email,omitempty"`
}

// AdminCancel marks a subscription canceled; paid access runs until the
// period end.
func (h *Handler) AdminCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var req adminLifecycleRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sub, err := h.subs.Cancel(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.notifier != nil && req.Email != "" {
		h.notifier.SubscriptionCanceled(r.Context(), req.Email, sub)
	}
	h.writeJSON(w, http.StatusOK, sub)
}

// AdminReactivate clears a cancellation on the current period.
func (h *Handler) AdminReactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	sub, err := h.subs.Reactivate(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", logger.Error(err))
	}
}

func (h *Handler) writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain sentinels onto HTTP statuses. Unknown errors
// answer 500 without leaking internals.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		h.writeErrorMessage(w, http.StatusNotFound, "subscription not found")
	case errors.Is(err, tier.ErrUnknownTier):
		h.writeErrorMessage(w, http.StatusBadRequest, "unknown tier")
	case errors.Is(err, subscription.ErrInvalidOverride):
		h.writeErrorMessage(w, http.StatusBadRequest, "manual period override must be a positive day count")
	case errors.Is(err, subscription.ErrInvalidBillingCycle):
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid billing cycle")
	case errors.Is(err, subscription.ErrWebhookVerificationFailed),
		errors.Is(err, subscription.ErrMissingWebhookMetadata):
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid webhook")
	case errors.Is(err, costing.ErrInvalidQuantity),
		errors.Is(err, costing.ErrInvalidMargin),
		errors.Is(err, costing.ErrInvalidMaterial),
		errors.Is(err, costing.ErrInvalidMachine),
		errors.Is(err, costing.ErrInvalidEnergy),
		errors.Is(err, costing.ErrInvalidLabor),
		errors.Is(err, costing.ErrMissingCurrency),
		errors.Is(err, quotepdf.ErrMissingCustomer):
		h.writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.ErrorContext(r.Context(), "request failed", logger.Error(err))
		h.writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}
