package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quoteforge/quoteforge/pkg/archive"
	"github.com/quoteforge/quoteforge/pkg/costing"
	"github.com/quoteforge/quoteforge/pkg/quotepdf"
	"github.com/quoteforge/quoteforge/pkg/subscription"
	"github.com/quoteforge/quoteforge/pkg/tier"
)

// QuoteRequest is a priced-quote request for one print job.
type QuoteRequest struct {
	CustomerName string        `json:"customer_name"`
	ProjectName  string        `json:"project_name"`
	Notes        string        `json:"notes"`
	Input        costing.Input `json:"input"`
}

// QuoteResult carries the priced breakdown plus the rendered document
// location when PDF generation ran.
type QuoteResult struct {
	QuoteNumber string                      `json:"quote_number"`
	Breakdown   costing.Breakdown           `json:"breakdown"`
	PDFURL      string                      `json:"pdf_url,omitempty"`
	Decision    subscription.AccessDecision `json:"decision"`
}

// QuoteGenerator prices a job, spends one quota slot, and renders the
// PDF for tiers that carry the pdf_generation feature.
type QuoteGenerator struct {
	subs     subscription.Service
	renderer *quotepdf.Renderer
	storage  archive.Storage
	baseURL  string // hosted quote page base, e.g. https://app.example.com/q
	now      func() time.Time
}

// NewQuoteGenerator panics on missing dependencies.
func NewQuoteGenerator(subs subscription.Service, renderer *quotepdf.Renderer, storage archive.Storage, baseURL string) *QuoteGenerator {
	if subs == nil {
		panic("billing: subscription.Service is required")
	}
	if renderer == nil {
		panic("billing: quotepdf.Renderer is required")
	}
	if storage == nil {
		panic("billing: archive.Storage is required")
	}
	return &QuoteGenerator{
		subs:     subs,
		renderer: renderer,
		storage:  storage,
		baseURL:  baseURL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Generate prices the job and records usage. The quota slot is spent
// before rendering; a render failure after a successful increment still
// returns an error but does not refund the slot.
func (g *QuoteGenerator) Generate(ctx context.Context, userID uuid.UUID, req QuoteRequest) (*QuoteResult, error) {
	if err := req.Input.Validate(); err != nil {
		return nil, err
	}
	if req.CustomerName == "" {
		return nil, quotepdf.ErrMissingCustomer
	}

	decision, err := g.subs.RecordQuote(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrQuotaExceeded) {
			return &QuoteResult{Decision: decision}, err
		}
		return nil, err
	}

	breakdown, err := costing.Calculate(req.Input)
	if err != nil {
		return nil, err
	}

	now := g.now()
	quoteNumber := fmt.Sprintf("Q-%s-%s", now.Format("20060102"), uuid.NewString()[:8])

	result := &QuoteResult{
		QuoteNumber: quoteNumber,
		Breakdown:   breakdown,
		Decision:    decision,
	}

	if !g.subs.HasFeature(ctx, userID, tier.FeaturePDFGeneration) {
		return result, nil
	}

	doc := quotepdf.Document{
		QuoteNumber:  quoteNumber,
		CustomerName: req.CustomerName,
		ProjectName:  req.ProjectName,
		IssuedAt:     now,
		ValidUntil:   now.AddDate(0, 1, 0),
		Notes:        req.Notes,
		Breakdown:    breakdown,
	}
	if g.baseURL != "" {
		doc.ViewURL = fmt.Sprintf("%s/%s", g.baseURL, quoteNumber)
	}

	pdf, err := g.renderer.Render(doc)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s/%s.pdf", userID, now.Format("2006/01"), quoteNumber)
	url, err := g.storage.Put(ctx, key, pdf, "application/pdf")
	if err != nil {
		return nil, err
	}
	result.PDFURL = url

	return result, nil
}
