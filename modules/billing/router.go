package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quoteforge/quoteforge/pkg/ratelimiter"
)

// RouterOptions configures the billing module router. The handler is
// required; the rate limiter and admin guard are optional.
type RouterOptions struct {
	Handler *Handler

	// PublicLimiter throttles unauthenticated surfaces (webhook,
	// checkout, quote creation) when set.
	PublicLimiter ratelimiter.RateLimiter

	// AdminMiddleware guards /admin routes, e.g. a token check.
	// Routes mount unguarded when nil, which only makes sense in dev.
	AdminMiddleware func(http.Handler) http.Handler
}

// Router mounts the billing HTTP surface.
//
//	r := chi.NewRouter()
//	r.Mount("/billing", billing.Router(billing.RouterOptions{
//	    Handler:       handler,
//	    PublicLimiter: limiter,
//	}))
func Router(opts RouterOptions) chi.Router {
	if opts.Handler == nil {
		panic("billing: Handler is required")
	}
	h := opts.Handler

	r := chi.NewRouter()

	r.Group(func(public chi.Router) {
		if opts.PublicLimiter != nil {
			keyFn := ratelimiter.Composite(
				func(r *http.Request) string { return chi.URLParam(r, "userID") },
				func(r *http.Request) string { return r.RemoteAddr },
			)
			public.Use(ratelimiter.Middleware(opts.PublicLimiter, keyFn))
		}

		public.Get("/plans", h.ListPlans)
		public.Post("/checkout", h.CreateCheckout)
		public.Post("/webhooks/paddle", h.HandleWebhook)

		public.Route("/users/{userID}", func(user chi.Router) {
			user.Get("/subscription", h.GetSubscription)
			user.Get("/quota", h.GetQuota)
			user.Post("/quotes", h.CreateQuote)
		})
	})

	r.Route("/admin", func(admin chi.Router) {
		if opts.AdminMiddleware != nil {
			admin.Use(opts.AdminMiddleware)
		}
		admin.Route("/subscriptions/{userID}", func(sub chi.Router) {
			sub.Post("/activate", h.AdminActivate)
			sub.Post("/cancel", h.AdminCancel)
			sub.Post("/reactivate", h.AdminReactivate)
		})
	})

	return r
}
