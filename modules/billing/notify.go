package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quoteforge/quoteforge/pkg/email"
	"github.com/quoteforge/quoteforge/pkg/logger"
	"github.com/quoteforge/quoteforge/pkg/subscription"
	"github.com/quoteforge/quoteforge/pkg/tier"
)

// Notifier sends lifecycle emails for subscription events. Delivery
// failures are logged, never propagated: a lost email must not fail a
// webhook acknowledgement or an admin action.
type Notifier struct {
	sender email.EmailSender
	log    *slog.Logger
}

// NewNotifier creates a Notifier. Panics on nil sender.
func NewNotifier(sender email.EmailSender, log *slog.Logger) *Notifier {
	if sender == nil {
		panic("billing: EmailSender is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{sender: sender, log: log}
}

// SubscriptionActivated thanks the customer and confirms the new plan.
func (n *Notifier) SubscriptionActivated(ctx context.Context, to string, sub *subscription.Subscription, price tier.Money) {
	body := fmt.Sprintf(`<h1>Your subscription is active</h1>
<p>Thanks for subscribing to the <strong>%s</strong> plan (%s).</p>
<p>Price: <strong>%s</strong></p>
<p>Your current period runs until %s.</p>`,
		sub.Tier, sub.BillingCycle, price, sub.CurrentPeriodEnd.Format("January 2, 2006"))

	n.send(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  "Your subscription is active",
		BodyHTML: body,
		Tag:      "subscription-activated",
	}, sub.UserID.String())
}

// SubscriptionCanceled confirms cancellation and names the access end date.
func (n *Notifier) SubscriptionCanceled(ctx context.Context, to string, sub *subscription.Subscription) {
	body := fmt.Sprintf(`<h1>Subscription canceled</h1>
<p>Your <strong>%s</strong> plan has been canceled.</p>
<p>You keep full access until %s. After that your account falls back to the free plan.</p>`,
		sub.Tier, sub.CurrentPeriodEnd.Format("January 2, 2006"))

	n.send(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  "Your subscription was canceled",
		BodyHTML: body,
		Tag:      "subscription-canceled",
	}, sub.UserID.String())
}

// PaymentFailed warns the customer that the account is past due.
func (n *Notifier) PaymentFailed(ctx context.Context, to string, sub *subscription.Subscription) {
	body := fmt.Sprintf(`<h1>Payment failed</h1>
<p>We could not collect the latest payment for your <strong>%s</strong> plan.</p>
<p>Please update your payment method to keep your subscription running.</p>`,
		sub.Tier)

	n.send(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  "Action required: payment failed",
		BodyHTML: body,
		Tag:      "payment-failed",
	}, sub.UserID.String())
}

func (n *Notifier) send(ctx context.Context, params email.SendEmailParams, userID string) {
	if params.SendTo == "" {
		return
	}
	if err := n.sender.SendEmail(ctx, params); err != nil {
		n.log.ErrorContext(ctx, "failed to send billing email",
			logger.Error(err),
			logger.UserID(userID),
			logger.Event(params.Tag),
		)
	}
}
