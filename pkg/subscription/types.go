package subscription

// Status represents the current state of a subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusCanceled Status = "canceled"
	StatusPastDue  Status = "past_due"
	StatusExpired  Status = "expired"
)

// grantsAccess reports whether the status alone still grants paid access.
// Canceled keeps access until the period end passes; past_due and expired
// drop to the free ceiling immediately.
func (s Status) grantsAccess() bool {
	switch s {
	case StatusActive, StatusTrialing, StatusCanceled:
		return true
	default:
		return false
	}
}
