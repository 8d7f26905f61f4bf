package subscription

import "time"

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithClock sets the time source used for period windows and decisions.
// Defaults to time.Now in UTC; override in tests for deterministic windows.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}
