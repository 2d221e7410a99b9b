package browser

import (
	"context"
	"time"
)

// Retry bounds for session acquisition and element lookup. Both loops use a
// fixed delay so the worst-case run time is deterministic.
const (
	DefaultSessionRetryAttempts = 3
	DefaultSessionRetryDelay    = 2 * time.Second
	DefaultLookupRetryAttempts  = 5
	DefaultLookupRetryDelay     = 2 * time.Second
)

// RetryPolicy is a fixed-attempt, fixed-delay retry bound.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// SessionRetryPolicy returns the default outer bound for Manager.Acquire.
func SessionRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: DefaultSessionRetryAttempts, Delay: DefaultSessionRetryDelay}
}

// LookupRetryPolicy returns the default bound for Finder.Find.
func LookupRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: DefaultLookupRetryAttempts, Delay: DefaultLookupRetryDelay}
}

func (p RetryPolicy) normalized(fallback RetryPolicy) RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = fallback.Attempts
	}
	if p.Delay < 0 {
		p.Delay = fallback.Delay
	}
	return p
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
