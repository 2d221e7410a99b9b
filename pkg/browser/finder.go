package browser

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RetryNotify observes a failed lookup and the delay before the next attempt.
type RetryNotify func(err error, delay time.Duration)

// Finder looks elements up with a bounded retry on ErrElementNotFound.
type Finder struct {
	policy RetryPolicy
	notify RetryNotify
}

// FinderOption customises a Finder.
type FinderOption func(*Finder)

// WithRetryNotify registers fn to be called before every retry.
func WithRetryNotify(fn RetryNotify) FinderOption {
	return func(f *Finder) { f.notify = fn }
}

// NewFinder returns a Finder bounded by policy.
func NewFinder(policy RetryPolicy, options ...FinderOption) *Finder {
	f := &Finder{policy: policy.normalized(LookupRetryPolicy())}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Find returns the element at loc, retrying while it is absent. Errors other
// than ErrElementNotFound abort immediately. When every attempt misses, the
// returned error wraps ErrLookupExhausted; callers decide whether it is fatal.
func (f *Finder) Find(ctx context.Context, s Session, loc Locator) (Element, error) {
	attempt := 0
	operation := func() (Element, error) {
		attempt++
		el, err := s.FindElement(ctx, loc)
		if err == nil {
			return el, nil
		}
		if !errors.Is(err, ErrElementNotFound) {
			return nil, backoff.Permanent(errors.Wrapf(err, "browser: find %s", loc))
		}
		return nil, err
	}
	notify := func(err error, delay time.Duration) {
		log.Warn().
			Str("locator", loc.String()).
			Int("attempt", attempt).
			Int("max_attempts", f.policy.Attempts).
			Dur("retry_in", delay).
			Msg("browser: element not found, retrying")
		if f.notify != nil {
			f.notify(err, delay)
		}
	}

	el, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(f.policy.Delay)),
		backoff.WithMaxTries(uint(f.policy.Attempts)),
		backoff.WithNotify(notify),
	)
	if err == nil {
		return el, nil
	}
	if errors.Is(err, ErrElementNotFound) {
		log.Warn().Str("locator", loc.String()).Int("attempts", attempt).Msg("browser: element not found, giving up")
		return nil, errors.Wrapf(ErrLookupExhausted, "find %s after %d attempts: %v", loc, attempt, err)
	}
	if ctx.Err() != nil {
		return nil, errors.Wrapf(err, "browser: find %s interrupted", loc)
	}
	return nil, err
}
