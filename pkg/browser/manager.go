package browser

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type acquireState int

const (
	stateAttempting acquireState = iota
	stateSucceeded
	stateExhausted
)

func (s acquireState) String() string {
	switch s {
	case stateAttempting:
		return "attempting"
	case stateSucceeded:
		return "succeeded"
	case stateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// acquisition is one step of the primary/fallback retry machine. While
// attempting, launcher indexes Manager.launchers and attempt is 1-based.
type acquisition struct {
	state    acquireState
	launcher int
	attempt  int
}

// next applies a start result to the machine. A failed launcher moves on to
// the next launcher of the same attempt; once every launcher of an attempt
// failed the attempt counter advances until maxAttempts is spent.
func (a acquisition) next(started bool, launchers, maxAttempts int) acquisition {
	if a.state != stateAttempting {
		return a
	}
	if started {
		a.state = stateSucceeded
		return a
	}
	if a.launcher+1 < launchers {
		a.launcher++
		return a
	}
	if a.attempt >= maxAttempts {
		a.state = stateExhausted
		return a
	}
	a.attempt++
	a.launcher = 0
	return a
}

// Manager acquires a session from an ordered list of launchers, the first
// being preferred and the rest tried as same-attempt fallbacks.
type Manager struct {
	launchers []Launcher
	opts      Options
	policy    RetryPolicy
	sleep     SleepFunc
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithRetryPolicy overrides the outer attempt bound and delay.
func WithRetryPolicy(p RetryPolicy) ManagerOption {
	return func(m *Manager) { m.policy = p.normalized(SessionRetryPolicy()) }
}

// WithSleep replaces the delay function, mainly for tests.
func WithSleep(fn SleepFunc) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.sleep = fn
		}
	}
}

// NewManager builds a Manager preferring primary and falling back to fallback.
func NewManager(opts Options, primary, fallback Launcher, options ...ManagerOption) *Manager {
	m := &Manager{
		opts:   opts,
		policy: SessionRetryPolicy(),
		sleep:  sleepContext,
	}
	for _, l := range []Launcher{primary, fallback} {
		if l != nil {
			m.launchers = append(m.launchers, l)
		}
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Acquire starts a session, falling back to the secondary engine within each
// attempt and sleeping between attempts. The returned session is safe to close
// more than once and rejects use after Close.
func (m *Manager) Acquire(ctx context.Context) (Session, error) {
	if len(m.launchers) == 0 {
		return nil, errors.New("browser: no launchers configured")
	}
	state := acquisition{state: stateAttempting, attempt: 1}
	var lastErr error
	for state.state == stateAttempting {
		launcher := m.launchers[state.launcher]
		session, err := launcher.Launch(ctx, m.opts)
		if err == nil && session == nil {
			err = errors.Errorf("browser: %s launcher returned no session", launcher.Variant())
		}
		if err == nil {
			log.Info().
				Str("variant", string(launcher.Variant())).
				Int("attempt", state.attempt).
				Msg("browser: session started")
			return guard(session), nil
		}
		lastErr = err

		prev := state
		state = state.next(false, len(m.launchers), m.policy.Attempts)
		if state.state == stateAttempting && state.attempt == prev.attempt {
			log.Warn().Err(err).
				Str("variant", string(launcher.Variant())).
				Str("next", string(m.launchers[state.launcher].Variant())).
				Msg("browser: failed to initialize, trying fallback")
			continue
		}
		log.Warn().Err(err).
			Str("variant", string(launcher.Variant())).
			Int("attempt", prev.attempt).
			Int("max_attempts", m.policy.Attempts).
			Msg("browser: failed to initialize, retrying")
		if state.state == stateAttempting {
			if err := m.sleep(ctx, m.policy.Delay); err != nil {
				return nil, errors.Wrap(err, "browser: acquisition interrupted")
			}
		}
	}

	log.Error().Err(lastErr).
		Int("attempts", m.policy.Attempts).
		Msg("browser: failed to initialize any browser session")
	return nil, errors.Wrapf(ErrSessionExhausted, "after %d attempts: %v", m.policy.Attempts, lastErr)
}
