// Package browsertest provides in-memory browser sessions for tests.
package browsertest

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/httprunner/WarrantyAgent/pkg/browser"
)

// Element is a scripted page element.
type Element struct {
	mu       sync.Mutex
	Value    string
	Keys     []string
	Clicks   int
	ClickErr error
	// NotClickable makes WaitFor(Clickable) time out.
	NotClickable bool
	// Hidden makes WaitFor(Visible|Clickable) time out while still present.
	Hidden bool
}

func (e *Element) SendKeys(_ context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Keys = append(e.Keys, text)
	return nil
}

func (e *Element) Click(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.Clicks++
	return nil
}

func (e *Element) Text(context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Value, nil
}

// Typed returns everything sent to the element.
func (e *Element) Typed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.Keys...)
}

// ClickCount returns the number of successful clicks.
func (e *Element) ClickCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Clicks
}

// Session is a scripted browser.Session. Locators missing from Elements are
// absent; MissBefore delays an element's appearance by a number of lookups.
type Session struct {
	mu         sync.Mutex
	V          browser.Variant
	Elements   map[browser.Locator]*Element
	MissBefore map[browser.Locator]int
	Visited    []string
	Lookups    map[browser.Locator]int
	Waits      map[browser.Locator]int
	Closes     int
	NavErr     error
}

// NewSession returns an empty session of variant v.
func NewSession(v browser.Variant) *Session {
	return &Session{
		V:          v,
		Elements:   make(map[browser.Locator]*Element),
		MissBefore: make(map[browser.Locator]int),
		Lookups:    make(map[browser.Locator]int),
		Waits:      make(map[browser.Locator]int),
	}
}

// Add places an element on the page and returns it.
func (s *Session) Add(loc browser.Locator, el *Element) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el == nil {
		el = &Element{}
	}
	s.Elements[loc] = el
	return el
}

func (s *Session) Variant() browser.Variant { return s.V }

func (s *Session) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.NavErr != nil {
		return s.NavErr
	}
	s.Visited = append(s.Visited, url)
	return nil
}

func (s *Session) FindElement(_ context.Context, loc browser.Locator) (browser.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lookups[loc]++
	el, ok := s.Elements[loc]
	if !ok || s.Lookups[loc] <= s.MissBefore[loc] {
		return nil, errors.Wrap(browser.ErrElementNotFound, loc.String())
	}
	return el, nil
}

func (s *Session) WaitFor(_ context.Context, loc browser.Locator, cond browser.Condition, timeout time.Duration) (browser.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Waits[loc]++
	el, ok := s.Elements[loc]
	if !ok {
		return nil, errors.Wrapf(browser.ErrWaitTimeout, "%s not %s within %s", loc, cond, timeout)
	}
	if cond != browser.Present && el.Hidden {
		return nil, errors.Wrapf(browser.ErrWaitTimeout, "%s not %s within %s", loc, cond, timeout)
	}
	if cond == browser.Clickable && el.NotClickable {
		return nil, errors.Wrapf(browser.ErrWaitTimeout, "%s not %s within %s", loc, cond, timeout)
	}
	return el, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closes++
	return nil
}

// CloseCount returns how many times Close reached the session.
func (s *Session) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Closes
}

// Launcher hands out Session after failing Failures times; a negative
// Failures fails forever.
type Launcher struct {
	mu       sync.Mutex
	V        browser.Variant
	Failures int
	Session  *Session
	Calls    int
	Opts     []browser.Options
}

// FailingLauncher never starts a session.
func FailingLauncher(v browser.Variant) *Launcher {
	return &Launcher{V: v, Failures: -1}
}

// WorkingLauncher always returns s.
func WorkingLauncher(s *Session) *Launcher {
	return &Launcher{V: s.V, Session: s}
}

func (l *Launcher) Variant() browser.Variant { return l.V }

func (l *Launcher) Launch(_ context.Context, opts browser.Options) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Calls++
	l.Opts = append(l.Opts, opts)
	if l.Failures < 0 || l.Calls <= l.Failures {
		return nil, errors.Errorf("%s: driver unavailable", l.V)
	}
	if l.Session == nil {
		l.Session = NewSession(l.V)
	}
	return l.Session, nil
}

// CallCount returns the number of Launch calls.
func (l *Launcher) CallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Calls
}

// Sleeper records requested delays without blocking.
type Sleeper struct {
	mu     sync.Mutex
	Delays []time.Duration
}

func (s *Sleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delays = append(s.Delays, d)
	return nil
}

// Recorded returns a copy of the recorded delays.
func (s *Sleeper) Recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.Delays...)
}

// Notify records a retry delay; it satisfies browser.RetryNotify.
func (s *Sleeper) Notify(_ error, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delays = append(s.Delays, d)
}

// QuickLookupPolicy keeps the default attempt count with a 1ms delay so
// lookup retries do not slow tests down.
func QuickLookupPolicy() browser.RetryPolicy {
	return browser.RetryPolicy{Attempts: browser.DefaultLookupRetryAttempts, Delay: time.Millisecond}
}
