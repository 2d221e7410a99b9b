package browser

import (
	"context"
	"sync"
	"time"
)

// guardedSession releases the wrapped session at most once and refuses every
// call made after release.
type guardedSession struct {
	mu       sync.Mutex
	inner    Session
	released bool
	closeErr error
}

func guard(s Session) Session {
	if g, ok := s.(*guardedSession); ok {
		return g
	}
	return &guardedSession{inner: s}
}

func (g *guardedSession) live() (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return nil, ErrSessionClosed
	}
	return g.inner, nil
}

func (g *guardedSession) Variant() Variant { return g.inner.Variant() }

func (g *guardedSession) Navigate(ctx context.Context, url string) error {
	s, err := g.live()
	if err != nil {
		return err
	}
	return s.Navigate(ctx, url)
}

func (g *guardedSession) FindElement(ctx context.Context, loc Locator) (Element, error) {
	s, err := g.live()
	if err != nil {
		return nil, err
	}
	el, err := s.FindElement(ctx, loc)
	if err != nil {
		return nil, err
	}
	return &guardedElement{session: g, inner: el}, nil
}

func (g *guardedSession) WaitFor(ctx context.Context, loc Locator, cond Condition, timeout time.Duration) (Element, error) {
	s, err := g.live()
	if err != nil {
		return nil, err
	}
	el, err := s.WaitFor(ctx, loc, cond, timeout)
	if err != nil {
		return nil, err
	}
	return &guardedElement{session: g, inner: el}, nil
}

// Close releases the underlying session on the first call and returns the
// same result on every later call.
func (g *guardedSession) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released {
		return g.closeErr
	}
	g.released = true
	g.closeErr = g.inner.Close()
	return g.closeErr
}

// guardedElement ties an element's lifetime to its session.
type guardedElement struct {
	session *guardedSession
	inner   Element
}

func (e *guardedElement) SendKeys(ctx context.Context, text string) error {
	if _, err := e.session.live(); err != nil {
		return err
	}
	return e.inner.SendKeys(ctx, text)
}

func (e *guardedElement) Click(ctx context.Context) error {
	if _, err := e.session.live(); err != nil {
		return err
	}
	return e.inner.Click(ctx)
}

func (e *guardedElement) Text(ctx context.Context) (string, error) {
	if _, err := e.session.live(); err != nil {
		return "", err
	}
	return e.inner.Text(ctx)
}
