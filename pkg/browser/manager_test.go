package browser_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httprunner/WarrantyAgent/pkg/browser"
	"github.com/httprunner/WarrantyAgent/pkg/browser/browsertest"
)

func TestAcquireUsesPrimaryWhenItStarts(t *testing.T) {
	primary := browsertest.WorkingLauncher(browsertest.NewSession(browser.VariantEdge))
	fallback := browsertest.WorkingLauncher(browsertest.NewSession(browser.VariantChrome))
	sleeper := &browsertest.Sleeper{}
	m := browser.NewManager(browser.DefaultOptions(), primary, fallback, browser.WithSleep(sleeper.Sleep))

	session, err := m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, browser.VariantEdge, session.Variant())
	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 0, fallback.CallCount())
	assert.Empty(t, sleeper.Recorded())
}

func TestAcquireFallsBackWithinFirstAttempt(t *testing.T) {
	primary := browsertest.FailingLauncher(browser.VariantEdge)
	fallback := browsertest.WorkingLauncher(browsertest.NewSession(browser.VariantChrome))
	sleeper := &browsertest.Sleeper{}
	m := browser.NewManager(browser.DefaultOptions(), primary, fallback, browser.WithSleep(sleeper.Sleep))

	session, err := m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, browser.VariantChrome, session.Variant())
	assert.Equal(t, 1, primary.CallCount())
	assert.Equal(t, 1, fallback.CallCount())
	assert.Empty(t, sleeper.Recorded(), "no retry delay expected when the fallback starts")
}

func TestAcquireExhaustsAfterThreeAttempts(t *testing.T) {
	primary := browsertest.FailingLauncher(browser.VariantEdge)
	fallback := browsertest.FailingLauncher(browser.VariantChrome)
	sleeper := &browsertest.Sleeper{}
	m := browser.NewManager(browser.DefaultOptions(), primary, fallback, browser.WithSleep(sleeper.Sleep))

	session, err := m.Acquire(context.Background())
	require.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, errors.Is(err, browser.ErrSessionExhausted))
	assert.Equal(t, browser.DefaultSessionRetryAttempts, primary.CallCount())
	assert.Equal(t, browser.DefaultSessionRetryAttempts, fallback.CallCount())
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeper.Recorded())
}

func TestAcquireRecoversOnLaterAttempt(t *testing.T) {
	primary := &browsertest.Launcher{V: browser.VariantEdge, Failures: 2}
	fallback := browsertest.FailingLauncher(browser.VariantChrome)
	sleeper := &browsertest.Sleeper{}
	m := browser.NewManager(browser.DefaultOptions(), primary, fallback,
		browser.WithSleep(sleeper.Sleep),
		browser.WithRetryPolicy(browser.RetryPolicy{Attempts: 5, Delay: time.Second}))

	session, err := m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, browser.VariantEdge, session.Variant())
	assert.Equal(t, 3, primary.CallCount())
	assert.Equal(t, 2, fallback.CallCount())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeper.Recorded())
}

func TestAcquirePassesFixedOptions(t *testing.T) {
	primary := browsertest.WorkingLauncher(browsertest.NewSession(browser.VariantEdge))
	m := browser.NewManager(browser.DefaultOptions(), primary, nil)

	_, err := m.Acquire(context.Background())
	require.NoError(t, err)
	require.Len(t, primary.Opts, 1)
	opts := primary.Opts[0]
	assert.True(t, opts.Headless)
	assert.True(t, opts.NoSandbox)
	assert.True(t, opts.DisableGPU)
	assert.Equal(t, 3, opts.LogLevel)
}

func TestAcquiredSessionClosesOnce(t *testing.T) {
	fake := browsertest.NewSession(browser.VariantEdge)
	m := browser.NewManager(browser.DefaultOptions(), browsertest.WorkingLauncher(fake), nil)

	session, err := m.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	assert.Equal(t, 1, fake.CloseCount())

	err = session.Navigate(context.Background(), "https://example.com")
	assert.True(t, errors.Is(err, browser.ErrSessionClosed))
	_, err = session.FindElement(context.Background(), browser.ID("x"))
	assert.True(t, errors.Is(err, browser.ErrSessionClosed))
	assert.Empty(t, fake.Visited)
}

func TestElementRejectedAfterSessionClose(t *testing.T) {
	fake := browsertest.NewSession(browser.VariantChrome)
	fake.Add(browser.ID("field"), nil)
	m := browser.NewManager(browser.DefaultOptions(), browsertest.WorkingLauncher(fake), nil)

	session, err := m.Acquire(context.Background())
	require.NoError(t, err)
	el, err := session.FindElement(context.Background(), browser.ID("field"))
	require.NoError(t, err)
	require.NoError(t, session.Close())

	assert.True(t, errors.Is(el.Click(context.Background()), browser.ErrSessionClosed))
}
