package browser

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog/log"

	"github.com/httprunner/WarrantyAgent/internal/textutil"
)

const (
	edgeChannel      = "msedge"
	clickablePoll    = 250 * time.Millisecond
	navigateTimeout  = 60 * time.Second
	playwrightPrefix = "xpath="
)

// EdgeLauncher starts Microsoft Edge through Playwright's msedge channel. Edge
// ships with Windows, so only the Playwright driver is installed, never the
// bundled browsers.
type EdgeLauncher struct {
	// SkipInstall assumes the Playwright driver is already present.
	SkipInstall bool
	// ExecPath overrides the channel's msedge binary when Options.ExecPath is empty.
	ExecPath string
}

// NewEdgeLauncher returns the primary launcher.
func NewEdgeLauncher(execPath string) *EdgeLauncher {
	return &EdgeLauncher{ExecPath: execPath}
}

func (l *EdgeLauncher) Variant() Variant { return VariantEdge }

func (l *EdgeLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runOpts := &playwright.RunOptions{
		SkipInstallBrowsers: true,
		Verbose:             false,
		Stdout:              io.Discard,
		Stderr:              io.Discard,
	}
	if !l.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return nil, errors.Wrap(err, "edge: install playwright driver failed")
		}
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, errors.Wrap(err, "edge: start playwright failed")
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Channel:  playwright.String(edgeChannel),
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.extraArgs(),
	}
	if execPath := textutil.FirstNonEmpty(opts.ExecPath, l.ExecPath); execPath != "" {
		launchOpts.ExecutablePath = playwright.String(execPath)
	}
	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, errors.Wrap(err, "edge: launch browser failed")
	}
	page, err := b.NewPage()
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, errors.Wrap(err, "edge: open page failed")
	}
	log.Debug().Str("channel", edgeChannel).Bool("headless", opts.Headless).Msg("edge: browser launched")
	return &playwrightSession{pw: pw, browser: b, page: page}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

func (s *playwrightSession) Variant() Variant { return VariantEdge }

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(navigateTimeout.Milliseconds())),
	})
	if err != nil {
		return errors.Wrapf(err, "edge: navigate to %s failed", url)
	}
	return nil
}

func (s *playwrightSession) FindElement(ctx context.Context, loc Locator) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	handle, err := s.page.QuerySelector(playwrightSelector(loc))
	if err != nil {
		return nil, errors.Wrapf(err, "edge: query %s failed", loc)
	}
	if handle == nil {
		return nil, errors.Wrap(ErrElementNotFound, loc.String())
	}
	return &playwrightElement{handle: handle}, nil
}

func (s *playwrightSession) WaitFor(ctx context.Context, loc Locator, cond Condition, timeout time.Duration) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	state := playwright.WaitForSelectorStateAttached
	if cond != Present {
		state = playwright.WaitForSelectorStateVisible
	}
	handle, err := s.page.WaitForSelector(playwrightSelector(loc), playwright.PageWaitForSelectorOptions{
		State:   state,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return nil, errors.Wrapf(ErrWaitTimeout, "%s not %s within %s", loc, cond, timeout)
		}
		return nil, errors.Wrapf(err, "edge: wait for %s failed", loc)
	}
	if handle == nil {
		return nil, errors.Wrapf(ErrWaitTimeout, "%s not %s within %s", loc, cond, timeout)
	}
	if cond == Clickable {
		remaining := time.Until(deadline)
		if remaining < clickablePoll {
			remaining = clickablePoll
		}
		_, err := backoff.Retry(ctx, func() (bool, error) {
			enabled, err := handle.IsEnabled()
			if err != nil {
				return false, backoff.Permanent(errors.Wrapf(err, "edge: check %s enabled failed", loc))
			}
			if !enabled {
				return false, errors.Wrapf(ErrWaitTimeout, "%s not %s within %s", loc, cond, timeout)
			}
			return true, nil
		},
			backoff.WithBackOff(backoff.NewConstantBackOff(clickablePoll)),
			backoff.WithMaxElapsedTime(remaining),
		)
		if err != nil {
			return nil, err
		}
	}
	return &playwrightElement{handle: handle}, nil
}

func (s *playwrightSession) Close() error {
	var errs []string
	if err := s.browser.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return errors.Errorf("edge: close failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func playwrightSelector(loc Locator) string {
	if loc.Kind == ByXPath {
		return playwrightPrefix + loc.Value
	}
	return loc.cssSelector()
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) SendKeys(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Wrap(e.handle.Type(text), "edge: type failed")
}

func (e *playwrightElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Wrap(e.handle.Click(), "edge: click failed")
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := e.handle.InnerText()
	if err != nil {
		return "", errors.Wrap(err, "edge: read text failed")
	}
	return text, nil
}
