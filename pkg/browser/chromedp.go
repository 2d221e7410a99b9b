package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/httprunner/WarrantyAgent/internal/textutil"
)

// ChromeLauncher starts Google Chrome through a chromedp exec allocator.
type ChromeLauncher struct {
	// ExecPath overrides executable discovery when Options.ExecPath is empty.
	ExecPath string
}

// NewChromeLauncher returns the fallback launcher.
func NewChromeLauncher(execPath string) *ChromeLauncher {
	return &ChromeLauncher{ExecPath: execPath}
}

func (l *ChromeLauncher) Variant() Variant { return VariantChrome }

func (l *ChromeLauncher) Launch(ctx context.Context, opts Options) (Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.DisableGPU),
		chromedp.Flag("no-sandbox", opts.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", opts.DisableDevShmUsage),
	)
	if opts.LogLevel > 0 {
		allocOpts = append(allocOpts, chromedp.Flag("log-level", opts.LogLevel))
	}
	execPath := textutil.FirstNonEmpty(opts.ExecPath, l.ExecPath)
	if execPath == "" {
		execPath = findChromeExecutable()
	}
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}

	// The session outlives the launch call, so it must not inherit ctx's
	// cancellation; per-operation contexts carry the caller's deadline.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, errors.Wrap(err, "chrome: start browser failed")
	}
	log.Debug().Str("exec_path", execPath).Bool("headless", opts.Headless).Msg("chrome: browser launched")
	return &chromedpSession{
		ctx:           browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

type chromedpSession struct {
	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

func (s *chromedpSession) Variant() Variant { return VariantChrome }

// run executes actions on the browser tab, bounded by both the caller's ctx
// and timeout.
func (s *chromedpSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, navigateTimeout, chromedp.Navigate(url)); err != nil {
		return errors.Wrapf(err, "chrome: navigate to %s failed", url)
	}
	return nil
}

func (s *chromedpSession) FindElement(ctx context.Context, loc Locator) (Element, error) {
	var nodes []*cdp.Node
	sel, by := chromedpQuery(loc)
	err := s.run(ctx, navigateTimeout, chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(0)))
	if err != nil {
		return nil, errors.Wrapf(err, "chrome: query %s failed", loc)
	}
	if len(nodes) == 0 {
		return nil, errors.Wrap(ErrElementNotFound, loc.String())
	}
	return &chromedpElement{session: s, node: nodes[0]}, nil
}

func (s *chromedpSession) WaitFor(ctx context.Context, loc Locator, cond Condition, timeout time.Duration) (Element, error) {
	sel, by := chromedpQuery(loc)
	var actions []chromedp.Action
	switch cond {
	case Present:
		actions = append(actions, chromedp.WaitReady(sel, by))
	case Visible:
		actions = append(actions, chromedp.WaitVisible(sel, by))
	case Clickable:
		actions = append(actions, chromedp.WaitVisible(sel, by), chromedp.WaitEnabled(sel, by))
	}
	var nodes []*cdp.Node
	actions = append(actions, chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(0)))

	err := s.run(ctx, timeout, actions...)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrapf(ErrWaitTimeout, "%s not %s within %s", loc, cond, timeout)
		}
		return nil, errors.Wrapf(err, "chrome: wait for %s failed", loc)
	}
	if len(nodes) == 0 {
		return nil, errors.Wrapf(ErrWaitTimeout, "%s not %s within %s", loc, cond, timeout)
	}
	return &chromedpElement{session: s, node: nodes[0]}, nil
}

func (s *chromedpSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.browserCancel()
	s.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "chrome: close failed")
	}
	return nil
}

func chromedpQuery(loc Locator) (string, chromedp.QueryOption) {
	if loc.Kind == ByXPath {
		return loc.Value, chromedp.BySearch
	}
	return loc.cssSelector(), chromedp.ByQuery
}

type chromedpElement struct {
	session *chromedpSession
	node    *cdp.Node
}

func (e *chromedpElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *chromedpElement) SendKeys(ctx context.Context, text string) error {
	err := e.session.run(ctx, navigateTimeout, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
	return errors.Wrap(err, "chrome: send keys failed")
}

func (e *chromedpElement) Click(ctx context.Context) error {
	err := e.session.run(ctx, navigateTimeout, chromedp.Click(e.ids(), chromedp.ByNodeID))
	return errors.Wrap(err, "chrome: click failed")
}

func (e *chromedpElement) Text(ctx context.Context) (string, error) {
	var text string
	if err := e.session.run(ctx, navigateTimeout, chromedp.Text(e.ids(), &text, chromedp.ByNodeID)); err != nil {
		return "", errors.Wrap(err, "chrome: read text failed")
	}
	return text, nil
}
