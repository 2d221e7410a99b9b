package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Variant identifies which browser engine backs a session.
type Variant string

const (
	// VariantEdge is the primary engine: Microsoft Edge driven through Playwright.
	VariantEdge Variant = "edge"
	// VariantChrome is the fallback engine: Google Chrome driven through chromedp.
	VariantChrome Variant = "chrome"
)

// LocatorKind selects how a Locator value is interpreted.
type LocatorKind int

const (
	ByID LocatorKind = iota
	ByXPath
)

func (k LocatorKind) String() string {
	switch k {
	case ByID:
		return "id"
	case ByXPath:
		return "xpath"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Locator identifies a page element.
type Locator struct {
	Kind  LocatorKind
	Value string
}

// ID returns a locator matching the element whose id attribute equals id.
// Ids containing spaces are matched verbatim.
func ID(id string) Locator { return Locator{Kind: ByID, Value: id} }

// XPath returns a locator evaluating expr against the document.
func XPath(expr string) Locator { return Locator{Kind: ByXPath, Value: expr} }

func (l Locator) String() string {
	return l.Kind.String() + "=" + l.Value
}

// cssSelector renders an id locator as an attribute selector so ids with
// spaces ("product-number inputtextPN") still match.
func (l Locator) cssSelector() string {
	return fmt.Sprintf(`[id=%q]`, l.Value)
}

// Condition is the state WaitFor polls for.
type Condition int

const (
	Present Condition = iota
	Visible
	Clickable
)

func (c Condition) String() string {
	switch c {
	case Present:
		return "present"
	case Visible:
		return "visible"
	case Clickable:
		return "clickable"
	default:
		return fmt.Sprintf("condition(%d)", int(c))
	}
}

var (
	// ErrElementNotFound is returned by FindElement when nothing matches.
	ErrElementNotFound = errors.New("browser: element not found")
	// ErrWaitTimeout is returned by WaitFor when the condition is not met in time.
	ErrWaitTimeout = errors.New("browser: wait timed out")
	// ErrSessionClosed is returned by every operation on a released session.
	ErrSessionClosed = errors.New("browser: session closed")
	// ErrSessionExhausted is returned by Manager.Acquire once every attempt failed.
	ErrSessionExhausted = errors.New("browser: all session attempts failed")
	// ErrLookupExhausted is returned by Finder.Find once every attempt failed.
	ErrLookupExhausted = errors.New("browser: element lookup retries exhausted")
)

// Element is a handle to a located page element.
type Element interface {
	SendKeys(ctx context.Context, text string) error
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
}

// Session is a live headless browser bound to one Variant.
type Session interface {
	Variant() Variant
	Navigate(ctx context.Context, url string) error
	// FindElement looks the element up once, returning ErrElementNotFound when absent.
	FindElement(ctx context.Context, loc Locator) (Element, error)
	// WaitFor polls until the element satisfies cond, returning ErrWaitTimeout on expiry.
	WaitFor(ctx context.Context, loc Locator, cond Condition, timeout time.Duration) (Element, error)
	Close() error
}

// Launcher starts sessions of one Variant.
type Launcher interface {
	Variant() Variant
	Launch(ctx context.Context, opts Options) (Session, error)
}
