package hpsupport

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/httprunner/WarrantyAgent/pkg/browser"
)

var (
	// ErrPageNotReady means the serial input never appeared after navigation.
	ErrPageNotReady = errors.New("hpsupport: warranty page not ready")
	// ErrProductNumber means the site asked for a product number and none could be supplied.
	ErrProductNumber = errors.New("hpsupport: product number unavailable")
	// ErrEndDateMissing means the warranty end date never became visible.
	ErrEndDateMissing = errors.New("hpsupport: warranty end date not found")
)

// ProductNumberFunc supplies the product number when the site asks for it.
type ProductNumberFunc func(ctx context.Context) (string, error)

// SubmitOutcome records which optional prompts were seen.
type SubmitOutcome struct {
	ConsentAccepted   bool
	ProductNumberUsed bool
}

// Form drives one warranty lookup on a live session.
type Form struct {
	session  browser.Session
	finder   *browser.Finder
	url      string
	timeouts Timeouts
}

// NewForm binds a session to the page at url (DefaultURL when empty).
func NewForm(session browser.Session, finder *browser.Finder, url string, timeouts Timeouts) *Form {
	if strings.TrimSpace(url) == "" {
		url = DefaultURL
	}
	if finder == nil {
		finder = browser.NewFinder(browser.LookupRetryPolicy())
	}
	return &Form{session: session, finder: finder, url: url, timeouts: timeouts.withDefaults()}
}

// Open navigates to the page and waits for the serial input to be present.
func (f *Form) Open(ctx context.Context) error {
	if err := f.session.Navigate(ctx, f.url); err != nil {
		return err
	}
	if _, err := f.session.WaitFor(ctx, SerialInput, browser.Present, f.timeouts.PageReady); err != nil {
		return errors.Wrapf(ErrPageNotReady, "%s: %v", f.url, err)
	}
	log.Debug().Str("url", f.url).Msg("hpsupport: warranty page loaded")
	return nil
}

// Submit enters serial, accepts the consent banner if shown, and answers the
// product-number prompt if the site finds the serial ambiguous. productNumber
// is only called in the latter case.
func (f *Form) Submit(ctx context.Context, serial string, productNumber ProductNumberFunc) (SubmitOutcome, error) {
	var outcome SubmitOutcome

	if err := f.fill(ctx, SerialInput, serial); err != nil {
		return outcome, err
	}
	if err := f.click(ctx, SerialSubmit); err != nil {
		return outcome, err
	}

	outcome.ConsentAccepted = f.acceptConsent(ctx)

	field, err := f.session.WaitFor(ctx, ProductNumberInput, browser.Present, f.timeouts.ProductPrompt)
	if err != nil {
		if ctx.Err() != nil {
			return outcome, ctx.Err()
		}
		log.Info().Err(err).Msg("hpsupport: product number field not found, continuing")
		return outcome, nil
	}

	log.Info().Msg("hpsupport: serial number is ambiguous, product number requested")
	if productNumber == nil {
		return outcome, errors.Wrap(ErrProductNumber, "no product number source")
	}
	pn, err := productNumber(ctx)
	if err != nil {
		return outcome, errors.Wrapf(ErrProductNumber, "%v", err)
	}
	if err := field.SendKeys(ctx, pn); err != nil {
		return outcome, errors.Wrap(err, "hpsupport: enter product number failed")
	}
	if err := f.click(ctx, ProductNumberSubmit); err != nil {
		return outcome, err
	}
	outcome.ProductNumberUsed = true
	return outcome, nil
}

// ReadEndDate waits for the warranty end date and returns its text.
func (f *Form) ReadEndDate(ctx context.Context) (string, error) {
	el, err := f.session.WaitFor(ctx, WarrantyEndDateValue, browser.Visible, f.timeouts.Result)
	if err != nil {
		return "", errors.Wrapf(ErrEndDateMissing, "%v", err)
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", errors.Wrapf(ErrEndDateMissing, "%v", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.Wrap(ErrEndDateMissing, "end date is empty")
	}
	return text, nil
}

// acceptConsent clicks the privacy banner when it shows up. The banner is
// regional, so its absence is not an error.
func (f *Form) acceptConsent(ctx context.Context) bool {
	btn, err := f.session.WaitFor(ctx, ConsentAccept, browser.Clickable, f.timeouts.Consent)
	if err != nil {
		log.Info().Err(err).Msg("hpsupport: no privacy policy button found or not clickable")
		return false
	}
	if err := btn.Click(ctx); err != nil {
		log.Info().Err(err).Msg("hpsupport: privacy policy button not clickable")
		return false
	}
	log.Debug().Msg("hpsupport: privacy policy accepted")
	return true
}

func (f *Form) fill(ctx context.Context, loc browser.Locator, text string) error {
	el, err := f.finder.Find(ctx, f.session, loc)
	if err != nil {
		return err
	}
	if err := el.SendKeys(ctx, text); err != nil {
		return errors.Wrapf(err, "hpsupport: type into %s failed", loc)
	}
	return nil
}

func (f *Form) click(ctx context.Context, loc browser.Locator) error {
	el, err := f.finder.Find(ctx, f.session, loc)
	if err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return errors.Wrapf(err, "hpsupport: click %s failed", loc)
	}
	return nil
}
