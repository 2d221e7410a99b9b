// Package hpsupport drives the HP "check warranty" page: it submits a serial
// number, answers the optional consent and product-number prompts, and reads
// the warranty end date.
package hpsupport

import (
	"time"

	"github.com/httprunner/WarrantyAgent/pkg/browser"
)

// DefaultURL is the Australian English warranty check page.
const DefaultURL = "https://support.hp.com/au-en/checkwarranty"

// Element locators on the warranty page. The page is not versioned; these
// are the only structural assumptions made about it.
var (
	SerialInput          = browser.ID("inputtextpfinder")
	SerialSubmit         = browser.ID("FindMyProduct")
	ConsentAccept        = browser.ID("onetrust-accept-btn-handler")
	ProductNumberInput   = browser.ID("product-number inputtextPN")
	ProductNumberSubmit  = browser.ID("FindMyProductNumber")
	WarrantyEndDateValue = browser.XPath(
		"//div[contains(@class, 'info-item')]//div[contains(text(), 'End date')]/following-sibling::div")
)

// Default bounded waits.
const (
	DefaultPageReadyTimeout     = 10 * time.Second
	DefaultConsentTimeout       = 10 * time.Second
	DefaultProductPromptTimeout = 10 * time.Second
	DefaultResultTimeout        = 10 * time.Second
)

// Timeouts bounds each wait on the page.
type Timeouts struct {
	PageReady     time.Duration
	Consent       time.Duration
	ProductPrompt time.Duration
	Result        time.Duration
}

// DefaultTimeouts returns the standard waits.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		PageReady:     DefaultPageReadyTimeout,
		Consent:       DefaultConsentTimeout,
		ProductPrompt: DefaultProductPromptTimeout,
		Result:        DefaultResultTimeout,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.PageReady <= 0 {
		t.PageReady = d.PageReady
	}
	if t.Consent <= 0 {
		t.Consent = d.Consent
	}
	if t.ProductPrompt <= 0 {
		t.ProductPrompt = d.ProductPrompt
	}
	if t.Result <= 0 {
		t.Result = d.Result
	}
	return t
}
