package hpsupport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httprunner/WarrantyAgent/pkg/browser"
	"github.com/httprunner/WarrantyAgent/pkg/browser/browsertest"
)

type page struct {
	session *browsertest.Session
	serial  *browsertest.Element
	submit  *browsertest.Element
	sleeper *browsertest.Sleeper
}

func newPage() *page {
	s := browsertest.NewSession(browser.VariantEdge)
	return &page{
		session: s,
		serial:  s.Add(SerialInput, nil),
		submit:  s.Add(SerialSubmit, nil),
		sleeper: &browsertest.Sleeper{},
	}
}

func (p *page) form() *Form {
	return NewForm(p.session, browser.NewFinder(browsertest.QuickLookupPolicy(), browser.WithRetryNotify(p.sleeper.Notify)), "", Timeouts{})
}

func noProductNumber(t *testing.T) ProductNumberFunc {
	return func(context.Context) (string, error) {
		t.Fatal("product number must not be read")
		return "", nil
	}
}

func TestOpenNavigatesAndWaitsForSerialInput(t *testing.T) {
	p := newPage()
	require.NoError(t, p.form().Open(context.Background()))
	assert.Equal(t, []string{DefaultURL}, p.session.Visited)
	assert.Equal(t, 1, p.session.Waits[SerialInput])
}

func TestOpenFailsWhenSerialInputNeverAppears(t *testing.T) {
	s := browsertest.NewSession(browser.VariantEdge)
	err := NewForm(s, nil, "https://example.test/warranty", Timeouts{}).Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageNotReady))
}

func TestSubmitSerialOnly(t *testing.T) {
	p := newPage()

	outcome, err := p.form().Submit(context.Background(), "5CD1234XYZ", noProductNumber(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"5CD1234XYZ"}, p.serial.Typed())
	assert.Equal(t, 1, p.submit.ClickCount())
	assert.False(t, outcome.ConsentAccepted)
	assert.False(t, outcome.ProductNumberUsed)
	assert.Equal(t, 1, p.session.Waits[ProductNumberInput])
}

func TestSubmitAcceptsConsentBanner(t *testing.T) {
	p := newPage()
	consent := p.session.Add(ConsentAccept, nil)

	outcome, err := p.form().Submit(context.Background(), "5CD1234XYZ", noProductNumber(t))
	require.NoError(t, err)
	assert.True(t, outcome.ConsentAccepted)
	assert.Equal(t, 1, consent.ClickCount())
}

func TestSubmitIgnoresUnclickableConsentBanner(t *testing.T) {
	p := newPage()
	consent := p.session.Add(ConsentAccept, &browsertest.Element{NotClickable: true})

	outcome, err := p.form().Submit(context.Background(), "5CD1234XYZ", noProductNumber(t))
	require.NoError(t, err)
	assert.False(t, outcome.ConsentAccepted)
	assert.Zero(t, consent.ClickCount())
}

func TestSubmitAnswersProductNumberPrompt(t *testing.T) {
	p := newPage()
	pnField := p.session.Add(ProductNumberInput, nil)
	pnSubmit := p.session.Add(ProductNumberSubmit, nil)
	reads := 0

	outcome, err := p.form().Submit(context.Background(), "5CD1234XYZ", func(context.Context) (string, error) {
		reads++
		return "8AB12PA", nil
	})
	require.NoError(t, err)
	assert.True(t, outcome.ProductNumberUsed)
	assert.Equal(t, 1, reads)
	assert.Equal(t, []string{"8AB12PA"}, pnField.Typed())
	assert.Equal(t, 1, pnSubmit.ClickCount())
}

func TestSubmitFailsWhenProductNumberUnavailable(t *testing.T) {
	p := newPage()
	p.session.Add(ProductNumberInput, nil)
	pnSubmit := p.session.Add(ProductNumberSubmit, nil)

	_, err := p.form().Submit(context.Background(), "5CD1234XYZ", func(context.Context) (string, error) {
		return "", errors.New("value not found")
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNumber))
	assert.Zero(t, pnSubmit.ClickCount())
}

func TestSubmitFailsWhenSubmitButtonMissing(t *testing.T) {
	s := browsertest.NewSession(browser.VariantChrome)
	s.Add(SerialInput, nil)
	sleeper := &browsertest.Sleeper{}
	form := NewForm(s, browser.NewFinder(browsertest.QuickLookupPolicy(), browser.WithRetryNotify(sleeper.Notify)), "", Timeouts{})

	_, err := form.Submit(context.Background(), "5CD1234XYZ", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, browser.ErrLookupExhausted))
	assert.Equal(t, browser.DefaultLookupRetryAttempts, s.Lookups[SerialSubmit])
	assert.Len(t, sleeper.Recorded(), browser.DefaultLookupRetryAttempts-1)
}

func TestSubmitRetriesSlowSerialInput(t *testing.T) {
	p := newPage()
	p.session.MissBefore[SerialInput] = 3

	_, err := p.form().Submit(context.Background(), "5CD1234XYZ", noProductNumber(t))
	require.NoError(t, err)
	assert.Equal(t, 4, p.session.Lookups[SerialInput])
	assert.Len(t, p.sleeper.Recorded(), 3)
}

func TestReadEndDate(t *testing.T) {
	p := newPage()
	p.session.Add(WarrantyEndDateValue, &browsertest.Element{Value: "  May 23, 2025\n"})

	got, err := p.form().ReadEndDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "May 23, 2025", got)
}

func TestReadEndDateMissingOrHidden(t *testing.T) {
	p := newPage()
	_, err := p.form().ReadEndDate(context.Background())
	assert.True(t, errors.Is(err, ErrEndDateMissing))

	p.session.Add(WarrantyEndDateValue, &browsertest.Element{Value: "May 23, 2025", Hidden: true})
	_, err = p.form().ReadEndDate(context.Background())
	assert.True(t, errors.Is(err, ErrEndDateMissing))

	p.session.Add(WarrantyEndDateValue, &browsertest.Element{Value: "   "})
	_, err = p.form().ReadEndDate(context.Background())
	assert.True(t, errors.Is(err, ErrEndDateMissing))
}
