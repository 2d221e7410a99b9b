package warrantyagent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httprunner/WarrantyAgent/pkg/browser"
	"github.com/httprunner/WarrantyAgent/pkg/browser/browsertest"
	"github.com/httprunner/WarrantyAgent/pkg/hpsupport"
	"github.com/httprunner/WarrantyAgent/pkg/regstore"
)

type harness struct {
	store    *regstore.Memory
	session  *browsertest.Session
	primary  *browsertest.Launcher
	fallback *browsertest.Launcher
	sleeper  *browsertest.Sleeper
	endDate  *browsertest.Element
}

func newHarness(values map[regstore.Key]string) *harness {
	s := browsertest.NewSession(browser.VariantEdge)
	s.Add(hpsupport.SerialInput, nil)
	s.Add(hpsupport.SerialSubmit, nil)
	h := &harness{
		store:    regstore.NewMemory(values),
		session:  s,
		primary:  browsertest.WorkingLauncher(s),
		fallback: browsertest.FailingLauncher(browser.VariantChrome),
		sleeper:  &browsertest.Sleeper{},
	}
	h.endDate = s.Add(hpsupport.WarrantyEndDateValue, &browsertest.Element{Value: " May 23, 2025 "})
	return h
}

func hpValues() map[regstore.Key]string {
	return map[regstore.Key]string{
		KeyManufacturer:  "HP",
		KeySerialNumber:  "5CD1234XYZ",
		KeyProductNumber: "4X1H8PA",
	}
}

func (h *harness) agent(t *testing.T) *Agent {
	t.Helper()
	mgr := browser.NewManager(browser.DefaultOptions(), h.primary, h.fallback, browser.WithSleep(h.sleeper.Sleep))
	a, err := NewAgent(Config{
		Store:    h.store,
		Sessions: mgr,
		Finder:   browser.NewFinder(browsertest.QuickLookupPolicy(), browser.WithRetryNotify(h.sleeper.Notify)),
		RunID:    t.Name(),
	})
	require.NoError(t, err)
	return a
}

func TestRunStoresNormalizedEndDate(t *testing.T) {
	h := newHarness(hpValues())

	res, err := h.agent(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "May 23, 2025", res.EndDateRaw)
	assert.Equal(t, "2025-05-23", res.EndDateNormalized)
	assert.Equal(t, DeviceIdentity{Manufacturer: "HP", SerialNumber: "5CD1234XYZ"}, res.Identity)

	stored, err := ReadEndDate(context.Background(), h.store)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-23", stored)
	assert.Equal(t, 1, h.session.CloseCount())
	assert.Equal(t, []string{hpsupport.DefaultURL}, h.session.Visited)
}

func TestRunSkipsNonVendorHost(t *testing.T) {
	values := hpValues()
	values[KeyManufacturer] = "Dell Inc."
	h := newHarness(values)

	_, err := h.agent(t).Run(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedVendor)
	assert.Zero(t, h.primary.CallCount())
	assert.Zero(t, h.fallback.CallCount())
}

func TestRunSkipsWhenManufacturerUnreadable(t *testing.T) {
	values := hpValues()
	delete(values, KeyManufacturer)
	h := newHarness(values)

	_, err := h.agent(t).Run(context.Background())
	assert.ErrorIs(t, err, ErrUnsupportedVendor)
	assert.Zero(t, h.primary.CallCount())
}

func TestRunFailsWithoutSerialNumber(t *testing.T) {
	values := hpValues()
	values[KeySerialNumber] = "   "
	h := newHarness(values)

	_, err := h.agent(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StageIdentity, StageOf(err))
	assert.Zero(t, h.primary.CallCount())
}

func TestRunDoesNotReadProductNumberWhenNotAsked(t *testing.T) {
	values := hpValues()
	delete(values, KeyProductNumber)
	h := newHarness(values)

	res, err := h.agent(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-05-23", res.EndDateNormalized)
}

func TestRunAnswersProductNumberPrompt(t *testing.T) {
	h := newHarness(hpValues())
	field := h.session.Add(hpsupport.ProductNumberInput, nil)
	submit := h.session.Add(hpsupport.ProductNumberSubmit, nil)

	res, err := h.agent(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"4X1H8PA"}, field.Typed())
	assert.Equal(t, "4X1H8PA", res.Identity.ProductNumber)
	assert.Equal(t, 1, submit.ClickCount())
}

func TestRunReleasesSessionOnceWhenProductNumberMissing(t *testing.T) {
	values := hpValues()
	delete(values, KeyProductNumber)
	h := newHarness(values)
	h.session.Add(hpsupport.ProductNumberInput, nil)

	_, err := h.agent(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StageProductNumber, StageOf(err))
	assert.Equal(t, 1, h.session.CloseCount())
	_, err = h.store.Get(context.Background(), KeyWarrantyEndDate)
	assert.ErrorIs(t, err, regstore.ErrNotFound)
}

func TestRunFailsWhenNoBrowserStarts(t *testing.T) {
	h := newHarness(hpValues())
	h.primary = browsertest.FailingLauncher(browser.VariantEdge)

	_, err := h.agent(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StageSession, StageOf(err))
	assert.ErrorIs(t, err, browser.ErrSessionExhausted)
	assert.Equal(t, 3, h.primary.CallCount())
	assert.Equal(t, 3, h.fallback.CallCount())
}

func TestRunFailsWhenEndDateMissing(t *testing.T) {
	h := newHarness(hpValues())
	h.endDate.Hidden = true

	_, err := h.agent(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StageExtract, StageOf(err))
	assert.Equal(t, 1, h.session.CloseCount())
}

func TestRunFailsOnUnparsableEndDate(t *testing.T) {
	h := newHarness(hpValues())
	h.endDate.Value = "Undefined"

	_, err := h.agent(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StageNormalize, StageOf(err))
	assert.ErrorIs(t, err, ErrInvalidEndDate)
	assert.Equal(t, 1, h.session.CloseCount())
}

func TestRunFailsWhenPersistFails(t *testing.T) {
	h := newHarness(hpValues())
	h.store.SetErr = errors.New("access denied")

	_, err := h.agent(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StagePersist, StageOf(err))
	assert.Equal(t, 1, h.session.CloseCount())
}

func TestNewAgentRequiresCollaborators(t *testing.T) {
	_, err := NewAgent(Config{})
	assert.Error(t, err)
	_, err = NewAgent(Config{Store: regstore.NewMemory(nil)})
	assert.Error(t, err)
}

func TestRunReportsStagesAndResult(t *testing.T) {
	h := newHarness(hpValues())
	h.endDate.Value = "Undefined"
	var (
		stages    []Stage
		resultErr error
		results   int
	)
	mgr := browser.NewManager(browser.DefaultOptions(), h.primary, h.fallback, browser.WithSleep(h.sleeper.Sleep))
	a, err := NewAgent(Config{
		Store:    h.store,
		Sessions: mgr,
		Callbacks: Callbacks{
			OnStageStarted: func(stage Stage) { stages = append(stages, stage) },
			OnResult: func(res *WarrantyResult, err error) {
				results++
				resultErr = err
			},
		},
	})
	require.NoError(t, err)

	_, err = a.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []Stage{StageIdentity, StageSession, StageForm, StageExtract, StageNormalize}, stages)
	assert.Equal(t, 1, results)
	assert.Equal(t, StageNormalize, StageOf(resultErr))
}

func TestRunReleasesSessionWhenSubmitMissing(t *testing.T) {
	h := newHarness(hpValues())
	delete(h.session.Elements, hpsupport.SerialSubmit)

	_, err := h.agent(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StageForm, StageOf(err))
	assert.ErrorIs(t, err, browser.ErrLookupExhausted)
	assert.Equal(t, 1, h.session.CloseCount())
	assert.Equal(t, browser.DefaultLookupRetryAttempts, h.session.Lookups[hpsupport.SerialSubmit])
	_, err = h.store.Get(context.Background(), KeyWarrantyEndDate)
	assert.ErrorIs(t, err, regstore.ErrNotFound)
}
