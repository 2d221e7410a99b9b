package warrantyagent

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/httprunner/WarrantyAgent/pkg/browser"
	"github.com/httprunner/WarrantyAgent/pkg/hpsupport"
	"github.com/httprunner/WarrantyAgent/pkg/regstore"
)

// SessionSource hands out browser sessions. *browser.Manager satisfies it.
type SessionSource interface {
	Acquire(ctx context.Context) (browser.Session, error)
}

// Config wires the agent's collaborators.
type Config struct {
	Store       regstore.Store
	Sessions    SessionSource
	Finder      *browser.Finder
	URL         string
	VendorToken string
	Timeouts    hpsupport.Timeouts
	RunID       string
	Callbacks   Callbacks
}

// Agent runs one warranty lookup end to end.
type Agent struct {
	store       regstore.Store
	sessions    SessionSource
	finder      *browser.Finder
	url         string
	vendorToken string
	timeouts    hpsupport.Timeouts
	runID       string
	callbacks   Callbacks
}

// NewAgent validates cfg and fills defaults.
func NewAgent(cfg Config) (*Agent, error) {
	if cfg.Store == nil {
		return nil, errors.New("warrantyagent: settings store is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("warrantyagent: session source is required")
	}
	finder := cfg.Finder
	if finder == nil {
		finder = browser.NewFinder(browser.LookupRetryPolicy())
	}
	token := strings.TrimSpace(cfg.VendorToken)
	if token == "" {
		token = DefaultVendorToken
	}
	return &Agent{
		store:       cfg.Store,
		sessions:    cfg.Sessions,
		finder:      finder,
		url:         cfg.URL,
		vendorToken: token,
		timeouts:    cfg.Timeouts,
		runID:       cfg.RunID,
		callbacks:   cfg.Callbacks,
	}, nil
}

// Run performs the lookup. It returns ErrUnsupportedVendor without touching
// the browser when the host is not a vendor machine. Fatal errors are
// *StageError values. The browser session is released before the result is
// normalised and persisted.
func (a *Agent) Run(ctx context.Context) (res *WarrantyResult, err error) {
	defer func() { a.callbacks.result(res, err) }()
	started := time.Now()
	logger := log.With().Str("run_id", a.runID).Logger()

	manufacturer, ok := a.checkPlatform(ctx)
	if !ok {
		logger.Info().Str("manufacturer", manufacturer).Msg("warrantyagent: not an expected vendor machine, exiting")
		return nil, ErrUnsupportedVendor
	}

	a.callbacks.stageStarted(StageIdentity)
	identity := &DeviceIdentity{Manufacturer: manufacturer}
	serial, err := a.readSerialNumber(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("warrantyagent: failed to read SerialNumber")
		return nil, stageErr(StageIdentity, err)
	}
	identity.SerialNumber = serial
	logger.Info().Str("serial", serial).Msg("warrantyagent: serial number read")

	raw, err := a.lookup(ctx, identity)
	if err != nil {
		logger.Error().Err(err).Str("stage", string(StageOf(err))).Msg("warrantyagent: lookup failed")
		return nil, err
	}

	a.callbacks.stageStarted(StageNormalize)
	normalized, err := NormalizeEndDate(raw)
	if err != nil {
		logger.Error().Err(err).Str("raw", raw).Msg("warrantyagent: failed to parse end date")
		return nil, stageErr(StageNormalize, err)
	}
	a.callbacks.stageStarted(StagePersist)
	if err := PersistEndDate(ctx, a.store, normalized); err != nil {
		logger.Error().Err(err).Msg("warrantyagent: failed to persist end date")
		return nil, stageErr(StagePersist, err)
	}

	logger.Info().
		Str("end_date", normalized).
		Bool("product_number_used", identity.ProductNumber != "").
		Dur("elapsed", time.Since(started)).
		Msg("warrantyagent: warranty end date stored")
	return &WarrantyResult{Identity: *identity, EndDateRaw: raw, EndDateNormalized: normalized}, nil
}

// lookup owns the browser session for the duration of the page interaction
// and always releases it before returning.
func (a *Agent) lookup(ctx context.Context, identity *DeviceIdentity) (string, error) {
	a.callbacks.stageStarted(StageSession)
	session, err := a.sessions.Acquire(ctx)
	if err != nil {
		return "", stageErr(StageSession, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("warrantyagent: failed to release browser session")
		}
	}()

	a.callbacks.stageStarted(StageForm)
	form := hpsupport.NewForm(session, a.finder, a.url, a.timeouts)
	if err := form.Open(ctx); err != nil {
		return "", stageErr(StageForm, err)
	}
	if _, err := form.Submit(ctx, identity.SerialNumber, a.productNumberSource(identity)); err != nil {
		if errors.Is(err, hpsupport.ErrProductNumber) {
			return "", stageErr(StageProductNumber, err)
		}
		return "", stageErr(StageForm, err)
	}
	a.callbacks.stageStarted(StageExtract)
	raw, err := form.ReadEndDate(ctx)
	if err != nil {
		return "", stageErr(StageExtract, err)
	}
	log.Info().Str("end_date", raw).Msg("warrantyagent: warranty end date found")
	return raw, nil
}
