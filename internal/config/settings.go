package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/httprunner/WarrantyAgent/internal/textutil"
	"github.com/httprunner/WarrantyAgent/pkg/browser"
	"github.com/httprunner/WarrantyAgent/pkg/hpsupport"
	"github.com/httprunner/WarrantyAgent/pkg/regstore"
)

// Environment variables recognised by Load. They override the YAML file.
const (
	EnvConfigFile     = "WARRANTY_CONFIG"
	EnvStore          = "WARRANTY_STORE"
	EnvDBPath         = regstore.EnvDBPath
	EnvURL            = "WARRANTY_URL"
	EnvVendorToken    = "WARRANTY_VENDOR_TOKEN"
	EnvChromePath     = "WARRANTY_CHROME_PATH"
	EnvEdgePath       = "WARRANTY_EDGE_PATH"
	EnvHostIdentity   = "WARRANTY_HOST_IDENTITY"
	EnvSessionRetries = "WARRANTY_SESSION_RETRIES"
	EnvSessionDelay   = "WARRANTY_SESSION_RETRY_DELAY"
	EnvLookupRetries  = "WARRANTY_LOOKUP_RETRIES"
	EnvLookupDelay    = "WARRANTY_LOOKUP_RETRY_DELAY"
	EnvPageTimeout    = "WARRANTY_PAGE_TIMEOUT"
	EnvConsentTimeout = "WARRANTY_CONSENT_TIMEOUT"
	EnvProductTimeout = "WARRANTY_PRODUCT_TIMEOUT"
	EnvResultTimeout  = "WARRANTY_RESULT_TIMEOUT"
	EnvSkipInstall    = "WARRANTY_SKIP_DRIVER_INSTALL"
)

// DefaultVendorToken is matched case-insensitively against the manufacturer.
const DefaultVendorToken = "hp"

// Settings is the resolved agent configuration.
type Settings struct {
	Store        string
	DBPath       string
	HostIdentity bool
	Layout       regstore.Layout
	URL          string
	VendorToken  string
	ChromePath   string
	EdgePath     string
	Headed       bool

	// SkipDriverInstall assumes the Playwright driver is already installed.
	SkipDriverInstall bool

	SessionRetry browser.RetryPolicy
	LookupRetry  browser.RetryPolicy
	Timeouts     hpsupport.Timeouts
}

// fileSettings is the on-disk YAML shape.
type fileSettings struct {
	Store        string          `yaml:"store"`
	DBPath       string          `yaml:"db_path"`
	HostIdentity bool            `yaml:"host_identity"`
	Layout       regstore.Layout `yaml:"layout"`
	URL          string          `yaml:"url"`
	VendorToken  string          `yaml:"vendor_token"`
	ChromePath   string          `yaml:"chrome_path"`
	EdgePath     string          `yaml:"edge_path"`
	SkipInstall  bool            `yaml:"skip_driver_install"`
	Retry        retryFile       `yaml:"retry"`
	Timeout      timeoutFile     `yaml:"timeouts"`
}

type retryFile struct {
	SessionAttempts int           `yaml:"session_attempts"`
	SessionDelay    time.Duration `yaml:"session_delay"`
	LookupAttempts  int           `yaml:"lookup_attempts"`
	LookupDelay     time.Duration `yaml:"lookup_delay"`
}

type timeoutFile struct {
	PageReady     time.Duration `yaml:"page_ready"`
	Consent       time.Duration `yaml:"consent"`
	ProductPrompt time.Duration `yaml:"product_prompt"`
	Result        time.Duration `yaml:"result"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Store:        regstore.DefaultBackend(),
		URL:          hpsupport.DefaultURL,
		VendorToken:  DefaultVendorToken,
		SessionRetry: browser.SessionRetryPolicy(),
		LookupRetry:  browser.LookupRetryPolicy(),
		Timeouts:     hpsupport.DefaultTimeouts(),
	}
}

// Load resolves settings from defaults, then the YAML file at path (or
// $WARRANTY_CONFIG), then the environment.
func Load(path string) (Settings, error) {
	s := Defaults()
	if strings.TrimSpace(path) == "" {
		path = String(EnvConfigFile, "")
	}
	if path != "" {
		if err := s.loadFile(path); err != nil {
			return Settings{}, err
		}
	}
	s.applyEnv()
	return s, nil
}

func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "config: read %s failed", path)
	}
	var file fileSettings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrapf(err, "config: parse %s failed", path)
	}
	s.Store = textutil.FirstNonEmpty(file.Store, s.Store)
	s.DBPath = textutil.FirstNonEmpty(file.DBPath, s.DBPath)
	s.URL = textutil.FirstNonEmpty(file.URL, s.URL)
	s.VendorToken = textutil.FirstNonEmpty(file.VendorToken, s.VendorToken)
	s.ChromePath = textutil.FirstNonEmpty(file.ChromePath, s.ChromePath)
	s.EdgePath = textutil.FirstNonEmpty(file.EdgePath, s.EdgePath)
	s.HostIdentity = s.HostIdentity || file.HostIdentity
	s.SkipDriverInstall = s.SkipDriverInstall || file.SkipInstall
	if len(file.Layout) > 0 {
		s.Layout = file.Layout
	}
	if file.Retry.SessionAttempts > 0 {
		s.SessionRetry.Attempts = file.Retry.SessionAttempts
	}
	if file.Retry.SessionDelay > 0 {
		s.SessionRetry.Delay = file.Retry.SessionDelay
	}
	if file.Retry.LookupAttempts > 0 {
		s.LookupRetry.Attempts = file.Retry.LookupAttempts
	}
	if file.Retry.LookupDelay > 0 {
		s.LookupRetry.Delay = file.Retry.LookupDelay
	}
	if file.Timeout.PageReady > 0 {
		s.Timeouts.PageReady = file.Timeout.PageReady
	}
	if file.Timeout.Consent > 0 {
		s.Timeouts.Consent = file.Timeout.Consent
	}
	if file.Timeout.ProductPrompt > 0 {
		s.Timeouts.ProductPrompt = file.Timeout.ProductPrompt
	}
	if file.Timeout.Result > 0 {
		s.Timeouts.Result = file.Timeout.Result
	}
	return nil
}

func (s *Settings) applyEnv() {
	s.Store = String(EnvStore, s.Store)
	s.DBPath = String(EnvDBPath, s.DBPath)
	s.URL = String(EnvURL, s.URL)
	s.VendorToken = String(EnvVendorToken, s.VendorToken)
	s.ChromePath = String(EnvChromePath, s.ChromePath)
	s.EdgePath = String(EnvEdgePath, s.EdgePath)
	s.HostIdentity = Bool(EnvHostIdentity, s.HostIdentity)
	s.SessionRetry.Attempts = Int(EnvSessionRetries, s.SessionRetry.Attempts)
	s.SessionRetry.Delay = Duration(EnvSessionDelay, s.SessionRetry.Delay)
	s.LookupRetry.Attempts = Int(EnvLookupRetries, s.LookupRetry.Attempts)
	s.LookupRetry.Delay = Duration(EnvLookupDelay, s.LookupRetry.Delay)
	s.Timeouts.PageReady = Duration(EnvPageTimeout, s.Timeouts.PageReady)
	s.Timeouts.Consent = Duration(EnvConsentTimeout, s.Timeouts.Consent)
	s.Timeouts.ProductPrompt = Duration(EnvProductTimeout, s.Timeouts.ProductPrompt)
	s.Timeouts.Result = Duration(EnvResultTimeout, s.Timeouts.Result)
	s.SkipDriverInstall = Bool(EnvSkipInstall, s.SkipDriverInstall)
}

// StoreOptions returns the regstore options these settings describe.
func (s Settings) StoreOptions() regstore.Options {
	return regstore.Options{
		Backend:      s.Store,
		Layout:       s.Layout,
		DBPath:       s.DBPath,
		HostIdentity: s.HostIdentity,
	}
}
