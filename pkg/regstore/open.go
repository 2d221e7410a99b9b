package regstore

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendRegistry = "registry"
	BackendSQLite   = "sqlite"
	BackendKeyring  = "keyring"
	BackendMemory   = "memory"
)

// Options select and configure a Store backend.
type Options struct {
	Backend string
	Layout  Layout
	// DBPath is used by the sqlite backend.
	DBPath string
	// HostIdentity answers missing Manufacturer/SerialNumber from firmware.
	HostIdentity bool
}

// DefaultBackend is the registry on Windows and SQLite elsewhere.
func DefaultBackend() string {
	if runtime.GOOS == "windows" {
		return BackendRegistry
	}
	return BackendSQLite
}

// Open builds the Store described by opts.
func Open(opts Options) (Store, error) {
	layout := DefaultLayout().Merge(opts.Layout)
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = DefaultBackend()
	}

	var (
		store Store
		err   error
	)
	switch backend {
	case BackendRegistry:
		store, err = NewRegistry(layout)
	case BackendSQLite:
		store, err = NewSQLite(opts.DBPath, layout)
	case BackendKeyring:
		store = NewKeyring(layout)
	case BackendMemory:
		store = NewMemory(nil)
	default:
		return nil, errors.Errorf("regstore: unknown backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	if opts.HostIdentity {
		store = WithHostIdentity(store, nil)
	}
	return store, nil
}
