// Package regstore reads and writes the machine-level key/value settings the
// warranty agent depends on. On Windows this is the registry; elsewhere a
// SQLite file or the OS keyring stand in for it.
package regstore

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Key is a logical setting name.
type Key string

const (
	KeyManufacturer    Key = "Manufacturer"
	KeySerialNumber    Key = "SerialNumber"
	KeyProductNumber   Key = "ProductNumber"
	KeyWarrantyEndDate Key = "WarrantyEndDate"
)

var (
	// ErrNotFound is returned when the key or its value does not exist.
	ErrNotFound = errors.New("regstore: value not found")
	// ErrUnsupported is returned by backends unavailable on this platform.
	ErrUnsupported = errors.New("regstore: backend unsupported on this platform")
)

// Store is a get/set view over machine settings.
type Store interface {
	Get(ctx context.Context, key Key) (string, error)
	Set(ctx context.Context, key Key, value string) error
	Close() error
}

// Location is where a key lives: a registry subkey under HKLM and a value name.
type Location struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

func (l Location) String() string {
	return l.Path + `\` + l.Name
}

// WarrantyNamespace is the subkey results are written under.
const WarrantyNamespace = `SOFTWARE\CIT\Warranty`

// Layout maps logical keys to their locations.
type Layout map[Key]Location

// DefaultLayout returns the locations used when no configuration overrides them.
func DefaultLayout() Layout {
	return Layout{
		KeyManufacturer:    {Path: `HARDWARE\DESCRIPTION\System\BIOS`, Name: "SystemManufacturer"},
		KeySerialNumber:    {Path: `SOFTWARE\CIT\Device`, Name: "SerialNumber"},
		KeyProductNumber:   {Path: `SOFTWARE\CIT\Device`, Name: "ProductNumber"},
		KeyWarrantyEndDate: {Path: WarrantyNamespace, Name: "WarrantyEndDate"},
	}
}

// Merge returns a copy of l with non-empty entries from override applied.
func (l Layout) Merge(override Layout) Layout {
	merged := make(Layout, len(l)+len(override))
	for k, v := range l {
		merged[k] = v
	}
	for k, v := range override {
		cur := merged[k]
		if p := strings.TrimSpace(v.Path); p != "" {
			cur.Path = p
		}
		if n := strings.TrimSpace(v.Name); n != "" {
			cur.Name = n
		}
		merged[k] = cur
	}
	return merged
}

// Resolve returns the location of key, or an error when the layout lacks it.
func (l Layout) Resolve(key Key) (Location, error) {
	loc, ok := l[key]
	if !ok || loc.Path == "" || loc.Name == "" {
		return Location{}, errors.Errorf("regstore: no location configured for %s", key)
	}
	return loc, nil
}
