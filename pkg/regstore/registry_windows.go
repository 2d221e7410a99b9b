//go:build windows

package regstore

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows/registry"
)

// Registry reads and writes REG_SZ values under HKEY_LOCAL_MACHINE.
type Registry struct {
	layout Layout
}

// NewRegistry returns a registry-backed Store using layout.
func NewRegistry(layout Layout) (*Registry, error) {
	return &Registry{layout: layout}, nil
}

func (r *Registry) Get(_ context.Context, key Key) (string, error) {
	loc, err := r.layout.Resolve(key)
	if err != nil {
		return "", err
	}
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, loc.Path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", errors.Wrapf(ErrNotFound, "registry: %s", loc)
		}
		return "", errors.Wrapf(err, "registry: open %s failed", loc.Path)
	}
	defer k.Close()

	value, _, err := k.GetStringValue(loc.Name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", errors.Wrapf(ErrNotFound, "registry: %s", loc)
		}
		return "", errors.Wrapf(err, "registry: read %s failed", loc)
	}
	return value, nil
}

func (r *Registry) Set(_ context.Context, key Key, value string) error {
	loc, err := r.layout.Resolve(key)
	if err != nil {
		return err
	}
	k, _, err := registry.CreateKey(registry.LOCAL_MACHINE, loc.Path, registry.SET_VALUE)
	if err != nil {
		return errors.Wrapf(err, "registry: create %s failed", loc.Path)
	}
	defer k.Close()
	if err := k.SetStringValue(loc.Name, value); err != nil {
		return errors.Wrapf(err, "registry: write %s failed", loc)
	}
	return nil
}

func (r *Registry) Close() error { return nil }
