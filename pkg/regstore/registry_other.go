//go:build !windows

package regstore

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
)

// Registry is only available on Windows.
type Registry struct{}

// NewRegistry reports ErrUnsupported outside Windows.
func NewRegistry(Layout) (*Registry, error) {
	return nil, errors.Wrapf(ErrUnsupported, "registry on %s", runtime.GOOS)
}

func (r *Registry) Get(context.Context, Key) (string, error) { return "", ErrUnsupported }

func (r *Registry) Set(context.Context, Key, string) error { return ErrUnsupported }

func (r *Registry) Close() error { return nil }
