package regstore

import (
	"context"

	"github.com/pkg/errors"
	zkr "github.com/zalando/go-keyring"
)

// Keyring stores settings in the OS credential store (Windows Credential
// Manager, macOS Keychain, Secret Service). The location path is the service
// and the value name the account.
type Keyring struct {
	layout Layout
}

// NewKeyring returns a keyring-backed Store.
func NewKeyring(layout Layout) *Keyring {
	return &Keyring{layout: layout}
}

func (k *Keyring) Get(_ context.Context, key Key) (string, error) {
	loc, err := k.layout.Resolve(key)
	if err != nil {
		return "", err
	}
	value, err := zkr.Get(loc.Path, loc.Name)
	if err != nil {
		if errors.Is(err, zkr.ErrNotFound) {
			return "", errors.Wrapf(ErrNotFound, "keyring: %s", loc)
		}
		return "", errors.Wrapf(err, "keyring: read %s failed", loc)
	}
	return value, nil
}

func (k *Keyring) Set(_ context.Context, key Key, value string) error {
	loc, err := k.layout.Resolve(key)
	if err != nil {
		return err
	}
	if err := zkr.Set(loc.Path, loc.Name, value); err != nil {
		return errors.Wrapf(err, "keyring: write %s failed", loc)
	}
	return nil
}

func (k *Keyring) Close() error { return nil }
