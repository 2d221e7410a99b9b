package warrantyagent

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/httprunner/WarrantyAgent/pkg/regstore"
)

// DeviceIdentity holds the identifiers read from settings. ProductNumber is
// only filled when the support site asks for it.
type DeviceIdentity struct {
	Manufacturer  string
	SerialNumber  string
	ProductNumber string
}

func (a *Agent) readSerialNumber(ctx context.Context) (string, error) {
	return readRequired(ctx, a.store, KeySerialNumber)
}

func (a *Agent) readProductNumber(ctx context.Context) (string, error) {
	return readRequired(ctx, a.store, KeyProductNumber)
}

// productNumberSource defers readProductNumber until the site asks for it and
// records the value on id.
func (a *Agent) productNumberSource(id *DeviceIdentity) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		pn, err := a.readProductNumber(ctx)
		if err != nil {
			log.Error().Err(err).Msg("warrantyagent: failed to read ProductNumber")
			return "", err
		}
		id.ProductNumber = pn
		return pn, nil
	}
}

func readRequired(ctx context.Context, store regstore.Store, key regstore.Key) (string, error) {
	value, err := store.Get(ctx, key)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.Wrapf(regstore.ErrNotFound, "%s is empty", key)
	}
	return value, nil
}
