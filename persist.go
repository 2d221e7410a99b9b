package warrantyagent

import (
	"context"

	"github.com/pkg/errors"

	"github.com/httprunner/WarrantyAgent/pkg/regstore"
)

// PersistEndDate writes the normalised end date under KeyWarrantyEndDate.
func PersistEndDate(ctx context.Context, store regstore.Store, date string) error {
	if err := store.Set(ctx, KeyWarrantyEndDate, date); err != nil {
		return errors.Wrapf(err, "write %s", KeyWarrantyEndDate)
	}
	return nil
}

// ReadEndDate returns the previously persisted end date.
func ReadEndDate(ctx context.Context, store regstore.Store) (string, error) {
	return readRequired(ctx, store, KeyWarrantyEndDate)
}
