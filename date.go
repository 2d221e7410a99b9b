package warrantyagent

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// EndDateLayout is the site's date format, e.g. "May 23, 2025".
	EndDateLayout = "January 2, 2006"
	// CanonicalDateLayout is the persisted ISO 8601 calendar date.
	CanonicalDateLayout = "2006-01-02"
)

// ErrInvalidEndDate means the extracted text is not in EndDateLayout.
var ErrInvalidEndDate = errors.New("warrantyagent: unrecognised warranty end date")

// NormalizeEndDate converts "May 23, 2025" to "2025-05-23". Only
// EndDateLayout is accepted.
func NormalizeEndDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.Wrap(ErrInvalidEndDate, "empty text")
	}
	t, err := time.Parse(EndDateLayout, raw)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidEndDate, "%q: %v", raw, err)
	}
	return t.Format(CanonicalDateLayout), nil
}

// WarrantyResult is the outcome of one lookup.
type WarrantyResult struct {
	Identity          DeviceIdentity
	EndDateRaw        string
	EndDateNormalized string
}
