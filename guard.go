package warrantyagent

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// MatchesVendor reports whether token occurs in manufacturer, ignoring case.
// An empty token never matches.
func MatchesVendor(manufacturer, token string) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return false
	}
	return strings.Contains(strings.ToLower(manufacturer), token)
}

// checkPlatform reads the manufacturer and matches it against the vendor
// token. A failed read counts as a mismatch.
func (a *Agent) checkPlatform(ctx context.Context) (string, bool) {
	manufacturer, err := a.store.Get(ctx, KeyManufacturer)
	if err != nil {
		log.Warn().Err(err).Msg("warrantyagent: failed to read Manufacturer")
		return "", false
	}
	manufacturer = strings.TrimSpace(manufacturer)
	if !MatchesVendor(manufacturer, a.vendorToken) {
		log.Debug().Str("manufacturer", manufacturer).Str("token", a.vendorToken).Msg("warrantyagent: vendor mismatch")
		return manufacturer, false
	}
	return manufacturer, true
}
