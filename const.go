package warrantyagent

import (
	"github.com/httprunner/WarrantyAgent/internal/config"
	"github.com/httprunner/WarrantyAgent/pkg/regstore"
)

// Settings keys read and written by the agent. These are re-exported from
// regstore so callers can depend on the root package only.
const (
	KeyManufacturer    = regstore.KeyManufacturer
	KeySerialNumber    = regstore.KeySerialNumber
	KeyProductNumber   = regstore.KeyProductNumber
	KeyWarrantyEndDate = regstore.KeyWarrantyEndDate
)

// WarrantyNamespace is the registry subkey the end date is written under.
const WarrantyNamespace = regstore.WarrantyNamespace

// DefaultVendorToken must appear in the manufacturer string for the agent to run.
const DefaultVendorToken = config.DefaultVendorToken
