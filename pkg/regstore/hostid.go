package regstore

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// HostReader reads a hardware identifier straight from the machine.
type HostReader func(ctx context.Context, key Key) (string, error)

// hostIdentity falls back to firmware data for identity keys the wrapped
// store does not hold.
type hostIdentity struct {
	Store
	readHost HostReader
}

// WithHostIdentity wraps store so that Manufacturer and SerialNumber reads
// returning ErrNotFound are answered from SMBIOS data instead. A nil reader
// uses the platform default.
func WithHostIdentity(store Store, readHost HostReader) Store {
	if readHost == nil {
		readHost = defaultHostReader
	}
	return &hostIdentity{Store: store, readHost: readHost}
}

func (h *hostIdentity) Get(ctx context.Context, key Key) (string, error) {
	value, err := h.Store.Get(ctx, key)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return value, err
	}
	if key != KeyManufacturer && key != KeySerialNumber {
		return "", err
	}
	found, readErr := h.readHost(ctx, key)
	if readErr != nil || strings.TrimSpace(found) == "" {
		log.Debug().Err(readErr).Str("key", string(key)).Msg("regstore: host identity lookup found nothing")
		return "", err
	}
	log.Debug().Str("key", string(key)).Msg("regstore: value read from host firmware")
	return strings.TrimSpace(found), nil
}

var dmiFiles = map[Key]string{
	KeyManufacturer: "/sys/class/dmi/id/sys_vendor",
	KeySerialNumber: "/sys/class/dmi/id/product_serial",
}

var wmicQueries = map[Key][]string{
	KeyManufacturer: {"computersystem", "get", "manufacturer"},
	KeySerialNumber: {"bios", "get", "serialnumber"},
}

var profilerFields = map[Key]string{
	KeyManufacturer: "Manufacturer",
	KeySerialNumber: "Serial Number (system)",
}

func defaultHostReader(ctx context.Context, key Key) (string, error) {
	switch runtime.GOOS {
	case "linux":
		path, ok := dmiFiles[key]
		if !ok {
			return "", ErrNotFound
		}
		return readSystemFile(path)
	case "windows":
		args, ok := wmicQueries[key]
		if !ok {
			return "", ErrNotFound
		}
		out, err := exec.CommandContext(ctx, "wmic", args...).Output()
		if err != nil {
			return "", errors.Wrap(err, "regstore: wmic query failed")
		}
		return parseWMIC(string(out)), nil
	case "darwin":
		field, ok := profilerFields[key]
		if !ok {
			return "", ErrNotFound
		}
		out, err := exec.CommandContext(ctx, "system_profiler", "SPHardwareDataType").Output()
		if err != nil {
			return "", errors.Wrap(err, "regstore: system_profiler failed")
		}
		if field == "Manufacturer" {
			// system_profiler only runs on Apple hardware.
			return "Apple Inc.", nil
		}
		return parseProfiler(string(out), field), nil
	default:
		return "", ErrNotFound
	}
}

func readSystemFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseWMIC returns the first value line of `wmic ... get <field>` output.
func parseWMIC(out string) string {
	lines := strings.Split(strings.ReplaceAll(out, "\r", ""), "\n")
	for _, line := range lines[1:] {
		if v := strings.TrimSpace(line); v != "" {
			return v
		}
	}
	return ""
}

func parseProfiler(out, field string) string {
	for _, line := range strings.Split(out, "\n") {
		name, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if ok && strings.TrimSpace(name) == field {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
