package browser

import "strconv"

// Options are the operational flags shared by both engines.
type Options struct {
	Headless bool
	// NoSandbox disables the Chromium sandbox; required when running as SYSTEM.
	NoSandbox          bool
	DisableGPU         bool
	DisableDevShmUsage bool
	// LogLevel is passed as --log-level; 3 suppresses everything below fatal.
	LogLevel int
	// ExecPath overrides executable discovery for engines that launch a binary directly.
	ExecPath string
}

// DefaultOptions returns the fixed headless profile used for warranty lookups.
func DefaultOptions() Options {
	return Options{
		Headless:           true,
		NoSandbox:          true,
		DisableGPU:         true,
		DisableDevShmUsage: true,
		LogLevel:           3,
	}
}

// extraArgs lists the command line switches not covered by an engine's own
// headless option.
func (o Options) extraArgs() []string {
	args := make([]string, 0, 4)
	if o.DisableGPU {
		args = append(args, "--disable-gpu")
	}
	if o.NoSandbox {
		args = append(args, "--no-sandbox")
	}
	if o.DisableDevShmUsage {
		args = append(args, "--disable-dev-shm-usage")
	}
	if o.LogLevel > 0 {
		args = append(args, "--log-level="+strconv.Itoa(o.LogLevel))
	}
	return args
}
