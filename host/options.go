package host

import (
	"log/slog"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/infrastructure/memhost"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithRuntime uses rt instead of creating a host runtime.
func WithRuntime(rt *memhost.Runtime) Option {
	return func(e *Executor) {
		e.host = rt
	}
}

// WithConfig sets the configuration of the created host runtime.
// It is ignored when WithRuntime is given.
func WithConfig(cfg entities.RuntimeConfig) Option {
	return func(e *Executor) {
		e.cfg = cfg
	}
}

// WithWasmBridge enables exporting loaded packages as wazero host modules.
func WithWasmBridge(enabled bool) Option {
	return func(e *Executor) {
		e.wasmBridge = enabled
	}
}

// WithLogger sets the logger for executor diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}
