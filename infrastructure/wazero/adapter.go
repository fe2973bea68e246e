package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/routines"
)

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// ModuleName is the host module name (default: the table's package name).
	ModuleName string

	// GuestName is the name of the forwarding guest module (default:
	// ModuleName+GuestSuffix).
	GuestName string

	// RawSuffix, when set, also exports every routine's checked native
	// entry point under name+RawSuffix. Raw exports return the tagged word
	// and leave unwrapping to the caller.
	RawSuffix string

	// CustomHandlers allows adding wazero-specific handlers that are not
	// routines of the table.
	CustomHandlers []CustomHandler
}

// CustomHandler represents a custom wazero handler.
type CustomHandler struct {
	// Name is the exported function name.
	Name string

	// Handler is the wazero GoModuleFunc implementation.
	Handler api.GoModuleFunc

	// ParamTypes are the WASM parameter types.
	ParamTypes []api.ValueType

	// ResultTypes are the WASM result types.
	ResultTypes []api.ValueType
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name.
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithGuestName sets the forwarding guest module name.
func WithGuestName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.GuestName = name
	}
}

// WithRawExports also exports the tagged-word entry points under
// name+suffix.
func WithRawExports(suffix string) AdapterOption {
	return func(c *AdapterConfig) {
		c.RawSuffix = suffix
	}
}

// WithCustomHandler adds a custom wazero handler.
func WithCustomHandler(h CustomHandler) AdapterOption {
	return func(c *AdapterConfig) {
		c.CustomHandlers = append(c.CustomHandlers, h)
	}
}

// GuestSuffix is appended to the host module name to name the guest.
const GuestSuffix = ".guest"

func defaultAdapterConfig(table *routines.Table) AdapterConfig {
	return AdapterConfig{
		ModuleName: table.Package(),
	}
}

// RegisterWithRuntime exports every routine of table as a host function of
// a wazero host module. A routine of arity N becomes (i64 x N) -> i64; the
// parameters and the result are host handles.
//
// Host module functions cannot be called from Go, so it also instantiates
// a guest module that imports every host function and re-exports it under
// the same name. The guest is returned; call its exports.
//
// Host functions run on the caller's goroutine, so the host runtime sees
// the call as if it came through DotCall. A host exit raised by the adapter
// is recovered by wazero and returned, wrapped, from api.Function.Call.
//
// Example:
//
//	guest, err := wazero.RegisterWithRuntime(ctx, runtime, host, table,
//	    wazero.WithRawExports("_raw"),
//	)
//	results, err := guest.ExportedFunction("to_upper").Call(ctx, uint64(arg))
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, host ports.Runtime, table *routines.Table, opts ...AdapterOption) (api.Module, error) {
	cfg := defaultAdapterConfig(table)
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.GuestName == "" {
		cfg.GuestName = cfg.ModuleName + GuestSuffix
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)
	var fns []GuestFunc

	for _, entry := range table.Entries() {
		params := i64s(entry.Arity)
		adapter := entry.Fn
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(adapter(host, handles(stack, len(params))))
			}), params, i64s(1)).
			Export(entry.Name)
		fns = append(fns, GuestFunc{Name: entry.Name, ParamTypes: params, ResultTypes: i64s(1)})

		if cfg.RawSuffix == "" {
			continue
		}
		native, _ := table.Native(entry.Name)
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = uint64(native(host, handles(stack, len(params))))
			}), params, i64s(1)).
			Export(entry.Name + cfg.RawSuffix)
		fns = append(fns, GuestFunc{Name: entry.Name + cfg.RawSuffix, ParamTypes: params, ResultTypes: i64s(1)})
	}

	for _, ch := range cfg.CustomHandlers {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(ch.Handler, ch.ParamTypes, ch.ResultTypes).
			Export(ch.Name)
		fns = append(fns, GuestFunc{Name: ch.Name, ParamTypes: ch.ParamTypes, ResultTypes: ch.ResultTypes})
	}

	hostMod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate host module %q: %w", cfg.ModuleName, err)
	}
	guest, err := instantiateGuest(ctx, runtime, cfg.ModuleName, cfg.GuestName, fns)
	if err != nil {
		_ = hostMod.Close(ctx)
		return nil, err
	}
	slog.DebugContext(ctx, "wazero: host module instantiated", "module", cfg.ModuleName, "guest", cfg.GuestName, "routines", len(table.Names()))
	return guest, nil
}

// handles copies the parameters off the stack before the result overwrites
// stack[0].
func handles(stack []uint64, n int) []entities.Handle {
	args := make([]entities.Handle, n)
	for i := range args {
		args[i] = entities.Handle(stack[i])
	}
	return args
}

func i64s(n int) []api.ValueType {
	types := make([]api.ValueType, n)
	for i := range types {
		types[i] = api.ValueTypeI64
	}
	return types
}
