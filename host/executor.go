package host

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/reglet-dev/reglet-ffi/application/config"
	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/infrastructure/memhost"
	"github.com/reglet-dev/reglet-ffi/routines"
)

// Executor manages a host runtime and the packages loaded into it.
// It is not safe for concurrent use.
type Executor struct {
	host       *memhost.Runtime
	wasm       wazero.Runtime
	logger     *slog.Logger
	packages   map[string]*Package
	cfg        entities.RuntimeConfig
	wasmBridge bool
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{
		cfg:      entities.DefaultRuntimeConfig(),
		packages: make(map[string]*Package),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	if e.host == nil {
		if err := config.Validate(&e.cfg); err != nil {
			return nil, err
		}
		e.host = memhost.New(memhost.WithConfig(e.cfg), memhost.WithLogger(e.logger))
	}

	if e.wasmBridge {
		rt := wazero.NewRuntime(ctx)
		wasi_snapshot_preview1.MustInstantiate(ctx, rt)
		e.wasm = rt
	}

	return e, nil
}

// Close releases resources held by the executor.
func (e *Executor) Close(ctx context.Context) error {
	if e.wasm == nil {
		return nil
	}
	return e.wasm.Close(ctx)
}

// Runtime returns the host runtime.
func (e *Executor) Runtime() *memhost.Runtime {
	return e.host
}

// LoadPackage loads table into the host runtime: it registers the routines,
// disables lookup of unregistered symbols and runs the init steps. With the
// wasm bridge enabled the package is also exported as a host module named
// after it, with a forwarding guest module that CallWasm and CallRaw use.
func (e *Executor) LoadPackage(ctx context.Context, table *routines.Table) (*Package, error) {
	lc, err := e.host.LoadLibrary(table.Package())
	if err != nil {
		return nil, err
	}

	if err := e.host.TopLevelExec(func() { table.Init(e.host, lc) }); err != nil {
		return nil, fmt.Errorf("failed to load package %s: %w", table.Package(), err)
	}

	p := &Package{executor: e, table: table}
	if e.wasm != nil {
		if err := p.bridge(ctx); err != nil {
			return nil, err
		}
	}

	e.packages[table.Package()] = p
	e.logger.Debug("host: package loaded", "package", table.Package(), "routines", len(table.Names()))
	return p, nil
}

// Package returns a loaded package by name.
func (e *Executor) Package(name string) (*Package, bool) {
	p, ok := e.packages[name]
	return p, ok
}

// Packages returns the names of the loaded packages.
func (e *Executor) Packages() []string {
	names := make([]string, 0, len(e.packages))
	for name := range e.packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
