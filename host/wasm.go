package host

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/errors"
	"github.com/reglet-dev/reglet-ffi/infrastructure/memhost"
	wazeroadapter "github.com/reglet-dev/reglet-ffi/infrastructure/wazero"
)

// RawSuffix names the exports that return tagged words.
const RawSuffix = "_raw"

// ErrWasmBridgeDisabled is returned by wasm calls on an executor created
// without WithWasmBridge.
var ErrWasmBridgeDisabled = stdErrors.New("wasm bridge is disabled")

func (p *Package) bridge(ctx context.Context) error {
	e := p.executor
	guest, err := wazeroadapter.RegisterWithRuntime(ctx, e.wasm, e.host, p.table,
		wazeroadapter.WithModuleName(p.Name()),
		wazeroadapter.WithRawExports(RawSuffix),
	)
	if err != nil {
		return fmt.Errorf("failed to export package %s: %w", p.Name(), err)
	}
	p.guest = guest
	return nil
}

// CallWasm invokes the routine name through its wazero export. The result
// matches Call.
func (p *Package) CallWasm(ctx context.Context, name string, args ...entities.Handle) (entities.Handle, error) {
	results, err := p.callExport(ctx, name, args)
	if err != nil {
		return 0, err
	}
	return entities.Handle(results[0]), nil
}

// CallRaw invokes the tagged-word export of the routine name. Errors are
// returned in the word, not as an error.
func (p *Package) CallRaw(ctx context.Context, name string, args ...entities.Handle) (entities.Word, error) {
	results, err := p.callExport(ctx, name+RawSuffix, args)
	if err != nil {
		return 0, err
	}
	return entities.Word(results[0]), nil
}

func (p *Package) callExport(ctx context.Context, export string, args []entities.Handle) ([]uint64, error) {
	e := p.executor
	if p.guest == nil {
		return nil, ErrWasmBridgeDisabled
	}
	fn := p.guest.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("export %q not found", export)
	}

	params := make([]uint64, len(args))
	for i, a := range args {
		params[i] = uint64(a)
	}

	var results []uint64
	var callErr error
	err := e.host.TopLevelExec(func() {
		results, callErr = fn.Call(ctx, params...)
		if callErr != nil {
			reraise(callErr)
		}
	})
	if err != nil {
		return nil, err
	}
	if callErr != nil {
		return nil, fmt.Errorf("call %s: %w", export, callErr)
	}
	return results, nil
}

// reraise resumes a host exit that wazero recovered, so it reaches the
// top level the same way it would without the bridge.
func reraise(err error) {
	var fatal errors.Unrecoverable
	if stdErrors.As(err, &fatal) {
		panic(fatal)
	}
	var exit *memhost.Exit
	if stdErrors.As(err, &exit) {
		panic(exit)
	}
}
