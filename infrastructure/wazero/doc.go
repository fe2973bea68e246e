// Package wazero exports a routine table as a wazero host module.
//
// Every routine becomes a host function taking and returning i64 host
// handles. A forwarding guest module imports the host functions and
// re-exports them, so Go code can call them through api.Function. Callers
// get the adapter semantics: a valid handle, or the host's non-local exit,
// which wazero recovers and returns as the error of api.Function.Call.
//
// # Basic Usage
//
//	runtime := wazero.NewRuntime(ctx)
//	guest, err := wazero.RegisterWithRuntime(ctx, runtime, host, table)
//	if err != nil {
//	    return err
//	}
//	results, err := guest.ExportedFunction("to_upper").Call(ctx, uint64(arg))
//
// # Raw Exports
//
// WithRawExports also exports each routine's checked entry point, which
// returns the tagged word instead of unwrapping it:
//
//	wazero.RegisterWithRuntime(ctx, runtime, host, table,
//	    wazero.WithRawExports("_raw"),
//	)
//
// # Custom Handlers
//
// Functions that are not routines can be added with WithCustomHandler:
//
//	wazero.RegisterWithRuntime(ctx, runtime, host, table,
//	    wazero.WithCustomHandler(wazero.CustomHandler{
//	        Name:        "gc",
//	        Handler:     gcHandler,
//	        ParamTypes:  []api.ValueType{},
//	        ResultTypes: []api.ValueType{api.ValueTypeI64},
//	    }),
//	)
package wazero
