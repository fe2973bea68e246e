package host

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/routines"
)

// Package is a native package loaded into an Executor.
type Package struct {
	executor *Executor
	table    *routines.Table
	guest    api.Module
}

// Name returns the package name.
func (p *Package) Name() string {
	return p.table.Package()
}

// Call invokes the routine name with args the way the host's own call
// primitive does. A host exit is returned as a *memhost.Exit error.
func (p *Package) Call(ctx context.Context, name string, args ...entities.Handle) (entities.Handle, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	host := p.executor.host
	var res entities.Handle
	err := host.TopLevelExec(func() {
		res = host.DotCall(p.Name(), name, args...)
	})
	if err != nil {
		return 0, err
	}
	return res, nil
}

// Manifest describes the package, including the JSON schema of every
// installed extension type.
func (p *Package) Manifest() entities.Manifest {
	m := p.table.Manifest()
	reg := p.executor.host.Extensions()
	for i, t := range m.Types {
		if schema, ok := reg.GetSchema(t.Name); ok {
			m.Types[i].Schema = schema
		}
	}
	return m
}
