package memhost

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/internal/abi"
)

var entryValidator = validator.New()

type loadContext struct {
	rt         *Runtime
	entries    map[string]ports.CallEntry
	pkg        string
	registered bool
	dynamic    bool
}

func (c *loadContext) PackageName() string {
	return c.pkg
}

func (c *loadContext) RegisterRoutines(entries []ports.CallEntry) error {
	if c.registered {
		return fmt.Errorf("package %q: routines already registered", c.pkg)
	}
	table := make(map[string]ports.CallEntry, len(entries))
	for i, e := range entries {
		if err := entryValidator.Struct(e); err != nil {
			return fmt.Errorf("package %q: entry %d: %w", c.pkg, i, err)
		}
		if _, dup := table[e.Name]; dup {
			return fmt.Errorf("package %q: duplicate routine %q", c.pkg, e.Name)
		}
		table[e.Name] = e
	}
	c.entries = table
	c.registered = true
	c.rt.logger.Debug("memhost: routines registered", "package", c.pkg, "count", len(table))
	return nil
}

func (c *loadContext) UseDynamicSymbols(enabled bool) {
	c.dynamic = enabled
}

func (c *loadContext) InstallExtensionType(t ports.ExtensionType) error {
	if t.Length == nil || t.Elt == nil {
		return fmt.Errorf("extension type %q: Length and Elt are required", t.Name)
	}
	if err := c.rt.extensions.Register(t); err != nil {
		return fmt.Errorf("package %q: %w", c.pkg, err)
	}
	return nil
}

// LoadLibrary creates the load context for pkg. Loading the same package
// twice is an error.
func (r *Runtime) LoadLibrary(pkg string) (ports.LoadContext, error) {
	if pkg == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if _, ok := r.packages[pkg]; ok {
		return nil, fmt.Errorf("package %q is already loaded", pkg)
	}
	lc := &loadContext{rt: r, pkg: pkg, dynamic: true}
	r.packages[pkg] = lc
	return lc, nil
}

// Routines lists the registered routine names of pkg.
func (r *Runtime) Routines(pkg string) []string {
	lc, ok := r.packages[pkg]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(lc.entries))
	for name := range lc.entries {
		names = append(names, name)
	}
	return names
}

// DotCall invokes the routine name registered by pkg with args. Arguments
// are protected for the duration of the call. A routine that hands back a
// tagged word has broken the boundary contract and is fatal.
func (r *Runtime) DotCall(pkg, name string, args ...entities.Handle) entities.Handle {
	lc, ok := r.packages[pkg]
	if !ok {
		r.RaiseError(fmt.Sprintf("there is no package called '%s'", pkg))
	}
	entry, ok := lc.entries[name]
	if !ok {
		if !lc.dynamic {
			r.RaiseError(fmt.Sprintf("C symbol name \"%s\" not in load table", name))
		}
		r.RaiseError(fmt.Sprintf("C symbol name \"%s\" not in DLL for package \"%s\"", name, pkg))
	}
	if len(args) != entry.Arity {
		r.RaiseError(fmt.Sprintf("Incorrect number of arguments (%d), expecting %d for '%s'", len(args), entry.Arity, name))
	}

	for _, a := range args {
		r.Protect(a)
	}
	res := entry.Fn(r, args)
	r.Unprotect(len(args))

	if abi.IsError(entities.Word(res)) {
		r.fatal("routine '%s' returned tagged word %s", name, entities.Word(res))
	}
	if !r.Valid(res) {
		r.fatal("routine '%s' returned invalid handle %s", name, res)
	}
	return res
}

// NewExtension allocates a value of an installed extension type.
func (r *Runtime) NewExtension(typeName string, data any) entities.Handle {
	if _, ok := r.extensions.Lookup(typeName); !ok {
		r.RaiseError(fmt.Sprintf("unknown extension type '%s'", typeName))
	}
	return r.alloc(&object{typ: entities.TypeExtension, ext: data, extType: typeName}, 1)
}

func (r *Runtime) extensionType(name string) ports.ExtensionType {
	t, ok := r.extensions.Lookup(name)
	if !ok {
		r.fatal("extension type '%s' is not installed", name)
	}
	return t
}
