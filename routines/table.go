package routines

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/unwind"
)

var symbolPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var tableValidator = newTableValidator()

func newTableValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
		return symbolPattern.MatchString(fl.Field().String())
	})
	return v
}

type routineSpec struct {
	Impl  Func   `validate:"required"`
	Name  string `validate:"required,max=256,symbol"`
	Arity int    `validate:"gte=0,lte=65"`
}

type packageSpec struct {
	Name string `validate:"required,max=256,symbol"`
}

// InitFunc runs once while the package is loaded, after its routines are
// registered.
type InitFunc func(rt ports.Runtime, lc ports.LoadContext) error

// InitStep is a named InitFunc.
type InitStep struct {
	Fn   InitFunc
	Name string
}

// Table is an immutable registration table.
type Table struct {
	natives map[string]NativeFunc
	arity   map[string]int
	pkg     string
	names   []string // sorted for consistent iteration
	inits   []InitStep
	types   []string
}

// TableOption configures a Table under construction.
type TableOption func(*tableBuilder)

type tableBuilder struct {
	routines   map[string]Routine
	middleware []Middleware
	inits      []InitStep
	types      []string
	errors     []error
}

// NewTable builds the registration table of pkg. Returns an error if a
// name is invalid or registered twice.
func NewTable(pkg string, opts ...TableOption) (*Table, error) {
	if err := tableValidator.Struct(packageSpec{Name: pkg}); err != nil {
		return nil, fmt.Errorf("invalid package name %q: %w", pkg, err)
	}

	b := &tableBuilder{routines: make(map[string]Routine)}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}

	names := make([]string, 0, len(b.routines))
	for name := range b.routines {
		names = append(names, name)
	}
	sort.Strings(names)

	t := &Table{
		pkg:     pkg,
		names:   names,
		natives: make(map[string]NativeFunc, len(names)),
		arity:   make(map[string]int, len(names)),
		inits:   b.inits,
		types:   b.types,
	}
	for name, r := range b.routines {
		impl := r.Impl
		// Apply middleware in reverse order so first middleware wraps outermost
		for i := len(b.middleware) - 1; i >= 0; i-- {
			impl = b.middleware[i](name, impl)
		}
		t.natives[name] = native(impl)
		t.arity[name] = r.Arity
	}
	return t, nil
}

func native(impl Func) NativeFunc {
	return func(rt ports.Runtime, args []entities.Handle) entities.Word {
		return unwind.Guard(rt, func() (entities.Handle, error) {
			return impl(rt, args)
		})
	}
}

func adapter(n NativeFunc) ports.Adapter {
	return func(rt ports.Runtime, args []entities.Handle) entities.Handle {
		return unwind.UnwrapOrAbort(rt, n(rt, args))
	}
}

// WithRoutine registers r under name.
func WithRoutine(name string, r Routine) TableOption {
	return func(b *tableBuilder) {
		if err := tableValidator.Struct(routineSpec{Name: name, Arity: r.Arity, Impl: r.Impl}); err != nil {
			b.errors = append(b.errors, fmt.Errorf("invalid routine %q: %w", name, err))
			return
		}
		if _, exists := b.routines[name]; exists {
			b.errors = append(b.errors, fmt.Errorf("duplicate routine name: %q", name))
			return
		}
		b.routines[name] = r
	}
}

// WithMiddleware adds middleware to every routine.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) TableOption {
	return func(b *tableBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// WithInit appends an init step. Steps run in declaration order.
func WithInit(name string, fn InitFunc) TableOption {
	return func(b *tableBuilder) {
		if name == "" || fn == nil {
			b.errors = append(b.errors, fmt.Errorf("init step needs a name and a function"))
			return
		}
		for _, s := range b.inits {
			if s.Name == name {
				b.errors = append(b.errors, fmt.Errorf("duplicate init step: %q", name))
				return
			}
		}
		b.inits = append(b.inits, InitStep{Name: name, Fn: fn})
	}
}

// WithExtensionType adds an init step installing t.
func WithExtensionType(t ports.ExtensionType) TableOption {
	return func(b *tableBuilder) {
		WithInit("extension:"+t.Name, func(_ ports.Runtime, lc ports.LoadContext) error {
			return lc.InstallExtensionType(t)
		})(b)
		b.types = append(b.types, t.Name)
	}
}

// Package returns the package name.
func (t *Table) Package() string {
	return t.pkg
}

// Names returns the sorted routine names.
func (t *Table) Names() []string {
	result := make([]string, len(t.names))
	copy(result, t.names)
	return result
}

// Arity returns the arity of the routine called name.
func (t *Table) Arity(name string) (int, bool) {
	n, ok := t.arity[name]
	return n, ok
}

// Native returns the checked entry point of the routine called name.
func (t *Table) Native(name string) (NativeFunc, bool) {
	n, ok := t.natives[name]
	return n, ok
}

// Adapter returns the host-facing entry point of the routine called name.
func (t *Table) Adapter(name string) (ports.Adapter, bool) {
	n, ok := t.natives[name]
	if !ok {
		return nil, false
	}
	return adapter(n), true
}

// Entries returns the table rows in name order.
func (t *Table) Entries() []ports.CallEntry {
	entries := make([]ports.CallEntry, 0, len(t.names))
	for _, name := range t.names {
		entries = append(entries, ports.CallEntry{Name: name, Fn: adapter(t.natives[name]), Arity: t.arity[name]})
	}
	return entries
}

// Inits returns the init steps in declaration order.
func (t *Table) Inits() []InitStep {
	result := make([]InitStep, len(t.inits))
	copy(result, t.inits)
	return result
}

// Manifest describes the table.
func (t *Table) Manifest() entities.Manifest {
	m := entities.Manifest{Package: t.pkg}
	for _, name := range t.names {
		m.Routines = append(m.Routines, entities.RoutineInfo{Name: name, Arity: t.arity[name]})
	}
	for _, s := range t.inits {
		m.InitSteps = append(m.InitSteps, s.Name)
	}
	for _, name := range t.types {
		m.Types = append(m.Types, entities.ExtensionInfo{Name: name})
	}
	return m
}

// Init is the package's load entry point. It registers the table, turns
// off lookup of unregistered symbols and runs the init steps. It must be
// called by the host; failures leave through the host's error exit.
func (t *Table) Init(rt ports.Runtime, lc ports.LoadContext) {
	if err := lc.RegisterRoutines(t.Entries()); err != nil {
		rt.RaiseError(err.Error())
	}
	lc.UseDynamicSymbols(false)

	for _, step := range t.inits {
		fn := step.Fn
		w := unwind.Guard(rt, func() (entities.Handle, error) {
			if err := fn(rt, lc); err != nil {
				return 0, err
			}
			return rt.NilValue(), nil
		})
		unwind.UnwrapOrAbort(rt, w)
	}
}
