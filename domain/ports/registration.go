package ports

import "github.com/reglet-dev/reglet-ffi/domain/entities"

// Adapter is the fixed-shape entry point the host calls. It returns a valid
// handle or leaves through the host's own exit machinery.
type Adapter func(rt Runtime, args []entities.Handle) entities.Handle

// CallEntry is one row of a registration table.
type CallEntry struct {
	Fn    Adapter `validate:"required"`
	Name  string  `validate:"required,max=256"`
	Arity int     `validate:"gte=0,lte=65"`
}

// LoadContext is handed to a native package while it is being loaded.
type LoadContext interface {
	PackageName() string

	// RegisterRoutines installs the package's table. It may be called once.
	RegisterRoutines(entries []CallEntry) error

	// UseDynamicSymbols controls name-based lookup of unregistered symbols.
	UseDynamicSymbols(enabled bool)

	// InstallExtensionType makes an extension value type available.
	InstallExtensionType(t ExtensionType) error
}

// ExtensionType is a custom value type whose behaviour is implemented
// natively. Length and Elt are host-facing adapters: they return valid
// results or exit through the host.
type ExtensionType struct {
	Model  any
	Length func(rt Runtime, data any) int
	Elt    func(rt Runtime, data any, i int) entities.Handle
	Name   string
}

// ExtensionRegistry stores installed extension types.
type ExtensionRegistry interface {
	Register(t ExtensionType) error
	Lookup(name string) (ExtensionType, bool)
	GetSchema(name string) (string, bool)
	List() []string
}

// ConfigParser decodes a runtime configuration document.
type ConfigParser interface {
	Parse(data []byte) (*entities.RuntimeConfig, error)
}
