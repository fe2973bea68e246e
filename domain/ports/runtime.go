package ports

import "github.com/reglet-dev/reglet-ffi/domain/entities"

// CallFunc is the function run by a protected call. data is opaque to the
// host and passed through unchanged.
type CallFunc func(data any) entities.Handle

// CleanFunc is called by ProtectCall once the protected function finished.
// jump is true when the host intercepted a non-local exit; the function may
// then transfer control back to its own recovery point. If it returns, the
// host keeps unwinding.
type CleanFunc func(ctx any, jump bool)

// Unwinder exposes the host's non-local exit interception primitives.
type Unwinder interface {
	// ProtectCall runs fn(data). If a non-local exit occurs during the call
	// it is attached to token and onUnwind(ctx, true) is invoked instead of
	// propagating further.
	ProtectCall(fn CallFunc, data any, onUnwind CleanFunc, ctx any, token entities.Handle) entities.Handle

	// MakeUnwindToken allocates a fresh, unpinned continuation token.
	MakeUnwindToken() entities.Handle

	// ContinueUnwind resumes the exit recorded on token. It never returns.
	ContinueUnwind(token entities.Handle)
}

// Protector pins values against collection.
type Protector interface {
	Pin(h entities.Handle)
	Unpin(h entities.Handle)
}

// Raiser exposes the host's error reporting.
type Raiser interface {
	// RaiseError performs the host's error exit with message. It never returns.
	RaiseError(message string)

	// Warning signals a warning. Depending on host settings it may exit.
	Warning(message string)

	// CheckInterrupt performs an interrupt exit if the user asked for one.
	CheckInterrupt()
}

// Heap is the subset of the host object model the boundary needs.
// Functions documented as "may exit" can perform a non-local exit and must
// be called through the trampoline from native code.
type Heap interface {
	NilValue() entities.Handle
	TypeOf(h entities.Handle) entities.ValueType
	Length(h entities.Handle) int

	// AllocVector allocates a vector of type t and length n. May exit.
	AllocVector(t entities.ValueType, n int) entities.Handle
	// MakeChar allocates a host string. May exit.
	MakeChar(s string) entities.Handle
	// MakeErrorString allocates the payload of a Message error. It bypasses
	// allocation limits and never exits.
	MakeErrorString(s string) entities.Handle
	CharString(h entities.Handle) string
	NAString() entities.Handle

	IntegerElt(h entities.Handle, i int) int32
	SetIntegerElt(h entities.Handle, i int, v int32)
	RealElt(h entities.Handle, i int) float64
	SetRealElt(h entities.Handle, i int, v float64)
	LogicalElt(h entities.Handle, i int) entities.Logical
	SetLogicalElt(h entities.Handle, i int, v entities.Logical)
	StringElt(h entities.Handle, i int) entities.Handle
	SetStringElt(h entities.Handle, i int, v entities.Handle)
	ListElt(h entities.Handle, i int) entities.Handle
	SetListElt(h entities.Handle, i int, v entities.Handle)

	// MakeExternalPtr wraps a native value. May exit.
	MakeExternalPtr(v any) entities.Handle
	// ExternalPtrAddr returns the wrapped value, or nil once cleared.
	ExternalPtrAddr(h entities.Handle) any
	ClearExternalPtr(h entities.Handle)

	// NewExtension creates a value of an installed extension type. May exit.
	NewExtension(typeName string, data any) entities.Handle
	ExtensionData(h entities.Handle) any
}

// Console is the host's output channel.
type Console interface {
	WriteOut(s string)
	WriteErr(s string)
}

// Runtime is everything checked-native code may call on the host.
type Runtime interface {
	Unwinder
	Protector
	Raiser
	Heap
	Console

	Config() entities.RuntimeConfig
}

// HostRuntime is the host side: it evaluates top-level calls and loads
// native packages.
type HostRuntime interface {
	Runtime

	// TopLevelExec runs fn and returns any non-local exit as an error.
	TopLevelExec(fn func()) error

	// LoadLibrary creates the module-load context for a native package.
	LoadLibrary(pkg string) (LoadContext, error)

	// DotCall invokes a registered routine. May exit.
	DotCall(pkg, name string, args ...entities.Handle) entities.Handle
}
