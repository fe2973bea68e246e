package routines

import (
	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
)

// Func is the checked native implementation of a routine. args has exactly
// the routine's arity.
type Func func(rt ports.Runtime, args []entities.Handle) (entities.Handle, error)

// Routine is a Func together with its fixed arity.
type Routine struct {
	Impl  Func
	Arity int
}

// Fn0 builds a routine taking no arguments.
func Fn0(f func(rt ports.Runtime) (entities.Handle, error)) Routine {
	return Routine{Arity: 0, Impl: func(rt ports.Runtime, _ []entities.Handle) (entities.Handle, error) {
		return f(rt)
	}}
}

// Fn1 builds a routine taking one argument.
func Fn1(f func(rt ports.Runtime, a entities.Handle) (entities.Handle, error)) Routine {
	return Routine{Arity: 1, Impl: func(rt ports.Runtime, args []entities.Handle) (entities.Handle, error) {
		return f(rt, args[0])
	}}
}

// Fn2 builds a routine taking two arguments.
func Fn2(f func(rt ports.Runtime, a, b entities.Handle) (entities.Handle, error)) Routine {
	return Routine{Arity: 2, Impl: func(rt ports.Runtime, args []entities.Handle) (entities.Handle, error) {
		return f(rt, args[0], args[1])
	}}
}

// Fn3 builds a routine taking three arguments.
func Fn3(f func(rt ports.Runtime, a, b, c entities.Handle) (entities.Handle, error)) Routine {
	return Routine{Arity: 3, Impl: func(rt ports.Runtime, args []entities.Handle) (entities.Handle, error) {
		return f(rt, args[0], args[1], args[2])
	}}
}

// Fn4 builds a routine taking four arguments.
func Fn4(f func(rt ports.Runtime, a, b, c, d entities.Handle) (entities.Handle, error)) Routine {
	return Routine{Arity: 4, Impl: func(rt ports.Runtime, args []entities.Handle) (entities.Handle, error) {
		return f(rt, args[0], args[1], args[2], args[3])
	}}
}

// NativeFunc is the checked native entry point of a routine. It never
// panics and never exits; errors are carried in the tagged word.
type NativeFunc func(rt ports.Runtime, args []entities.Handle) entities.Word
