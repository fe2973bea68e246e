// Package routines builds the registration table of a native package.
//
// A routine is a Go function returning (Handle, error). The table wraps
// each one twice: the native layer runs it under unwind.Guard and yields a
// tagged word, and the adapter layer unwraps that word with
// unwind.UnwrapOrAbort so the host only ever sees a valid handle or its own
// non-local exit.
//
// Tables are immutable once built:
//
//	table, err := routines.NewTable("demo",
//	    routines.WithMiddleware(routines.LoggingMiddleware(logger)),
//	    routines.WithRoutine("to_upper", routines.Fn1(toUpper)),
//	    routines.WithInit("logger", log.InitStep()),
//	)
package routines
