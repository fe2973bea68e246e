package routines

import (
	"log/slog"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/unwind"
)

// Middleware wraps the Func of the routine called name.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	timing := func(name string, next routines.Func) routines.Func {
//	    return func(rt ports.Runtime, args []entities.Handle) (entities.Handle, error) {
//	        start := time.Now()
//	        defer func() { slog.Debug("routine timing", "name", name, "took", time.Since(start)) }()
//	        return next(rt, args)
//	    }
//	}
type Middleware func(name string, next Func) Func

// LoggingMiddleware logs routine invocations at debug level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(name string, next Func) Func {
		return func(rt ports.Runtime, args []entities.Handle) (entities.Handle, error) {
			logger.Debug("invoking routine", "name", name, "args", len(args))
			res, err := next(rt, args)
			if err != nil {
				logger.Debug("routine failed", "name", name, "error", err)
			} else {
				logger.Debug("routine completed", "name", name)
			}
			return res, err
		}
	}
}

// InterruptMiddleware honours a pending user interrupt before the routine
// runs. The check goes through unwind.Protect, so an interrupt surfaces as
// an aborted error.
func InterruptMiddleware() Middleware {
	return func(_ string, next Func) Func {
		return func(rt ports.Runtime, args []entities.Handle) (entities.Handle, error) {
			if err := checkInterrupt(rt); err != nil {
				return 0, err
			}
			return next(rt, args)
		}
	}
}

func checkInterrupt(rt ports.Runtime) error {
	_, err := unwind.Protect(rt, func() entities.Handle {
		rt.CheckInterrupt()
		return rt.NilValue()
	})
	return err
}
