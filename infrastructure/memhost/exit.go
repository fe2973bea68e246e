package memhost

import (
	"fmt"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
)

// ExitKind classifies a non-local exit.
type ExitKind int

// Exit kinds.
const (
	ExitError ExitKind = iota
	ExitMemory
	ExitInterrupt
)

func (k ExitKind) String() string {
	switch k {
	case ExitError:
		return "error"
	case ExitMemory:
		return "memory"
	case ExitInterrupt:
		return "interrupt"
	default:
		return fmt.Sprintf("exit(%d)", int(k))
	}
}

// Exit is the value carried by a non-local exit. It is returned as an error
// by TopLevelExec once the exit reaches the top level.
type Exit struct {
	Message string
	Kind    ExitKind
}

func (e *Exit) Error() string {
	if e.Kind == ExitInterrupt {
		return "interrupted"
	}
	return e.Message
}

// HostExit marks the value as a host exit.
func (e *Exit) HostExit() {}

// ToErrorDetail describes the exit for reporting outside the host.
func (e *Exit) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "host", Code: e.Kind.String()}
}

// FatalError is a host invariant violation. It is never intercepted.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	return "fatal host error: " + e.Message
}

// Unrecoverable marks the error as one boundary guards must not convert.
func (e *FatalError) Unrecoverable() {}

// TokenState is the lifecycle state of an unwind token.
type TokenState int

// Token states.
const (
	TokenLive TokenState = iota
	TokenReleased
	TokenContinued
)

func (s TokenState) String() string {
	switch s {
	case TokenLive:
		return "live"
	case TokenReleased:
		return "released"
	case TokenContinued:
		return "continued"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (r *Runtime) exit(e *Exit) {
	panic(e)
}

func (r *Runtime) fatal(format string, args ...any) {
	panic(&FatalError{Message: fmt.Sprintf(format, args...)})
}

// RaiseError performs an error exit carrying message. It never returns.
func (r *Runtime) RaiseError(message string) {
	r.exit(&Exit{Kind: ExitError, Message: message})
}

// Warning signals a warning according to the configured warn level.
func (r *Runtime) Warning(message string) {
	switch {
	case r.cfg.WarnLevel >= 2:
		r.RaiseError("(converted from warning) " + message)
	case r.cfg.WarnLevel == 1:
		r.WriteErr("Warning message:\n" + message + "\n")
	default:
		r.warnings = append(r.warnings, message)
	}
}

// Warnings returns and clears the collected warnings.
func (r *Runtime) Warnings() []string {
	w := r.warnings
	r.warnings = nil
	return w
}

// Interrupt requests a user interrupt, delivered at the next CheckInterrupt.
func (r *Runtime) Interrupt() {
	r.interrupted = true
}

// CheckInterrupt performs an interrupt exit if one is pending.
func (r *Runtime) CheckInterrupt() {
	if r.interrupted {
		r.interrupted = false
		r.exit(&Exit{Kind: ExitInterrupt})
	}
}

// MakeUnwindToken allocates a fresh continuation token. Token allocation
// is not subject to MaxObjects.
func (r *Runtime) MakeUnwindToken() entities.Handle {
	r.tokensMade++
	return r.allocRaw(&object{typ: entities.TypeUnwindToken, state: TokenLive})
}

// TokenState reports the lifecycle state of a token.
func (r *Runtime) TokenState(token entities.Handle) TokenState {
	return r.token(token).state
}

func (r *Runtime) token(h entities.Handle) *object {
	obj := r.get(h)
	if obj.typ != entities.TypeUnwindToken {
		r.fatal("%s is a %s, not an unwind token", h, obj.typ)
	}
	return obj
}

// run calls fn and intercepts a non-local exit. Any other panic passes
// through untouched.
func (r *Runtime) run(fn func() entities.Handle) (res entities.Handle, exit *Exit) {
	top := len(r.protect)
	defer func() {
		if v := recover(); v != nil {
			e, ok := v.(*Exit)
			if !ok {
				panic(v)
			}
			r.protect = r.protect[:top]
			exit = e
		}
	}()
	return fn(), nil
}

// ProtectCall runs fn(data). If fn exits non-locally the exit is recorded
// on token and onUnwind(ctx, true) is called. If onUnwind returns, the exit
// keeps unwinding.
func (r *Runtime) ProtectCall(fn ports.CallFunc, data any, onUnwind ports.CleanFunc, ctx any, token entities.Handle) entities.Handle {
	tok := r.token(token)
	if tok.state != TokenLive {
		r.fatal("unwind token %s is %s", token, tok.state)
	}

	res, exit := r.run(func() entities.Handle { return fn(data) })
	if exit == nil {
		onUnwind(ctx, false)
		return res
	}

	tok.exit = exit
	onUnwind(ctx, true)
	panic(exit)
}

// ContinueUnwind resumes the exit recorded on token and consumes the token.
// It never returns.
func (r *Runtime) ContinueUnwind(token entities.Handle) {
	tok := r.token(token)
	if tok.state != TokenLive {
		r.fatal("unwind token %s already %s", token, tok.state)
	}
	if tok.exit == nil {
		r.fatal("unwind token %s has no pending exit", token)
	}

	exit := tok.exit
	tok.exit = nil
	tok.state = TokenContinued
	r.release(token)
	r.exit(exit)
}

// TopLevelExec runs fn as a top-level evaluation. A non-local exit that
// reaches it is returned as *Exit. Collected warnings are flushed to the
// error console afterwards.
func (r *Runtime) TopLevelExec(fn func()) error {
	_, exit := r.run(func() entities.Handle {
		fn()
		return r.nilValue
	})
	r.flushWarnings()
	if exit != nil {
		r.logger.Debug("memhost: top-level exit", "kind", exit.Kind, "message", exit.Message)
		return exit
	}
	return nil
}

func (r *Runtime) flushWarnings() {
	warnings := r.Warnings()
	switch len(warnings) {
	case 0:
	case 1:
		r.WriteErr("Warning message:\n" + warnings[0] + "\n")
	default:
		r.WriteErr("Warning messages:\n")
		for i, w := range warnings {
			r.WriteErr(fmt.Sprintf("%d: %s\n", i+1, w))
		}
	}
}
