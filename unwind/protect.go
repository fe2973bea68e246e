package unwind

import (
	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/errors"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
)

// jumpBuffer identifies one Protect invocation. Its address is the only
// thing a longJump is matched against.
type jumpBuffer struct {
	token entities.Handle
}

// longJump is the panic value the landing callback uses to return control
// to the Protect invocation owning buf.
type longJump struct {
	buf *jumpBuffer
}

func callProtected(data any) entities.Handle {
	return data.(func() entities.Handle)()
}

func landing(ctx any, jump bool) {
	if jump {
		panic(longJump{buf: ctx.(*jumpBuffer)})
	}
}

// Protect calls f, which may call host APIs that exit non-locally.
//
// If f returns, its handle is returned. If the host exits during f, the
// exit is suspended and Protect returns an *errors.AbortedError holding the
// continuation token. The token stays pinned until it is continued by
// UnwrapOrAbort or released by Discard.
//
// A Go panic raised by f is not intercepted.
func Protect(rt ports.Runtime, f func() entities.Handle) (entities.Handle, error) {
	token := rt.MakeUnwindToken()
	rt.Pin(token)

	res, jumped := trampoline(rt, f, token)
	if jumped {
		return 0, &errors.AbortedError{Token: token}
	}
	rt.Unpin(token)
	return res, nil
}

func trampoline(rt ports.Runtime, f func() entities.Handle, token entities.Handle) (res entities.Handle, jumped bool) {
	buf := &jumpBuffer{token: token}
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if lj, ok := v.(longJump); ok && lj.buf == buf {
			res, jumped = 0, true
			return
		}
		rt.Unpin(token)
		panic(v)
	}()

	return rt.ProtectCall(callProtected, f, landing, buf, token), false
}

// Discard releases the token of an aborted error that native code decided
// not to propagate. Other errors are ignored.
func Discard(rt ports.Runtime, err error) {
	if aborted, ok := asAborted(err); ok {
		rt.Unpin(aborted.Token)
	}
}
