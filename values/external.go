package values

import (
	"fmt"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/errors"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/unwind"
)

// NewExternalPointer hands v to the host as an external pointer.
func NewExternalPointer(rt ports.Runtime, v any) (entities.Handle, error) {
	return unwind.Protect(rt, func() entities.Handle {
		return rt.MakeExternalPtr(v)
	})
}

// ExternalPointer returns the value behind an external pointer.
func ExternalPointer[T any](rt ports.Runtime, h entities.Handle) (T, error) {
	var zero T
	if got := rt.TypeOf(h); got != entities.TypeExternalPtr {
		return zero, &errors.UnexpectedTypeError{Expected: entities.TypeExternalPtr.String(), Actual: got.String()}
	}
	addr := rt.ExternalPtrAddr(h)
	if addr == nil {
		return zero, errors.ErrInvalidPointer
	}
	v, ok := addr.(T)
	if !ok {
		return zero, &errors.UnexpectedTypeError{Expected: fmt.Sprintf("%T", zero), Actual: fmt.Sprintf("%T", addr)}
	}
	return v, nil
}

// TakeExternalPointer returns the value behind an external pointer and
// clears it. Later access fails with errors.ErrInvalidPointer.
func TakeExternalPointer[T any](rt ports.Runtime, h entities.Handle) (T, error) {
	v, err := ExternalPointer[T](rt, h)
	if err != nil {
		return v, err
	}
	rt.ClearExternalPtr(h)
	return v, nil
}
