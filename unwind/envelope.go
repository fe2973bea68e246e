package unwind

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/errors"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/internal/abi"
)

func asAborted(err error) (*errors.AbortedError, bool) {
	var aborted *errors.AbortedError
	ok := stdErrors.As(err, &aborted)
	return aborted, ok
}

// EncodeError converts err into a tagged word. An aborted host call keeps
// its continuation token; any other error is carried as its message.
func EncodeError(rt ports.Runtime, err error) entities.Word {
	if aborted, ok := asAborted(err); ok {
		return abi.TagError(aborted.Token)
	}
	return abi.TagError(rt.MakeErrorString(err.Error()))
}

// UnwrapOrAbort returns the handle in an untagged word without touching the
// host. For a tagged word it raises the carried message as a host error, or
// resumes the suspended exit. In both cases it does not return.
func UnwrapOrAbort(rt ports.Runtime, w entities.Word) entities.Handle {
	if !abi.IsError(w) {
		return entities.Handle(w)
	}

	h := abi.Untag(w)
	switch t := rt.TypeOf(h); t {
	case entities.TypeChar:
		rt.RaiseError(rt.CharString(h))
	case entities.TypeUnwindToken:
		rt.ContinueUnwind(h)
	default:
		panic(&errors.ContractError{Message: fmt.Sprintf("tagged payload %s is %s", h, t)})
	}
	panic(&errors.ContractError{Message: "host returned from a non-local exit"})
}
