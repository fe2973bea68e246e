// Package abi implements the tagged-result envelope: a single machine word
// that is either a valid host handle or, with its low bit set, an error
// signal whose payload is interpreted by the unwrapper.
package abi

import (
	"fmt"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
)

// TaggedPointerMask is the bit that marks a word as an error.
const TaggedPointerMask uintptr = 1

// Aligned reports whether the handle leaves the tag bit free.
func Aligned(h entities.Handle) bool {
	return uintptr(h)&TaggedPointerMask == 0
}

// Ok converts a valid handle into an untagged result word.
func Ok(h entities.Handle) entities.Word {
	return entities.Word(h)
}

// TagError sets the tag bit on the handle of an error payload.
// Panics if the handle is not aligned: host allocations never are, so this
// indicates a corrupted handle.
func TagError(h entities.Handle) entities.Word {
	if !Aligned(h) {
		panic(fmt.Sprintf("abi: cannot tag misaligned handle %s", h))
	}
	return entities.Word(uintptr(h) | TaggedPointerMask)
}

// IsError reports whether the word carries the error tag.
func IsError(w entities.Word) bool {
	return uintptr(w)&TaggedPointerMask == TaggedPointerMask
}

// Untag clears the tag bit. The mask is total, so calling it on an untagged
// word returns the word unchanged.
func Untag(w entities.Word) entities.Handle {
	return entities.Handle(uintptr(w) &^ TaggedPointerMask)
}
