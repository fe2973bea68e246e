package entities

import (
	"fmt"
	"math"
)

// Handle is an opaque reference to a host runtime value.
// Handles produced by the host allocator are at least 2-byte aligned, so the
// low bit of a valid handle is always zero.
type Handle uintptr

// Word is the single machine word returned by a checked-native entry point.
// A zero low bit means the word is a valid Handle; a set low bit means the
// word is a tagged error whose payload must be interpreted by the unwrapper.
type Word uintptr

// String renders the handle as a hex address.
func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uintptr(h))
}

// String renders the raw word as a hex value.
func (w Word) String() string {
	return fmt.Sprintf("0x%x", uintptr(w))
}

// ValueType identifies the runtime type of a host value.
type ValueType int

// Host value types.
const (
	TypeNil ValueType = iota
	TypeChar
	TypeLogical
	TypeInteger
	TypeReal
	TypeString
	TypeList
	TypeExternalPtr
	TypeExtension
	TypeUnwindToken
)

var valueTypeNames = map[ValueType]string{
	TypeNil:         "NULL",
	TypeChar:        "char",
	TypeLogical:     "logical",
	TypeInteger:     "integer",
	TypeReal:        "numeric",
	TypeString:      "character",
	TypeList:        "list",
	TypeExternalPtr: "externalptr",
	TypeExtension:   "extension",
	TypeUnwindToken: "unwind token",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// IsVector reports whether values of this type carry indexed elements.
func (t ValueType) IsVector() bool {
	switch t {
	case TypeLogical, TypeInteger, TypeReal, TypeString, TypeList, TypeExtension:
		return true
	default:
		return false
	}
}

// Logical is a three-valued host boolean.
type Logical int32

// Logical values. NA is the host's missing marker.
const (
	False Logical = 0
	True  Logical = 1
	NA    Logical = -1 << 31
)

// NAInteger is the missing marker for integer vectors.
const NAInteger int32 = -1 << 31

// naRealBits is the bit pattern of the missing marker for real vectors.
const naRealBits = 0x7FF00000000007A2

// NAReal returns the missing marker for real vectors. It is a NaN with a
// fixed payload, so it must be tested with IsNAReal.
func NAReal() float64 {
	return math.Float64frombits(naRealBits)
}

// IsNAReal reports whether f is the missing marker rather than an ordinary
// NaN.
func IsNAReal(f float64) bool {
	return math.Float64bits(f) == naRealBits
}
