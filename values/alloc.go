package values

import (
	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/unwind"
)

// NewInt allocates an integer vector holding vs.
func NewInt(rt ports.Runtime, vs ...int32) (entities.Handle, error) {
	return unwind.Protect(rt, func() entities.Handle {
		h := rt.AllocVector(entities.TypeInteger, len(vs))
		for i, v := range vs {
			rt.SetIntegerElt(h, i, v)
		}
		return h
	})
}

// NewReal allocates a real vector holding vs.
func NewReal(rt ports.Runtime, vs ...float64) (entities.Handle, error) {
	return unwind.Protect(rt, func() entities.Handle {
		h := rt.AllocVector(entities.TypeReal, len(vs))
		for i, v := range vs {
			rt.SetRealElt(h, i, v)
		}
		return h
	})
}

// NewLogical allocates a logical vector holding vs.
func NewLogical(rt ports.Runtime, vs ...bool) (entities.Handle, error) {
	return unwind.Protect(rt, func() entities.Handle {
		h := rt.AllocVector(entities.TypeLogical, len(vs))
		for i, v := range vs {
			l := entities.False
			if v {
				l = entities.True
			}
			rt.SetLogicalElt(h, i, l)
		}
		return h
	})
}

// NewString allocates a length-one character vector.
func NewString(rt ports.Runtime, s string) (entities.Handle, error) {
	return NewStrings(rt, []string{s})
}

// NewStrings allocates a character vector holding ss.
func NewStrings(rt ports.Runtime, ss []string) (entities.Handle, error) {
	var vec entities.Handle
	h, err := unwind.Protect(rt, func() entities.Handle {
		vec = rt.AllocVector(entities.TypeString, len(ss))
		rt.Pin(vec)
		for i, s := range ss {
			rt.SetStringElt(vec, i, rt.MakeChar(s))
		}
		return vec
	})
	if vec != 0 {
		rt.Unpin(vec)
	}
	return h, err
}

// NewList allocates a list holding elems. elems stay pinned while the list
// is allocated.
func NewList(rt ports.Runtime, elems ...entities.Handle) (entities.Handle, error) {
	for _, e := range elems {
		rt.Pin(e)
	}
	defer func() {
		for _, e := range elems {
			rt.Unpin(e)
		}
	}()

	return unwind.Protect(rt, func() entities.Handle {
		h := rt.AllocVector(entities.TypeList, len(elems))
		for i, e := range elems {
			rt.SetListElt(h, i, e)
		}
		return h
	})
}
