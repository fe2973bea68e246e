package values

import (
	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/errors"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
)

func expectScalar(rt ports.Runtime, h entities.Handle, want entities.ValueType) error {
	if got := rt.TypeOf(h); got != want {
		return &errors.UnexpectedTypeError{Expected: want.String(), Actual: got.String()}
	}
	if rt.Length(h) != 1 {
		return errors.ErrNotScalar
	}
	return nil
}

// ScalarInt reads a length-one, non-missing integer.
func ScalarInt(rt ports.Runtime, h entities.Handle) (int32, error) {
	if err := expectScalar(rt, h, entities.TypeInteger); err != nil {
		return 0, err
	}
	v := rt.IntegerElt(h, 0)
	if v == entities.NAInteger {
		return 0, errors.ErrNotScalar
	}
	return v, nil
}

// ScalarReal reads a length-one, non-missing real.
func ScalarReal(rt ports.Runtime, h entities.Handle) (float64, error) {
	if err := expectScalar(rt, h, entities.TypeReal); err != nil {
		return 0, err
	}
	v := rt.RealElt(h, 0)
	if entities.IsNAReal(v) {
		return 0, errors.ErrNotScalar
	}
	return v, nil
}

// ScalarNumeric reads a length-one, non-missing integer or real as float64.
func ScalarNumeric(rt ports.Runtime, h entities.Handle) (float64, error) {
	switch rt.TypeOf(h) {
	case entities.TypeInteger:
		v, err := ScalarInt(rt, h)
		return float64(v), err
	case entities.TypeReal:
		return ScalarReal(rt, h)
	default:
		return 0, &errors.UnexpectedTypeError{Expected: "integer or numeric", Actual: rt.TypeOf(h).String()}
	}
}

// ScalarLogical reads a length-one, non-missing logical.
func ScalarLogical(rt ports.Runtime, h entities.Handle) (bool, error) {
	if err := expectScalar(rt, h, entities.TypeLogical); err != nil {
		return false, err
	}
	switch rt.LogicalElt(h, 0) {
	case entities.NA:
		return false, errors.ErrNotScalar
	case entities.False:
		return false, nil
	default:
		return true, nil
	}
}

// ScalarString reads a length-one, non-missing character vector.
func ScalarString(rt ports.Runtime, h entities.Handle) (string, error) {
	if err := expectScalar(rt, h, entities.TypeString); err != nil {
		return "", err
	}
	c := rt.StringElt(h, 0)
	if c == rt.NAString() {
		return "", errors.ErrNotScalar
	}
	return rt.CharString(c), nil
}

// Strings reads a character vector. Missing elements are reported as
// ok=false in the parallel slice.
func Strings(rt ports.Runtime, h entities.Handle) ([]string, []bool, error) {
	if got := rt.TypeOf(h); got != entities.TypeString {
		return nil, nil, &errors.UnexpectedTypeError{Expected: entities.TypeString.String(), Actual: got.String()}
	}
	n := rt.Length(h)
	out := make([]string, n)
	ok := make([]bool, n)
	na := rt.NAString()
	for i := 0; i < n; i++ {
		c := rt.StringElt(h, i)
		if c == na {
			continue
		}
		out[i], ok[i] = rt.CharString(c), true
	}
	return out, ok, nil
}
