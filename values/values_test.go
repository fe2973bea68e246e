package values_test

import (
	"bytes"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/errors"
	"github.com/reglet-dev/reglet-ffi/infrastructure/memhost"
	"github.com/reglet-dev/reglet-ffi/unwind"
	"github.com/reglet-dev/reglet-ffi/values"
)

func newRuntime(opts ...memhost.Option) *memhost.Runtime {
	return memhost.New(append([]memhost.Option{memhost.WithErrorOutput(&bytes.Buffer{})}, opts...)...)
}

func TestScalarReaders(t *testing.T) {
	rt := newRuntime()

	i, err := values.NewInt(rt, 42)
	require.NoError(t, err)
	got, err := values.ScalarInt(rt, i)
	require.NoError(t, err)
	assert.Equal(t, int32(42), got)

	r, err := values.NewReal(rt, 2.5)
	require.NoError(t, err)
	f, err := values.ScalarReal(rt, r)
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)

	n, err := values.ScalarNumeric(rt, i)
	require.NoError(t, err)
	assert.Equal(t, 42.0, n)

	l, err := values.NewLogical(rt, true)
	require.NoError(t, err)
	b, err := values.ScalarLogical(rt, l)
	require.NoError(t, err)
	assert.True(t, b)

	s, err := values.NewString(rt, "hello")
	require.NoError(t, err)
	str, err := values.ScalarString(rt, s)
	require.NoError(t, err)
	assert.Equal(t, "hello", str)
}

func TestScalarReaders_Errors(t *testing.T) {
	rt := newRuntime()

	s, err := values.NewString(rt, "x")
	require.NoError(t, err)
	_, err = values.ScalarInt(rt, s)
	var typeErr *errors.UnexpectedTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "Must be integer, not character", err.Error())
	assert.Equal(t, "Argument `x` must be integer, not character", errors.WithArgName(err, "x").Error())

	two, err := values.NewInt(rt, 1, 2)
	require.NoError(t, err)
	_, err = values.ScalarInt(rt, two)
	assert.ErrorIs(t, err, errors.ErrNotScalar)

	na, err := values.NewInt(rt, entities.NAInteger)
	require.NoError(t, err)
	_, err = values.ScalarInt(rt, na)
	assert.ErrorIs(t, err, errors.ErrNotScalar)

	naReal, err := values.NewReal(rt, entities.NAReal())
	require.NoError(t, err)
	_, err = values.ScalarReal(rt, naReal)
	assert.ErrorIs(t, err, errors.ErrNotScalar)

	naLgl := rt.AllocVector(entities.TypeLogical, 1)
	rt.SetLogicalElt(naLgl, 0, entities.NA)
	_, err = values.ScalarLogical(rt, naLgl)
	assert.ErrorIs(t, err, errors.ErrNotScalar)

	naStr := rt.AllocVector(entities.TypeString, 1)
	rt.SetStringElt(naStr, 0, rt.NAString())
	_, err = values.ScalarString(rt, naStr)
	assert.ErrorIs(t, err, errors.ErrNotScalar)

	_, err = values.ScalarNumeric(rt, s)
	assert.Equal(t, "Must be integer or numeric, not character", err.Error())
}

func TestStrings(t *testing.T) {
	rt := newRuntime()

	h, err := values.NewStrings(rt, []string{"a", "b"})
	require.NoError(t, err)
	rt.SetStringElt(h, 1, rt.NAString())

	got, ok, err := values.Strings(rt, h)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", ""}, got)
	assert.Equal(t, []bool{true, false}, ok)
	assert.Equal(t, 0, rt.Stats().Pinned)

	_, _, err = values.Strings(rt, rt.NilValue())
	assert.Error(t, err)
}

func TestNewList(t *testing.T) {
	rt := newRuntime()
	a, err := values.NewInt(rt, 1)
	require.NoError(t, err)
	b, err := values.NewString(rt, "b")
	require.NoError(t, err)

	list, err := values.NewList(rt, a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Length(list))
	assert.Equal(t, b, rt.ListElt(list, 1))
	assert.Equal(t, 0, rt.Stats().Pinned)
}

func TestConstructors_AllocationFailure(t *testing.T) {
	cfg := entities.NewRuntimeConfig(entities.WithMaxObjects(6))
	rt := newRuntime(memhost.WithConfig(cfg))

	_, err := values.NewStrings(rt, []string{"a", "b", "c", "d", "e"})
	var aborted *errors.AbortedError
	require.ErrorAs(t, err, &aborted)

	unwind.Discard(rt, err)
	stats := rt.Stats()
	assert.Equal(t, 0, stats.Pinned, "string vector and token released")
	assert.Equal(t, 0, stats.LiveTokens)

	err = rt.TopLevelExec(func() {
		_, err := values.NewInt(rt, make([]int32, 3)...)
		require.NoError(t, err)
	})
	assert.NoError(t, err, "heap recovers after collection")
}

type person struct {
	Name string
}

func TestExternalPointers(t *testing.T) {
	rt := newRuntime()

	h, err := values.NewExternalPointer(rt, &person{Name: "ann"})
	require.NoError(t, err)

	p, err := values.ExternalPointer[*person](rt, h)
	require.NoError(t, err)
	assert.Equal(t, "ann", p.Name)

	_, err = values.ExternalPointer[*bytes.Buffer](rt, h)
	var typeErr *errors.UnexpectedTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "*bytes.Buffer", typeErr.Expected)
	assert.Equal(t, "*values_test.person", typeErr.Actual)

	taken, err := values.TakeExternalPointer[*person](rt, h)
	require.NoError(t, err)
	assert.Same(t, p, taken)

	_, err = values.ExternalPointer[*person](rt, h)
	assert.True(t, stdErrors.Is(err, errors.ErrInvalidPointer))
	assert.Equal(t, "Argument `self` is already consumed or deleted", errors.WithArgName(err, "self").Error())

	_, err = values.ExternalPointer[*person](rt, rt.NilValue())
	assert.ErrorAs(t, err, &typeErr)
}
