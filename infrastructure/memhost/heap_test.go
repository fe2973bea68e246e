package memhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/domain/ports"
	"github.com/reglet-dev/reglet-ffi/internal/abi"
)

func TestHeap_HandlesAreAligned(t *testing.T) {
	rt, _, _ := newTestRuntime()
	for i := 0; i < 16; i++ {
		assert.True(t, abi.Aligned(rt.MakeChar("x")))
	}
	assert.True(t, abi.Aligned(rt.MakeUnwindToken()))
	assert.True(t, abi.Aligned(rt.MakeErrorString("e")))
}

func TestHeap_Vectors(t *testing.T) {
	rt, _, _ := newTestRuntime()

	ints := rt.AllocVector(entities.TypeInteger, 2)
	rt.SetIntegerElt(ints, 1, 42)
	assert.Equal(t, int32(42), rt.IntegerElt(ints, 1))
	assert.Equal(t, 2, rt.Length(ints))

	reals := rt.AllocVector(entities.TypeReal, 1)
	rt.SetRealElt(reals, 0, 1.5)
	assert.Equal(t, 1.5, rt.RealElt(reals, 0))

	lgls := rt.AllocVector(entities.TypeLogical, 1)
	rt.SetLogicalElt(lgls, 0, entities.NA)
	assert.Equal(t, entities.NA, rt.LogicalElt(lgls, 0))

	strs := rt.AllocVector(entities.TypeString, 2)
	assert.Equal(t, "", rt.CharString(rt.StringElt(strs, 0)))
	rt.SetStringElt(strs, 1, rt.NAString())
	assert.True(t, rt.IsNA(rt.StringElt(strs, 1)))

	list := rt.AllocVector(entities.TypeList, 1)
	assert.Equal(t, rt.NilValue(), rt.ListElt(list, 0))
	rt.SetListElt(list, 0, ints)
	assert.Equal(t, ints, rt.ListElt(list, 0))
	assert.Equal(t, entities.TypeList, rt.TypeOf(list))
}

func TestHeap_AccessorErrors(t *testing.T) {
	rt, _, _ := newTestRuntime()
	ints := rt.AllocVector(entities.TypeInteger, 1)

	err := rt.TopLevelExec(func() { rt.RealElt(ints, 0) })
	assert.Equal(t, "REAL_ELT() can only be applied to a 'numeric', not a 'integer'", exitOf(t, err).Message)

	err = rt.TopLevelExec(func() { rt.IntegerElt(ints, 3) })
	assert.Contains(t, exitOf(t, err).Message, "attempt to access index 3/1")

	err = rt.TopLevelExec(func() { rt.AllocVector(entities.TypeInteger, -1) })
	assert.Equal(t, "negative length vectors are not allowed", exitOf(t, err).Message)
}

func TestHeap_CollectFreesUnreachable(t *testing.T) {
	rt, _, _ := newTestRuntime()

	kept := rt.MakeChar("kept")
	rt.Pin(kept)
	list := rt.AllocVector(entities.TypeList, 1)
	child := rt.MakeChar("child")
	rt.SetListElt(list, 0, child)
	rt.Protect(list)
	garbage := rt.MakeChar("garbage")

	freed := rt.Collect()
	assert.Equal(t, 1, freed)
	assert.True(t, rt.Valid(kept))
	assert.True(t, rt.Valid(child))
	assert.False(t, rt.Valid(garbage))
	assertFatal(t, func() { rt.CharString(garbage) })

	rt.Unprotect(1)
	rt.Unpin(kept)
	rt.Collect()
	assert.False(t, rt.Valid(kept))
	assert.False(t, rt.Valid(child))
	assert.True(t, rt.Valid(rt.NilValue()))
	assert.True(t, rt.Valid(rt.NAString()))
}

func TestHeap_PinCounts(t *testing.T) {
	rt, _, _ := newTestRuntime()
	h := rt.MakeChar("x")
	rt.Pin(h)
	rt.Pin(h)
	rt.Unpin(h)
	rt.Collect()
	assert.True(t, rt.Valid(h))
	rt.Unpin(h)
	rt.Collect()
	assert.False(t, rt.Valid(h))
}

func TestHeap_AllocationLimit(t *testing.T) {
	cfg := entities.NewRuntimeConfig(entities.WithMaxObjects(5))
	rt, _, _ := newTestRuntime(WithConfig(cfg))

	err := rt.TopLevelExec(func() {
		for i := 0; i < 10; i++ {
			rt.Protect(rt.MakeChar("x"))
		}
	})
	exit := exitOf(t, err)
	assert.Equal(t, ExitMemory, exit.Kind)
	assert.Contains(t, exit.Message, "cannot allocate vector")

	// Unprotected garbage is collected instead of failing.
	require.NoError(t, rt.TopLevelExec(func() {
		for i := 0; i < 10; i++ {
			rt.MakeChar("x")
		}
	}))
	assert.Positive(t, rt.Stats().Collected)

	// Error payloads and tokens bypass the limit.
	for i := 0; i < 10; i++ {
		rt.Pin(rt.MakeErrorString("e"))
	}
	assert.NotPanics(t, func() { rt.MakeUnwindToken() })
}

func TestHeap_ProtectStackOverflow(t *testing.T) {
	cfg := entities.NewRuntimeConfig()
	cfg.ProtectStackSize = 2
	rt, _, _ := newTestRuntime(WithConfig(cfg))

	err := rt.TopLevelExec(func() {
		for i := 0; i < 3; i++ {
			rt.Protect(rt.NilValue())
		}
	})
	assert.Equal(t, "protect(): protection stack overflow", exitOf(t, err).Message)
}

func TestHeap_ExternalPointers(t *testing.T) {
	rt, _, _ := newTestRuntime()
	type person struct{ name string }

	p := rt.MakeExternalPtr(&person{name: "a"})
	assert.Equal(t, entities.TypeExternalPtr, rt.TypeOf(p))
	assert.Equal(t, "a", rt.ExternalPtrAddr(p).(*person).name)

	rt.ClearExternalPtr(p)
	assert.Nil(t, rt.ExternalPtrAddr(p))
}

func TestHeap_Extensions(t *testing.T) {
	rt, _, _ := newTestRuntime()
	lc, err := rt.LoadLibrary("demo")
	require.NoError(t, err)

	require.NoError(t, lc.InstallExtensionType(ports.ExtensionType{
		Name:   "seq",
		Length: func(_ ports.Runtime, data any) int { return data.(int) },
		Elt: func(rt ports.Runtime, _ any, i int) entities.Handle {
			v := rt.AllocVector(entities.TypeInteger, 1)
			rt.SetIntegerElt(v, 0, int32(i+1))
			return v
		},
	}))
	assert.Error(t, lc.InstallExtensionType(ports.ExtensionType{Name: "broken"}))

	seq := rt.NewExtension("seq", 3)
	assert.Equal(t, 3, rt.Length(seq))
	assert.Equal(t, int32(3), rt.IntegerElt(rt.ListElt(seq, 2), 0))
	assert.Equal(t, 3, rt.ExtensionData(seq))
	assert.Equal(t, "seq", rt.ExtensionTypeName(seq))

	err = rt.TopLevelExec(func() { rt.NewExtension("nope", nil) })
	assert.Equal(t, "unknown extension type 'nope'", exitOf(t, err).Message)
}
