package wazero

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

func TestAppendU32(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, appendU32(nil, tt.v), "value %d", tt.v)
	}
}

func TestEncodeGuest_Empty(t *testing.T) {
	bin := EncodeGuest("host", nil)
	require.GreaterOrEqual(t, len(bin), len(wasmHeader))
	assert.Equal(t, wasmHeader, bin[:len(wasmHeader)])

	ctx := context.Background()
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer runtime.Close(ctx)

	_, err := runtime.CompileModule(ctx, bin)
	assert.NoError(t, err)
}

func TestEncodeGuest_Forwards(t *testing.T) {
	ctx := context.Background()
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer runtime.Close(ctx)

	_, err := runtime.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(a, b uint32) uint32 { return a - b }).
		Export("sub").
		NewFunctionBuilder().
		WithFunc(func(x uint64) uint64 { return x * 3 }).
		Export("triple").
		NewFunctionBuilder().
		WithFunc(func() {}).
		Export("noop").
		Instantiate(ctx)
	require.NoError(t, err)

	i32, i64 := api.ValueTypeI32, api.ValueTypeI64
	guest, err := instantiateGuest(ctx, runtime, "env", "env.guest", []GuestFunc{
		{Name: "sub", ParamTypes: []api.ValueType{i32, i32}, ResultTypes: []api.ValueType{i32}},
		{Name: "triple", ParamTypes: []api.ValueType{i64}, ResultTypes: []api.ValueType{i64}},
		{Name: "noop"},
	})
	require.NoError(t, err)

	res, err := guest.ExportedFunction("sub").Call(ctx, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint64{6}, res)

	res, err = guest.ExportedFunction("triple").Call(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint64{21}, res)

	res, err = guest.ExportedFunction("noop").Call(ctx)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestEncodeGuest_SignatureMismatch(t *testing.T) {
	ctx := context.Background()
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer runtime.Close(ctx)

	_, err := runtime.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(x uint64) uint64 { return x }).
		Export("id").
		Instantiate(ctx)
	require.NoError(t, err)

	_, err = instantiateGuest(ctx, runtime, "env", "env.guest", []GuestFunc{
		{Name: "id", ParamTypes: []api.ValueType{api.ValueTypeI32}, ResultTypes: []api.ValueType{api.ValueTypeI32}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to instantiate guest module "env.guest"`)
}
