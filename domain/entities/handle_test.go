package entities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueType_String(t *testing.T) {
	tests := []struct {
		typ  ValueType
		want string
	}{
		{TypeNil, "NULL"},
		{TypeInteger, "integer"},
		{TypeReal, "numeric"},
		{TypeString, "character"},
		{TypeUnwindToken, "unwind token"},
		{ValueType(99), "unknown(99)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}

func TestValueType_IsVector(t *testing.T) {
	assert.True(t, TypeInteger.IsVector())
	assert.True(t, TypeExtension.IsVector())
	assert.False(t, TypeChar.IsVector())
	assert.False(t, TypeUnwindToken.IsVector())
}

func TestNewRuntimeConfig(t *testing.T) {
	cfg := NewRuntimeConfig(WithMaxObjects(10), WithWarnLevel(2), WithMaxObjects(-1))
	assert.Equal(t, 10, cfg.MaxObjects)
	assert.Equal(t, 2, cfg.WarnLevel)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 50000, cfg.ProtectStackSize)
}

func TestErrorDetail_Error(t *testing.T) {
	d := NewErrorDetail("host", "cannot allocate vector").WithCode("memory")
	assert.Equal(t, "host: cannot allocate vector [memory]", d.Error())

	var nilDetail *ErrorDetail
	assert.Equal(t, "", nilDetail.Error())
}

func TestNAReal(t *testing.T) {
	assert.True(t, IsNAReal(NAReal()))
	assert.True(t, math.IsNaN(NAReal()))
	assert.False(t, IsNAReal(math.NaN()))
	assert.False(t, IsNAReal(1.5))
}
