package abi

import (
	"testing"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/stretchr/testify/assert"
)

func TestTagErrorRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		handle entities.Handle
	}{
		{name: "zero", handle: 0},
		{name: "8-byte aligned", handle: 0x1000},
		{name: "2-byte aligned", handle: 0x2},
		{name: "high address", handle: entities.Handle(^uintptr(0) &^ 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := TagError(tt.handle)
			assert.True(t, IsError(w), "tagged word must report error")
			assert.Equal(t, tt.handle, Untag(w), "untag must restore the handle")
		})
	}
}

func TestOk_IsNotError(t *testing.T) {
	for _, h := range []entities.Handle{0, 8, 16, 0xdeadbee0} {
		w := Ok(h)
		assert.False(t, IsError(w))
		assert.Equal(t, h, Untag(w), "untag is a no-op on untagged words")
	}
}

func TestTagError_PanicsOnMisalignedHandle(t *testing.T) {
	assert.Panics(t, func() {
		TagError(entities.Handle(0x1001))
	})
}

func TestAligned(t *testing.T) {
	assert.True(t, Aligned(0x10))
	assert.False(t, Aligned(0x11))
}

func BenchmarkTagUntag(b *testing.B) {
	h := entities.Handle(0x1000)
	for i := 0; i < b.N; i++ {
		w := TagError(h)
		if IsError(w) {
			h = Untag(w)
		}
	}
}
