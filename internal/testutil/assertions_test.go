package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-ffi/internal/abi"
)

func TestNewHost_CapturesOutput(t *testing.T) {
	h := NewHost()
	h.WriteOut("out")
	h.WriteErr("err")
	assert.Equal(t, "out", h.Stdout.String())
	assert.Equal(t, "err", h.Stderr.String())
}

func TestExitHelpers(t *testing.T) {
	h := NewHost()
	err := h.TopLevelExec(func() { h.RaiseError("boom") })
	require.Error(t, err)

	AssertExitMessage(t, err, "boom")
	assert.Equal(t, "boom", RequireExit(t, err).Message)
	AssertBalanced(t, h.Runtime)
}

func TestAssertMessageWord(t *testing.T) {
	h := NewHost()
	AssertMessageWord(t, h.Runtime, abi.TagError(h.MakeErrorString("bad")), "bad")
}
