// Package testutil provides test helpers for code running against the
// in-process host runtime.
package testutil

import (
	"bytes"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/infrastructure/memhost"
	"github.com/reglet-dev/reglet-ffi/internal/abi"
)

// Host is a runtime with its captured output streams.
type Host struct {
	*memhost.Runtime
	Stdout *bytes.Buffer
	Stderr *bytes.Buffer
}

// NewHost creates a runtime writing to in-memory buffers.
func NewHost(opts ...memhost.Option) *Host {
	h := &Host{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	opts = append([]memhost.Option{memhost.WithOutput(h.Stdout), memhost.WithErrorOutput(h.Stderr)}, opts...)
	h.Runtime = memhost.New(opts...)
	return h
}

// RequireExit asserts that err carries a host exit and returns it.
func RequireExit(t testing.TB, err error) *memhost.Exit {
	t.Helper()
	var exit *memhost.Exit
	require.True(t, stdErrors.As(err, &exit), "expected host exit, got %v", err)
	return exit
}

// AssertExitMessage asserts that err is a host error exit with message.
func AssertExitMessage(t testing.TB, err error, message string) {
	t.Helper()
	exit := RequireExit(t, err)
	assert.Equal(t, memhost.ExitError, exit.Kind)
	assert.Equal(t, message, exit.Message)
}

// AssertMessageWord asserts that w is an error word carrying message.
func AssertMessageWord(t testing.TB, rt *memhost.Runtime, w entities.Word, message string) {
	t.Helper()
	require.True(t, abi.IsError(w), "expected error word, got %s", w)
	payload := abi.Untag(w)
	require.Equal(t, entities.TypeChar, rt.TypeOf(payload))
	assert.Equal(t, message, rt.CharString(payload))
}

// AssertBalanced asserts that no pins, protections or live tokens were
// left behind.
func AssertBalanced(t testing.TB, rt *memhost.Runtime) {
	t.Helper()
	stats := rt.Stats()
	assert.Zero(t, stats.Pinned, "pinned values left behind")
	assert.Zero(t, stats.ProtectDepth, "protect stack not restored")
	assert.Zero(t, stats.LiveTokens, "unwind tokens left live")
}
