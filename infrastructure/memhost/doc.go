// Package memhost is an in-process host runtime for native routines.
//
// It reproduces the host semantics the boundary is built for: a heap of
// handle-addressed values that are collected unless pinned or on the
// protect stack, and error reporting by non-local exit. An exit is a panic
// carrying an *Exit value; it unwinds until the nearest ProtectCall or
// TopLevelExec, exactly like the host's own long jump.
//
// A Runtime is single-threaded. Callers must not use one Runtime from
// multiple goroutines at the same time.
package memhost
