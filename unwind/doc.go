// Package unwind carries errors across the boundary between checked native
// code and the host runtime.
//
// Native code returns a tagged word (see internal/abi). Protect runs a host
// call that may exit non-locally and turns the exit into an AbortedError
// holding the host's continuation token. Guard is the outermost frame of
// every native entry point: it converts panics and errors into tagged
// words. UnwrapOrAbort runs on the host side of the boundary and either
// returns the value or re-enters the host's error machinery.
package unwind
