// Package host loads native packages into a host runtime and calls their
// routines.
//
// The Executor owns an in-process host runtime and, optionally, a wazero
// runtime that exposes every loaded package as a host module. Calls made
// through either path go through the package's adapters, so the caller
// sees a valid handle or the host's exit as an error.
package host
