// Package entities provides the core domain types shared by the boundary:
// host value handles, tagged result words, value types, runtime
// configuration and the package manifest.
package entities
