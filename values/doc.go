// Package values converts between host values and Go values.
//
// Readers never call host APIs that can exit. Constructors allocate through
// unwind.Protect, so an allocation failure comes back as an
// *errors.AbortedError that the caller returns unchanged.
package values
