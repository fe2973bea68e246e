// Package ports defines the contract between checked-native code and the
// host runtime it is called from. Infrastructure packages implement these
// interfaces; the boundary packages depend only on the abstractions.
package ports
