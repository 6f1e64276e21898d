// Package holder provides the universal value holder: a type-erased
// container pairing exactly one shape descriptor with storage for one
// value, able to hold, copy, cast, and assign values of any registered
// shape without compile-time knowledge of the concrete shape.
//
// A holder owns one of three storage representations, never more than one
// at a time: inline storage for small, trivially relocatable values; a
// shared heap cell for larger or composite values, where copying a holder
// shares the cell in O(1) without duplicating the value; and a non-owning
// reference to a caller-owned location. Clone forces an independent deep
// copy regardless of representation.
//
// Holders are not internally synchronized. Copying holders across
// goroutines is safe; concurrent mutation of the same holder, or of a
// shared cell through overlapping holders, must be serialized by the
// caller.
package holder
