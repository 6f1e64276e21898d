// Package shape is the type descriptor graph: interned, process-wide
// structural fingerprints for value shapes, plus optional capability tables
// attached to them.
//
// A Descriptor records a shape's kind, qualifiers, size, and up-descriptors
// (pointee, key/value, parameters/result). Descriptors are interned once per
// distinct shape and live for the whole process, so identity comparison
// between descriptor pointers is structural equality. Registration is
// idempotent and race-safe: first use of a shape from multiple goroutines
// collapses to exactly one published descriptor.
//
// Capability tables are attached in a second phase after the skeleton is
// interned, which is what allows self-referential aggregates to mention
// their own descriptor while still keeping descriptors immutable after
// publication.
package shape
