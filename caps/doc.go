// Package caps defines the narrow capability protocols a shape may
// implement (Aggregate, Callable, Accessible, Enumerable, Mapping,
// Indexable, Streamable, PointerLike), together with overload resolution
// and generic dispatch helpers that operate purely through capability
// lookups on descriptors, with no compile-time knowledge of concrete
// shapes.
//
// Capability probes (AggregateOf, EnumerableOf, ...) return nil when the
// shape does not implement the protocol; a nil probe is not a failure, the
// caller decides. The action helpers (Call, InvokeMember, ForEach, ...)
// surface a missing capability as holder.ErrUnsupported.
package caps
