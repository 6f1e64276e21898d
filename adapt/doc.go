// Package adapt attaches capability implementations to shapes backed by
// native Go types, through reflection: structs become aggregates with
// field accessibles, method callables, and embedded-struct bases; funcs
// become callables; slices and arrays become indexable enumerables; maps
// become mappings; pointers unwrap; scalar shapes format and scan as
// text.
//
// The adapters register as lazy capability providers during package
// initialization, so importing adapt (directly or through the bridges) is
// all a caller needs to dispatch over plain Go values. The core has no
// compile-time dependency on this package.
package adapt
