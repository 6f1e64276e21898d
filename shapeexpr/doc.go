// Package shapeexpr parses textual type expressions such as `string`,
// `list(number)`, or `tuple(bool, any)` into shape descriptors. The
// syntax is HCL's type-expression subset; expressions go through a
// cty.Type on their way to the descriptor graph.
package shapeexpr
