// Package algebra implements the subtyping and combination operations over
// ttype values: containment (IsContainedBy), union minimisation (Combine)
// and structural intersection (IntersectUnionWithUnion).
//
// None of the operations fail. Containment answers a boolean and records
// side facts in a ComparisonResult; combination always yields a non-empty
// member list; intersection reports disjointness with a false ok, which
// callers turn into never.
//
// Recursion over array shapes and generic constraints is bounded by
// MaxDepth. Past the bound containment answers false and intersection
// keeps its first operand, so an over-deep type is never narrowed.
//
// Nominal questions (does Foo extend Bar, is Baz an interface) go to a
// codebase.Codebase. A nil Codebase is allowed; names are then compared
// case-insensitively and every unknown class is treated as non-final.
package algebra
