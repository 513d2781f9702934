// Package ttype provides the symbolic type lattice for PHP values.
//
// This package contains the data model only. Every other type-aware package
// imports ttype; ttype imports nothing internal. This keeps the lattice the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Atomic is a sealed interface: only the T* types in this package
//     implement it, so type switches over Atomic are exhaustive by review.
//   - Union values are immutable once built. Transforms return a new Union
//     and share unchanged members; callers hold *Union and never mutate it.
//   - A multi-member Union never contains TNever (A|never == A).
//   - ID() is stable and side-effect free so it can be used as a memo key
//     and inside diagnostic text.
package ttype
