// Package assertion describes the narrowing facts a branch condition
// proves about a variable.
//
// An Assertion is a Kind plus the operand that kind needs: an atomic type
// for type and equality checks, an array key for key checks, a count for
// exact-count checks, or a value union for in_array.
//
// Every kind has a negation and exactly one of each pair is the "negation"
// side (IsNegation). The reconciler sends negations down its subtraction
// path and everything else down its intersection path:
//
//	is-type       <-> is-not-type
//	is-identical  <-> is-not-identical
//	is-equal      <-> is-not-equal
//	isset         <-> not-isset
//	falsy         <-> truthy
//	empty         <-> non-empty
//	has-array-key <-> does-not-have-array-key
//	...
package assertion
