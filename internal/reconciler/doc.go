// Package reconciler narrows variable types with the facts a branch
// condition proves.
//
// Reconcile takes one (existing type, assertion) pair and returns the new
// type. It runs a fixed sequence of steps:
//
//  1. No existing type: synthesise one. Type and identity assertions
//     produce the asserted type; everything else starts from mixed
//     (flagged when the variable was first seen inside a loop).
//  2. Negations (is-not-type, truthy, not-isset, ...) subtract from the
//     existing type.
//  3. Comparisons against a single literal follow PHP's strict or loose
//     equality rules member by member.
//  4. Type assertions with a fixed target use a direct table; anything
//     else falls back to structural intersection.
//
// Each step also decides whether the condition was impossible (the
// result is never) or redundant (nothing changed). The ambient Negated
// flag on a Request swaps the two, since a redundant check in an else
// branch is an impossible one in the if branch.
//
// ReconcileKeyedTypes applies a whole formula to a Scope: it adds the
// isset facts implied for ancestors of nested paths, narrows each path,
// writes refined array items back into their parents and copies the
// result to every variable that shares storage through a reference.
//
// Reconciliation never fails. The worst outcome is mixed or never plus a
// diagnostic.
package reconciler
