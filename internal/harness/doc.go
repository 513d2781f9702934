// Package harness runs reconciliation scenarios: YAML fixtures that seed
// a scope, apply conditions to it step by step, and check the narrowed
// types and the diagnostics each step reports.
//
// # Scenario Format
//
//	name: nullable_int_narrowing
//	description: "!== null strips null, a second check is redundant"
//	php_version: 80300          # optional, PHP_VERSION_ID
//	run_id: "..."               # optional, fixed for golden traces
//	codebase:
//	  classes:
//	    - name: Suit
//	      kind: enum
//	      cases: [Hearts, Spades]
//	scope:
//	  $x: {kind: union, of: [int, null]}
//	refs:
//	  $y: $x                    # $y = &$x
//	steps:
//	  - clauses:
//	      - path: $x
//	        groups:
//	          - [{kind: is-not-type, type: "null"}]
//	    negated: false
//	    inside_loop: false
//	    quiet: false            # true disables diagnostics
//	    expect:
//	      types: {$x: int}
//	      changed: [$x]
//	      issues: []
//
// Each clause holds AND-ed groups; a group holds OR-ed assertions. Types
// use the typespec notation. Assertion kinds use the assertion package's
// names (is-type, isset, truthy, has-array-key, ...). A null operand is
// written "null": a bare YAML null leaves the operand unset.
//
// # Validation
//
// A scenario is checked twice on load: structurally against schema.cue
// (CUE), then semantically by building every type, path and assertion.
// Both report a *LoadError.
//
// # Determinism
//
// Runs take their id from a fixed generator and their seq numbers from a
// testutil.SeqClock, and issues are read back from the store in seq
// order, so the same scenario always yields the same trace. Golden traces
// live in testdata/golden and are compared with goldie.
package harness
