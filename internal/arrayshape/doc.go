// Package arrayshape derives array types from PHP array expressions:
// literal construction (including spreads), offset reads and offset
// writes.
//
// Problems found along the way (duplicate keys, cursor overflow, bad
// offsets) are reported to an issue.Reporter; every operation still
// returns a usable type so analysis can continue.
package arrayshape
