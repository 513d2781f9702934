//go:build ttypedebug

package ttype

// debugAssertions turns silent canonicalisation of invalid unions into
// panics so the offending caller shows up in tests.
const debugAssertions = true
