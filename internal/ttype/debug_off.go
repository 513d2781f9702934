//go:build !ttypedebug

package ttype

const debugAssertions = false
