// Package varpath models the access paths narrowing facts are keyed on,
// such as $a[0]->b['x'] or Foo::$cache[1].
//
// Tokenize splits a path into alternating segment and divider tokens in
// one left-to-right scan. Quoted keys may contain any divider, and a
// bracket may hold a nested path ($a[$b[0]]), which stays one segment.
//
// Parse turns the tokens into a Path: a root variable (or class name for
// static properties) followed by Index, Property and StaticProperty
// segments. Paths are values; every helper returns a new Path.
package varpath
