// Package codebase is the symbol table the type algebra consults for
// nominal facts: which classes exist, what they extend or implement,
// whether they are interfaces, final or enums, and which key/value types
// an ArrayAccess implementation binds.
//
// The analyzer proper populates a table from parsed declarations; this
// package only defines the queries and an in-memory implementation that
// fixtures can load from YAML. Class names are case-insensitive, as in
// PHP.
package codebase
