package reconciler

import (
	"maps"
	"slices"

	"github.com/roach88/phpnarrow/internal/ttype"
	"github.com/roach88/phpnarrow/internal/varpath"
)

// Scope maps variable paths to their current types. Keys are canonical
// path strings, so $a["x"] and $a['x'] share an entry.
type Scope struct {
	types map[string]*ttype.Union
	paths map[string]varpath.Path
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{
		types: make(map[string]*ttype.Union),
		paths: make(map[string]varpath.Path),
	}
}

// Get returns the type at p.
func (s *Scope) Get(p varpath.Path) (*ttype.Union, bool) {
	u, ok := s.types[p.String()]
	return u, ok
}

// Set records u at p.
func (s *Scope) Set(p varpath.Path, u *ttype.Union) {
	k := p.String()
	s.types[k] = u
	s.paths[k] = p
}

// Delete removes p and every path below it.
func (s *Scope) Delete(p varpath.Path) {
	for k, q := range s.paths {
		if q.HasPrefix(p) {
			delete(s.types, k)
			delete(s.paths, k)
		}
	}
}

// Paths returns the recorded paths ordered by their string form.
func (s *Scope) Paths() []varpath.Path {
	keys := slices.Sorted(maps.Keys(s.paths))
	out := make([]varpath.Path, len(keys))
	for i, k := range keys {
		out[i] = s.paths[k]
	}
	return out
}

// Len returns the number of recorded paths.
func (s *Scope) Len() int {
	return len(s.types)
}

// Clone returns a copy that can be narrowed independently. Types are
// immutable and shared.
func (s *Scope) Clone() *Scope {
	return &Scope{
		types: maps.Clone(s.types),
		paths: maps.Clone(s.paths),
	}
}
