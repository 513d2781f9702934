package reconciler

import (
	"cmp"
	"maps"
	"slices"

	"github.com/roach88/phpnarrow/internal/algebra"
	"github.com/roach88/phpnarrow/internal/arrayshape"
	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/issue"
	"github.com/roach88/phpnarrow/internal/ttype"
	"github.com/roach88/phpnarrow/internal/varpath"
)

// Clause is what a condition proves about one path: every group holds,
// and within a group at least one assertion holds.
type Clause struct {
	Path   varpath.Path
	Groups [][]assertion.Assertion
}

// KeyedOptions apply to every clause of one ReconcileKeyedTypes call.
type KeyedOptions struct {
	InsideLoop      bool
	Span            issue.Span
	CanReportIssues bool
	Negated         bool
}

// pending is a clause being applied.
type pending struct {
	path   varpath.Path
	groups []group
}

// group is one OR group. Synthesised groups never report.
type group struct {
	alts  []assertion.Assertion
	quiet bool
}

// ReconcileKeyedTypes narrows scope with clauses and returns the paths
// whose type changed or was first recorded, sorted. refs may be nil.
func (r *Reconciler) ReconcileKeyedTypes(scope *Scope, refs *RefGraph, clauses []Clause, opts KeyedOptions) []string {
	work := collect(clauses)
	order := slices.SortedFunc(maps.Values(work), func(a, b *pending) int {
		if c := cmp.Compare(a.path.Depth(), b.path.Depth()); c != 0 {
			return c
		}
		return cmp.Compare(a.path.String(), b.path.String())
	})

	changed := make(map[string]bool)
	for _, p := range order {
		before, recorded := scope.Get(p.path)
		if !recorded {
			before = r.derive(scope, p.path, opts.Span)
		}
		after := r.applyGroups(p, before, opts)
		if recorded && after.Equal(before) {
			continue
		}

		r.logger.Debug("narrowed path", "path", p.path.String(), "type", after.ID())
		r.store(scope, refs, p.path, after, changed)
		r.propagate(scope, refs, p.path, after, changed)
	}

	out := make([]string, 0, len(changed))
	for k := range changed {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// collect merges clauses by path and adds the facts a nested condition
// proves about its ancestors: isset($a['x']['y']) needs $a and $a['x']
// to hold arrays with non-null entries on the way down.
func collect(clauses []Clause) map[string]*pending {
	work := make(map[string]*pending)
	add := func(p varpath.Path, groups [][]assertion.Assertion, quiet bool) {
		k := p.String()
		w, ok := work[k]
		if !ok {
			w = &pending{path: p}
			work[k] = w
		}
		for _, g := range groups {
			w.groups = append(w.groups, group{alts: g, quiet: quiet})
		}
	}

	for _, c := range clauses {
		add(c.Path, c.Groups, false)
	}
	for _, c := range clauses {
		if !impliesIsset(c.Groups) {
			continue
		}
		prefixes := c.Path.Prefixes()
		for i, q := range prefixes {
			var next varpath.Segment
			if i+1 < len(prefixes) {
				next, _ = prefixes[i+1].Last()
			} else {
				next, _ = c.Path.Last()
			}
			a := assertion.Of(assertion.IsIsset)
			if next.IsLiteralIndex() {
				a = assertion.NonnullEntry(next.Key)
			}
			add(q, [][]assertion.Assertion{{a}}, true)
		}
	}
	return work
}

// impliesIsset reports whether some group proves the value is set.
func impliesIsset(groups [][]assertion.Assertion) bool {
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		all := true
		for _, a := range g {
			if !a.ImpliesIsset() {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// derive computes an unrecorded path from its parent. Only literal array
// indexes can be derived; anything else stays unknown (nil).
func (r *Reconciler) derive(scope *Scope, p varpath.Path, span issue.Span) *ttype.Union {
	last, ok := p.Last()
	if !ok || !last.IsLiteralIndex() {
		return nil
	}
	parentPath, _ := p.Parent()
	parent, ok := scope.Get(parentPath)
	if !ok {
		return nil
	}
	return r.shapes.ResolveAccess(parent, ttype.Single(last.Key.ToAtomic()), arrayshape.Context{InIsset: true}, span)
}

// applyGroups reconciles each group in turn. The alternatives of an OR
// group are reconciled from the same input and joined, without reports.
func (r *Reconciler) applyGroups(p *pending, existing *ttype.Union, opts KeyedOptions) *ttype.Union {
	for _, g := range p.groups {
		if len(g.alts) == 0 {
			continue
		}
		req := Request{
			Existing:        existing,
			Key:             p.path,
			InsideLoop:      opts.InsideLoop,
			Span:            opts.Span,
			CanReportIssues: opts.CanReportIssues && !g.quiet && len(g.alts) == 1,
			Negated:         opts.Negated,
		}
		results := make([]*ttype.Union, 0, len(g.alts))
		for _, a := range g.alts {
			req.Assertion = a
			results = append(results, r.Reconcile(req))
		}
		existing = algebra.CombineUnionList(results, r.cb)
	}
	if existing == nil {
		return ttype.Mixed()
	}
	return existing
}

// store records u at p and at the same path under every alias of p's
// root.
func (r *Reconciler) store(scope *Scope, refs *RefGraph, p varpath.Path, u *ttype.Union, changed map[string]bool) {
	scope.Set(p, u)
	changed[p.String()] = true
	for _, alias := range refs.Aliases(p.Root) {
		q := p.WithRoot(alias)
		scope.Set(q, u)
		changed[q.String()] = true
	}
}

// propagate writes a narrowed array item back into its parent, and on up
// while the chain is literal indexes.
func (r *Reconciler) propagate(scope *Scope, refs *RefGraph, p varpath.Path, u *ttype.Union, changed map[string]bool) {
	for !u.IsNever() {
		last, ok := p.Last()
		if !ok || !last.IsLiteralIndex() {
			return
		}
		parentPath, _ := p.Parent()
		parent, ok := scope.Get(parentPath)
		if !ok {
			return
		}
		refined := r.withItem(parent, last.Key, u)
		if refined.Equal(parent) {
			return
		}
		r.store(scope, refs, parentPath, refined, changed)
		p, u = parentPath, refined
	}
}

// withItem sets the item at key to value in each array member of
// container. Other members are kept as they are.
func (r *Reconciler) withItem(container *ttype.Union, key ttype.ArrayKey, value *ttype.Union) *ttype.Union {
	index := ttype.Single(key.ToAtomic())
	types := make([]ttype.Atomic, 0, len(container.Types))
	for _, m := range container.Types {
		switch t := m.(type) {
		case ttype.TKeyed:
			if t.IsEmptyArray() {
				types = append(types, m)
				continue
			}
			if item, ok := t.Known[key]; ok && value.PossiblyUndefined {
				t.Known = t.CloneKnown()
				t.Known[key] = ttype.KnownItem{Type: value.WithPossiblyUndefined(false), PossiblyUndefined: item.PossiblyUndefined}
				types = append(types, t)
				continue
			}
			if _, _, fits := t.ValueAt(key); !fits {
				types = append(types, m)
				continue
			}
			types = append(types, r.shapes.AssignOffset(ttype.Single(t), index, value).Types...)
		case ttype.TList:
			if _, _, fits := t.ValueAt(key); !fits || value.PossiblyUndefined {
				types = append(types, m)
				continue
			}
			types = append(types, r.shapes.AssignOffset(ttype.Single(t), index, value).Types...)
		default:
			types = append(types, m)
		}
	}
	return container.WithTypes(algebra.Combine(types, r.cb, false))
}
