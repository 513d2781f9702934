package reconciler

import (
	"slices"
)

// RefGraph groups variables that share storage through PHP references.
// It is a union-find over root variable names, rebuilt by the caller from
// its own binding table; the reconciler only queries it.
type RefGraph struct {
	parent map[string]string
}

// NewRefGraph builds a graph from bindings, where each entry binds a
// variable to the one it references ($b = &$a is "$b": "$a").
func NewRefGraph(bindings map[string]string) *RefGraph {
	g := &RefGraph{parent: make(map[string]string)}
	for k, v := range bindings {
		g.Bind(k, v)
	}
	return g
}

// Bind places a and b in the same group.
func (g *RefGraph) Bind(a, b string) {
	ra, rb := g.Find(a), g.Find(b)
	if ra == rb {
		return
	}
	// The smaller name becomes the representative so the result does not
	// depend on binding order.
	if rb < ra {
		ra, rb = rb, ra
	}
	g.parent[rb] = ra
	g.parent[ra] = ra
}

// Find returns the representative of v's group. Unknown variables are
// their own group.
func (g *RefGraph) Find(v string) string {
	if g == nil {
		return v
	}
	root := v
	for {
		p, ok := g.parent[root]
		if !ok || p == root {
			break
		}
		root = p
	}
	// Path compression.
	for v != root {
		next := g.parent[v]
		g.parent[v] = root
		v = next
	}
	return root
}

// Aliases returns the other members of v's group, sorted.
func (g *RefGraph) Aliases(v string) []string {
	if g == nil {
		return nil
	}
	root := g.Find(v)
	var out []string
	for k := range g.parent {
		if k != v && g.Find(k) == root {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
