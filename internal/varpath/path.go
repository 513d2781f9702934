package varpath

import (
	"strconv"
	"strings"

	"github.com/roach88/phpnarrow/internal/ttype"
)

// SegmentKind selects how a segment reaches into its parent.
type SegmentKind uint8

const (
	Index SegmentKind = iota
	Property
	StaticProperty
)

// Segment is one step of a Path.
type Segment struct {
	Kind SegmentKind

	// Key is set for an Index segment with a literal key.
	Key ttype.ArrayKey

	// Expr holds the source of a non-literal index ($a[$i]). It is empty
	// for literal indexes.
	Expr string

	// Name is the property name of Property and StaticProperty segments.
	Name string
}

// IsLiteralIndex reports whether s indexes with a compile-time key.
func (s Segment) IsLiteralIndex() bool {
	return s.Kind == Index && s.Expr == ""
}

func (s Segment) String() string {
	switch s.Kind {
	case Property:
		return Arrow + s.Name
	case StaticProperty:
		return StaticArrow + s.Name
	}
	if s.Expr != "" {
		return "[" + s.Expr + "]"
	}
	return "[" + s.Key.String() + "]"
}

// Path is a root followed by access segments.
type Path struct {
	Root     string
	Segments []Segment
}

// Var returns the path of a bare variable.
func Var(name string) Path {
	return Path{Root: name}
}

// Parse builds a Path from its text form.
func Parse(s string) (Path, error) {
	tokens, err := Tokenize(s)
	if err != nil {
		return Path{}, err
	}
	if len(tokens) == 0 || isDivider(tokens[0]) {
		return Path{}, &ParseError{Path: s, Offset: 0, Msg: "missing root"}
	}

	p := Path{Root: tokens[0]}
	for i := 1; i < len(tokens); {
		switch tokens[i] {
		case OpenBracket:
			if i+2 >= len(tokens) || tokens[i+2] != CloseBracket || isDivider(tokens[i+1]) {
				return Path{}, &ParseError{Path: s, Offset: offsetOf(tokens, i), Msg: "empty or malformed index"}
			}
			p.Segments = append(p.Segments, parseIndex(tokens[i+1]))
			i += 3
		case Arrow, StaticArrow:
			if i+1 >= len(tokens) || isDivider(tokens[i+1]) {
				return Path{}, &ParseError{Path: s, Offset: offsetOf(tokens, i), Msg: "missing property name"}
			}
			kind := Property
			if tokens[i] == StaticArrow {
				kind = StaticProperty
			}
			p.Segments = append(p.Segments, Segment{Kind: kind, Name: tokens[i+1]})
			i += 2
		default:
			return Path{}, &ParseError{Path: s, Offset: offsetOf(tokens, i), Msg: "unexpected " + strconv.Quote(tokens[i])}
		}
	}
	return p, nil
}

// MustParse is Parse for paths known to be valid.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// offsetOf approximates the byte offset of token i for error messages.
func offsetOf(tokens []string, i int) int {
	n := 0
	for _, t := range tokens[:i] {
		n += len(t)
	}
	return n
}

// parseIndex reads the text between brackets. Quoted text and bare
// integers are literal keys, cast the way PHP casts array keys; anything
// else is an expression.
func parseIndex(tok string) Segment {
	if len(tok) >= 2 && (tok[0] == '\'' || tok[0] == '"') && tok[len(tok)-1] == tok[0] {
		return Segment{Kind: Index, Key: ttype.CoerceStringKey(unquote(tok[1 : len(tok)-1]))}
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil && strconv.FormatInt(n, 10) == tok {
		return Segment{Kind: Index, Key: ttype.IntKey(n)}
	}
	return Segment{Kind: Index, Expr: tok}
}

func unquote(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func (p Path) String() string {
	if len(p.Segments) == 0 {
		return p.Root
	}
	var b strings.Builder
	b.WriteString(p.Root)
	for _, s := range p.Segments {
		b.WriteString(s.String())
	}
	return b.String()
}

// IsZero reports whether p is the empty path.
func (p Path) IsZero() bool {
	return p.Root == "" && len(p.Segments) == 0
}

// Depth is the number of segments.
func (p Path) Depth() int {
	return len(p.Segments)
}

// Last returns the final segment.
func (p Path) Last() (Segment, bool) {
	if len(p.Segments) == 0 {
		return Segment{}, false
	}
	return p.Segments[len(p.Segments)-1], true
}

// Parent drops the final segment. A bare root has no parent.
func (p Path) Parent() (Path, bool) {
	if len(p.Segments) == 0 {
		return Path{}, false
	}
	return Path{Root: p.Root, Segments: p.Segments[:len(p.Segments)-1:len(p.Segments)-1]}, true
}

// Prefixes returns every proper ancestor of p, the bare root first.
func (p Path) Prefixes() []Path {
	out := make([]Path, 0, len(p.Segments))
	for i := 0; i < len(p.Segments); i++ {
		out = append(out, Path{Root: p.Root, Segments: p.Segments[:i:i]})
	}
	return out
}

// HasArrayIndex reports whether any segment is an array index.
func (p Path) HasArrayIndex() bool {
	for _, s := range p.Segments {
		if s.Kind == Index {
			return true
		}
	}
	return false
}

// HasPrefix reports whether q is p or an ancestor of p.
func (p Path) HasPrefix(q Path) bool {
	if p.Root != q.Root || len(q.Segments) > len(p.Segments) {
		return false
	}
	for i, s := range q.Segments {
		if p.Segments[i] != s {
			return false
		}
	}
	return true
}

// WithRoot returns p re-rooted at root, for fanning a path out to the
// aliases of its variable.
func (p Path) WithRoot(root string) Path {
	return Path{Root: root, Segments: p.Segments}
}

// Child appends a segment.
func (p Path) Child(s Segment) Path {
	segs := make([]Segment, len(p.Segments), len(p.Segments)+1)
	copy(segs, p.Segments)
	return Path{Root: p.Root, Segments: append(segs, s)}
}

// ChildIndex appends a literal index.
func (p Path) ChildIndex(key ttype.ArrayKey) Path {
	return p.Child(Segment{Kind: Index, Key: key})
}

// ChildProperty appends a property fetch.
func (p Path) ChildProperty(name string) Path {
	return p.Child(Segment{Kind: Property, Name: name})
}
