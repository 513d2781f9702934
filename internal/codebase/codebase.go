package codebase

import (
	"slices"
	"strings"
	"sync"

	"github.com/roach88/phpnarrow/internal/ttype"
)

// Codebase answers nominal questions about declared classes.
type Codebase interface {
	ClassExists(name string) bool
	// ClassExtendsOrImplements reports whether child is parent or has it
	// as an ancestor class or interface.
	ClassExtendsOrImplements(child, parent string) bool
	IsInterface(name string) bool
	IsFinal(name string) bool
	IsEnum(name string) bool
	// EnumCases returns the declared case names in declaration order.
	EnumCases(name string) []string
	// ArrayAccessParams returns the key and value types an ArrayAccess
	// implementation binds. ok is false if the class is not ArrayAccess.
	ArrayAccessParams(name string) (key, value *ttype.Union, ok bool)
}

// Kind classifies a declaration.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindTrait     Kind = "trait"
)

// ClassInfo describes one declaration.
type ClassInfo struct {
	Name       string
	Kind       Kind
	Parent     string
	Interfaces []string
	Final      bool
	Cases      []string

	// ArrayAccessKey and ArrayAccessValue bind ArrayAccess<K, V>. Nil on a
	// class implementing ArrayAccess means mixed.
	ArrayAccessKey   *ttype.Union
	ArrayAccessValue *ttype.Union
}

// Memory is a concurrency-safe in-memory Codebase.
type Memory struct {
	classes map[string]*ClassInfo
	mu      sync.RWMutex
}

// NewMemory returns a table pre-populated with the built-in interfaces
// the algebra cares about.
func NewMemory() *Memory {
	m := &Memory{classes: make(map[string]*ClassInfo)}
	for _, c := range builtins() {
		m.Add(c)
	}
	return m
}

func builtins() []ClassInfo {
	return []ClassInfo{
		{Name: "Traversable", Kind: KindInterface},
		{Name: "Iterator", Kind: KindInterface, Interfaces: []string{"Traversable"}},
		{Name: "IteratorAggregate", Kind: KindInterface, Interfaces: []string{"Traversable"}},
		{Name: "ArrayAccess", Kind: KindInterface},
		{Name: "Countable", Kind: KindInterface},
		{Name: "Stringable", Kind: KindInterface},
		{Name: "UnitEnum", Kind: KindInterface},
		{Name: "BackedEnum", Kind: KindInterface, Interfaces: []string{"UnitEnum"}},
		{Name: "Closure", Kind: KindClass, Final: true},
		{Name: "stdClass", Kind: KindClass},
		{Name: "ArrayObject", Kind: KindClass, Interfaces: []string{"IteratorAggregate", "ArrayAccess", "Countable"}},
	}
}

func fold(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, `\`))
}

// Add registers or replaces a declaration. Enums implicitly implement
// UnitEnum.
func (m *Memory) Add(info ClassInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := info
	c.Interfaces = slices.Clone(info.Interfaces)
	c.Cases = slices.Clone(info.Cases)
	if c.Kind == "" {
		c.Kind = KindClass
	}
	if c.Kind == KindEnum && !slices.ContainsFunc(c.Interfaces, func(s string) bool { return fold(s) == "unitenum" }) {
		c.Interfaces = append(c.Interfaces, "UnitEnum")
	}
	m.classes[fold(c.Name)] = &c
}

// Get returns a copy of the declaration.
func (m *Memory) Get(name string) (ClassInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.classes[fold(name)]
	if !ok {
		return ClassInfo{}, false
	}
	return *c, true
}

func (m *Memory) ClassExists(name string) bool {
	_, ok := m.Get(name)
	return ok
}

func (m *Memory) IsInterface(name string) bool {
	c, ok := m.Get(name)
	return ok && c.Kind == KindInterface
}

func (m *Memory) IsFinal(name string) bool {
	c, ok := m.Get(name)
	return ok && (c.Final || c.Kind == KindEnum)
}

func (m *Memory) IsEnum(name string) bool {
	c, ok := m.Get(name)
	return ok && c.Kind == KindEnum
}

func (m *Memory) EnumCases(name string) []string {
	c, ok := m.Get(name)
	if !ok || c.Kind != KindEnum {
		return nil
	}
	return slices.Clone(c.Cases)
}

func (m *Memory) ClassExtendsOrImplements(child, parent string) bool {
	target := fold(parent)
	if fold(child) == target {
		return true
	}
	found := false
	m.walkAncestors(child, func(c *ClassInfo) bool {
		if fold(c.Name) == target {
			found = true
			return false
		}
		return true
	})
	return found
}

func (m *Memory) ArrayAccessParams(name string) (key, value *ttype.Union, ok bool) {
	if !m.ClassExtendsOrImplements(name, "ArrayAccess") {
		return nil, nil, false
	}
	m.walkAncestors(name, func(c *ClassInfo) bool {
		if c.ArrayAccessKey != nil || c.ArrayAccessValue != nil {
			key, value = c.ArrayAccessKey, c.ArrayAccessValue
			return false
		}
		return true
	})
	if key == nil {
		key = ttype.Mixed()
	}
	if value == nil {
		value = ttype.Mixed()
	}
	return key, value, true
}

// walkAncestors visits name and then every ancestor breadth first, each at
// most once. visit returns false to stop. Unknown names are skipped.
func (m *Memory) walkAncestors(name string, visit func(*ClassInfo) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[string]bool{}
	queue := []string{fold(name)}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		c, ok := m.classes[n]
		if !ok {
			continue
		}
		if !visit(c) {
			return
		}
		if c.Parent != "" {
			queue = append(queue, fold(c.Parent))
		}
		for _, i := range c.Interfaces {
			queue = append(queue, fold(i))
		}
	}
}

var _ Codebase = (*Memory)(nil)
