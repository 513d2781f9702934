package codebase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phpnarrow/internal/ttype"
)

func fixture(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	m.Add(ClassInfo{Name: "Animal", Kind: KindClass})
	m.Add(ClassInfo{Name: "Pet", Kind: KindInterface})
	m.Add(ClassInfo{Name: "Dog", Parent: "Animal", Interfaces: []string{"Pet"}, Final: true})
	m.Add(ClassInfo{Name: "Suit", Kind: KindEnum, Cases: []string{"Hearts", "Spades"}})
	m.Add(ClassInfo{Name: "Bag", Interfaces: []string{"ArrayAccess"}, ArrayAccessKey: ttype.Int(), ArrayAccessValue: ttype.String()})
	m.Add(ClassInfo{Name: "SmallBag", Parent: "Bag"})
	return m
}

func TestClassExtendsOrImplements(t *testing.T) {
	m := fixture(t)

	tests := []struct {
		child, parent string
		expected      bool
	}{
		{"Dog", "Animal", true},
		{"Dog", "Pet", true},
		{"dog", "ANIMAL", true},
		{`\Dog`, "Dog", true},
		{"Animal", "Dog", false},
		{"Suit", "UnitEnum", true},
		{"ArrayObject", "Traversable", true},
		{"Missing", "Animal", false},
	}

	for _, tt := range tests {
		t.Run(tt.child+"->"+tt.parent, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.ClassExtendsOrImplements(tt.child, tt.parent))
		})
	}
}

func TestDeclarationFlags(t *testing.T) {
	m := fixture(t)

	assert.True(t, m.IsInterface("Pet"))
	assert.False(t, m.IsInterface("Dog"))
	assert.True(t, m.IsFinal("Dog"))
	assert.True(t, m.IsFinal("Suit"))
	assert.True(t, m.IsEnum("Suit"))
	assert.Equal(t, []string{"Hearts", "Spades"}, m.EnumCases("Suit"))
	assert.Nil(t, m.EnumCases("Dog"))
}

func TestArrayAccessParams(t *testing.T) {
	m := fixture(t)

	k, v, ok := m.ArrayAccessParams("SmallBag")
	require.True(t, ok)
	assert.Equal(t, "int", k.ID())
	assert.Equal(t, "string", v.ID())

	k, v, ok = m.ArrayAccessParams("ArrayObject")
	require.True(t, ok)
	assert.Equal(t, "mixed", k.ID())
	assert.Equal(t, "mixed", v.ID())

	_, _, ok = m.ArrayAccessParams("Dog")
	assert.False(t, ok)
}

func TestAncestorCycleTerminates(t *testing.T) {
	m := NewMemory()
	m.Add(ClassInfo{Name: "A", Parent: "B"})
	m.Add(ClassInfo{Name: "B", Parent: "A"})

	assert.True(t, m.ClassExtendsOrImplements("A", "B"))
	assert.False(t, m.ClassExtendsOrImplements("A", "C"))
}

func TestLoad(t *testing.T) {
	src := `
classes:
  - name: Collection
    interfaces: [ArrayAccess]
    array_access:
      key: int
      value: {kind: class, name: Item}
  - name: Status
    kind: enum
    cases: [Active, Closed]
`
	m, err := Load(strings.NewReader(src))
	require.NoError(t, err)

	_, v, ok := m.ArrayAccessParams("Collection")
	require.True(t, ok)
	assert.Equal(t, "Item", v.ID())
	assert.Equal(t, []string{"Active", "Closed"}, m.EnumCases("status"))
}

func TestLoadRejectsUnknownKind(t *testing.T) {
	_, err := Load(strings.NewReader("classes:\n  - name: X\n    kind: struct\n"))
	assert.ErrorContains(t, err, "unknown kind")
}
