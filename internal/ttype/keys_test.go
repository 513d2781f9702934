package ttype

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceKey(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected ArrayKey
	}{
		{"canonical int string", "8", IntKey(8)},
		{"leading zero", "08", StringKey("08")},
		{"leading space", " 8", StringKey(" 8")},
		{"trailing space", "8 ", StringKey("8 ")},
		{"plus sign", "+8", StringKey("+8")},
		{"negative", "-12", IntKey(-12)},
		{"negative zero", "-0", StringKey("-0")},
		{"zero", "0", IntKey(0)},
		{"empty", "", StringKey("")},
		{"overflow", "9223372036854775808", StringKey("9223372036854775808")},
		{"max int64", "9223372036854775807", IntKey(math.MaxInt64)},
		{"word", "key", StringKey("key")},
		{"true", true, IntKey(1)},
		{"false", false, IntKey(0)},
		{"null", nil, StringKey("")},
		{"float truncates", 1.9, IntKey(1)},
		{"negative float truncates", -1.9, IntKey(-1)},
		{"int", 3, IntKey(3)},
		{"int64", int64(-4), IntKey(-4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceKey(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCoerceKeyRejects(t *testing.T) {
	for _, v := range []any{math.NaN(), math.Inf(1), []int{1}, struct{}{}} {
		_, ok := CoerceKey(v)
		assert.False(t, ok, "%v", v)
	}
}

func TestKeyFromAtomic(t *testing.T) {
	k, ok := KeyFromAtomic(TLiteralString{Value: "15"})
	assert.True(t, ok)
	assert.Equal(t, IntKey(15), k)

	k, ok = KeyFromAtomic(TTrue{})
	assert.True(t, ok)
	assert.Equal(t, IntKey(1), k)

	_, ok = KeyFromAtomic(TInt{})
	assert.False(t, ok)
}

func TestIsNumericString(t *testing.T) {
	yes := []string{"1", "-1", "+1.5", ".5", "5.", "1e10", "1E-3", " 42", "42 ", "0"}
	no := []string{"", "abc", "1e", "0x1A", "inf", "NAN", ".", "1.2.3", "- 1"}

	for _, s := range yes {
		assert.True(t, IsNumericString(s), "%q", s)
	}
	for _, s := range no {
		assert.False(t, IsNumericString(s), "%q", s)
	}
}

func TestCompareKeys(t *testing.T) {
	shape := TKeyed{Known: map[ArrayKey]KnownItem{
		StringKey("b"): {Type: Int()},
		IntKey(10):     {Type: Int()},
		StringKey("a"): {Type: Int()},
		IntKey(-1):     {Type: Int()},
	}}

	assert.Equal(t,
		[]ArrayKey{IntKey(-1), IntKey(10), StringKey("a"), StringKey("b")},
		shape.SortedKeys())
}
