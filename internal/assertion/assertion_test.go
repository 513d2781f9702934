package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phpnarrow/internal/ttype"
)

func TestNegationIsAnInvolution(t *testing.T) {
	for pos, neg := range pairs {
		t.Run(string(pos), func(t *testing.T) {
			assert.Equal(t, neg, pos.Negation())
			assert.Equal(t, pos, neg.Negation())
			assert.False(t, pos.IsNegation())
			assert.True(t, neg.IsNegation())
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("does-not-have-array-key")
	require.NoError(t, err)
	assert.Equal(t, DoesNotHaveArrayKey, k)

	_, err = ParseKind("is-string")
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	tests := []struct {
		a        Assertion
		expected string
	}{
		{Type(ttype.TInt{}), "int"},
		{NotType(ttype.TNull{}), "!null"},
		{Identical(ttype.TLiteralInt{Value: 5}), "=5"},
		{NotIdentical(ttype.TLiteralString{Value: "a"}), "!='a'"},
		{Equal(ttype.TTrue{}), "~true"},
		{Of(IsIsset), "isset"},
		{Of(IsNotIsset), "!isset"},
		{Of(Truthy), "!falsy"},
		{Of(NonEmpty), "!empty"},
		{ArrayKey(ttype.StringKey("id")), "has-array-key('id')"},
		{ArrayKey(ttype.IntKey(0)).Negation(), "!has-array-key(0)"},
		{ExactCount(2), "has-exact-count(2)"},
		{In(ttype.NewUnion([]ttype.Atomic{ttype.TLiteralInt{Value: 1}, ttype.TLiteralInt{Value: 2}})), "in-array(1|2)"},
		{Of(NotCountable), "!countable"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.String())
		})
	}
}

func TestPositive(t *testing.T) {
	assert.Equal(t, "null", NotType(ttype.TNull{}).Positive())
	assert.Equal(t, "falsy", Of(Truthy).Positive())
}

func TestHasLiteralValue(t *testing.T) {
	assert.True(t, Identical(ttype.TLiteralInt{Value: 1}).HasLiteralValue())
	assert.True(t, NotEqual(ttype.TFalse{}).HasLiteralValue())
	assert.False(t, Identical(ttype.TNull{}).HasLiteralValue())
	assert.False(t, Type(ttype.TLiteralInt{Value: 1}).HasLiteralValue())
}

func TestImpliesIsset(t *testing.T) {
	assert.True(t, Of(IsIsset).ImpliesIsset())
	assert.True(t, Of(Truthy).ImpliesIsset())
	assert.True(t, Type(ttype.TInt{}).ImpliesIsset())
	assert.False(t, Type(ttype.TNull{}).ImpliesIsset())
	assert.False(t, Of(Falsy).ImpliesIsset())
	assert.False(t, Of(IsNotIsset).ImpliesIsset())
}

func TestJoin(t *testing.T) {
	group := []Assertion{Type(ttype.TInt{}), Type(ttype.TString{})}
	assert.Equal(t, "int|string", Join(group))
}
