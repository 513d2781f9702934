package ttype

import (
	"math"
	"strconv"
)

// CoerceKey applies PHP's array key casting to a Go value standing in for
// a PHP scalar: nil, bool, int, int64, float64 or string.
//
//	null   -> ""
//	true   -> 1, false -> 0
//	float  -> int (truncated toward zero)
//	string -> int when it is a canonical decimal integer, else string
//
// Returns false for values that cannot be array keys.
func CoerceKey(v any) (ArrayKey, bool) {
	switch val := v.(type) {
	case nil:
		return StringKey(""), true
	case bool:
		if val {
			return IntKey(1), true
		}
		return IntKey(0), true
	case int:
		return IntKey(int64(val)), true
	case int64:
		return IntKey(val), true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ArrayKey{}, false
		}
		return IntKey(int64(math.Trunc(val))), true
	case string:
		return CoerceStringKey(val), true
	default:
		return ArrayKey{}, false
	}
}

// CoerceStringKey casts a string key. "8" becomes int 8; "08", "+8", " 8",
// "8 ", "-0" and anything overflowing int64 stay strings.
func CoerceStringKey(s string) ArrayKey {
	if isCanonicalIntString(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntKey(n)
		}
	}
	return StringKey(s)
}

// isCanonicalIntString scans for an optional '-' followed by ASCII digits
// with no leading zero, except the literal "0".
func isCanonicalIntString(s string) bool {
	if s == "0" {
		return true
	}
	i := 0
	if len(s) > 0 && s[0] == '-' {
		i = 1
	}
	if i >= len(s) || s[i] == '0' {
		return false
	}
	for ; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// KeyFromAtomic returns the coerced key for a literal atomic.
// Non-literal atomics return false.
func KeyFromAtomic(a Atomic) (ArrayKey, bool) {
	switch t := a.(type) {
	case TLiteralInt:
		return IntKey(t.Value), true
	case TLiteralString:
		return CoerceStringKey(t.Value), true
	case TLiteralClassString:
		return StringKey(t.Name), true
	case TLiteralFloat:
		return CoerceKey(t.Value)
	case TTrue:
		return IntKey(1), true
	case TFalse:
		return IntKey(0), true
	case TNull, TVoid:
		return StringKey(""), true
	default:
		return ArrayKey{}, false
	}
}

// KeyFromUnion returns the coerced key when the union is a single literal.
func KeyFromUnion(u *Union) (ArrayKey, bool) {
	if u == nil || len(u.Types) != 1 {
		return ArrayKey{}, false
	}
	return KeyFromAtomic(u.Types[0])
}

// IsNumericString reports whether PHP would treat s as numeric. Leading
// whitespace is allowed, as is trailing whitespace since PHP 8.
func IsNumericString(s string) bool {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return scanNumber(s[start:end])
}

// scanNumber matches [+-]? (digits ('.' digits?)? | '.' digits) ([eE] [+-]? digits)?
func scanNumber(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intDigits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			fracDigits++
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
