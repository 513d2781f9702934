package varpath

import "fmt"

// Dividers between segments.
const (
	OpenBracket  = "["
	CloseBracket = "]"
	Arrow        = "->"
	StaticArrow  = "::$"
)

// ParseError reports a malformed path.
type ParseError struct {
	Path   string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("varpath: %s at offset %d in %q", e.Msg, e.Offset, e.Path)
}

// Tokenize splits s into segment and divider tokens.
//
//	$a[0]->b['x]']  =>  $a [ 0 ] -> b [ 'x]' ]
//	$a[$b[0]]       =>  $a [ $b[0] ]
//
// Inside brackets, quotes and nested brackets are tracked so the closing
// bracket of the outer index is found.
func Tokenize(s string) ([]string, error) {
	var tokens []string
	start := 0
	depth := 0
	var quote byte

	flush := func(end int) {
		if end > start {
			tokens = append(tokens, s[start:end])
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"':
			if depth == 0 {
				return nil, &ParseError{Path: s, Offset: i, Msg: "quote outside brackets"}
			}
			quote = c
		case c == '[':
			if depth == 0 {
				flush(i)
				tokens = append(tokens, OpenBracket)
				start = i + 1
			}
			depth++
		case c == ']':
			if depth == 0 {
				return nil, &ParseError{Path: s, Offset: i, Msg: "unbalanced ]"}
			}
			depth--
			if depth == 0 {
				flush(i)
				tokens = append(tokens, CloseBracket)
				start = i + 1
			}
		case depth == 0 && c == '-' && i+1 < len(s) && s[i+1] == '>':
			flush(i)
			tokens = append(tokens, Arrow)
			i++
			start = i + 1
		case depth == 0 && c == ':' && i+2 < len(s) && s[i+1] == ':' && s[i+2] == '$':
			flush(i)
			tokens = append(tokens, StaticArrow)
			i += 2
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, &ParseError{Path: s, Offset: len(s), Msg: "unterminated quote"}
	}
	if depth != 0 {
		return nil, &ParseError{Path: s, Offset: len(s), Msg: "unclosed ["}
	}
	flush(len(s))
	return tokens, nil
}

func isDivider(tok string) bool {
	switch tok {
	case OpenBracket, CloseBracket, Arrow, StaticArrow:
		return true
	}
	return false
}
