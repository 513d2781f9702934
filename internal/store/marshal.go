package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/phpnarrow/internal/issue"
)

// marshalAnnotations converts annotations to JSON TEXT. HTML escaping is
// off so messages holding "<" or "&" are stored as written.
func marshalAnnotations(anns []issue.Annotation) (string, error) {
	if len(anns) == 0 {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(anns); err != nil {
		return "", fmt.Errorf("marshal annotations: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalAnnotations parses annotation JSON TEXT. An empty list decodes
// to nil so read issues compare equal to freshly built ones.
func unmarshalAnnotations(data string) ([]issue.Annotation, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var anns []issue.Annotation
	if err := json.Unmarshal([]byte(data), &anns); err != nil {
		return nil, fmt.Errorf("unmarshal annotations: %w", err)
	}
	return anns, nil
}
