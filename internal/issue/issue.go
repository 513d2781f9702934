package issue

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// DomainIssue prefixes fingerprint input. The version suffix allows the
// fingerprint layout to change without colliding with old rows.
const DomainIssue = "phpnarrow/issue/v1"

// Span locates source text by byte offsets.
type Span struct {
	File  string `json:"file,omitempty"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d-%d", s.Start, s.End)
	}
	return fmt.Sprintf("%s:%d-%d", s.File, s.Start, s.End)
}

// Annotation points at a secondary location.
type Annotation struct {
	Span    Span   `json:"span"`
	Message string `json:"message"`
}

// Issue is one diagnostic.
type Issue struct {
	Kind        Kind         `json:"kind"`
	Severity    Severity     `json:"severity"`
	Message     string       `json:"message"`
	Span        Span         `json:"span"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// New creates an issue with the kind's default severity.
func New(kind Kind, span Span, message string, annotations ...Annotation) Issue {
	return Issue{
		Kind:        kind,
		Severity:    kind.Severity(),
		Message:     message,
		Span:        span,
		Annotations: annotations,
	}
}

// Newf is New with a formatted message.
func Newf(kind Kind, span Span, format string, args ...any) Issue {
	return New(kind, span, fmt.Sprintf(format, args...))
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s (%s)", i.Severity, i.Kind, i.Message, i.Span)
}

// fingerprintInput is the hashed form of an issue. Field order is fixed by
// the struct so the encoding is deterministic. Annotations are left out:
// they explain an issue, they do not identify it.
type fingerprintInput struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	File    string `json:"file"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Fingerprint returns a stable content hash of the issue. Text is NFC
// normalised first so equivalent spellings hash the same.
func (i Issue) Fingerprint() string {
	in := fingerprintInput{
		Kind:    string(i.Kind),
		Message: norm.NFC.String(i.Message),
		File:    norm.NFC.String(i.Span.File),
		Start:   i.Span.Start,
		End:     i.Span.End,
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a struct of strings and ints cannot fail.
	_ = enc.Encode(in)

	h := sha256.New()
	h.Write([]byte(DomainIssue))
	h.Write([]byte{0x00})
	h.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hex.EncodeToString(h.Sum(nil))
}
