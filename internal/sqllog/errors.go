package sqllog

import "fmt"

// ErrorKind classifies a recoverable parse failure.
type ErrorKind string

const (
	// KindDecode marks a line whose bytes were not valid UTF-8.
	KindDecode ErrorKind = "decode"
	// KindFormat marks a segment whose header did not match the trace grammar.
	KindFormat ErrorKind = "format"
)

// ParseError describes one segment (or line) that could not be turned into a
// Record. Line is 1-based and refers to the first physical line of the
// offending segment. Content is the original, possibly lossily decoded, text
// of that segment.
type ParseError struct {
	Line    int       `json:"line"`
	Content string    `json:"content"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"error"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s error at line %d: %s", e.Kind, e.Line, e.Message)
}

// FormatError reports a segment header that does not match the expected
// grammar. FirstLine carries only the segment's first physical line.
type FormatError struct {
	Line      int
	FirstLine string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed record header at line %d: %q", e.Line, e.FirstLine)
}
