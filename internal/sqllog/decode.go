package sqllog

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// rawPreviewLen bounds how many raw bytes a decode error carries.
const rawPreviewLen = 8

// decodeLine converts the raw bytes of one physical line to text. Valid UTF-8
// comes back unchanged. Invalid sequences are replaced with U+FFFD, one
// decode-kind ParseError is appended with a summary of the raw bytes, and the
// result is resynced to the next record boundary so that a corrupted prefix
// does not poison the following record.
func decodeLine(raw []byte, lineNum int, errs *[]ParseError) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	preview := raw
	ellipsis := ""
	if len(preview) > rawPreviewLen {
		preview = preview[:rawPreviewLen]
		ellipsis = "..."
	}
	*errs = append(*errs, ParseError{
		Line:    lineNum,
		Content: fmt.Sprintf("len=%d prefix=%v%s", len(raw), preview, ellipsis),
		Kind:    KindDecode,
		Message: "invalid UTF-8 byte sequence",
	})

	s := strings.ToValidUTF8(string(raw), "�")
	s = strings.TrimLeft(s, " \t�")
	if pos := FindBoundaryPos(s); pos > 0 {
		s = s[pos:]
	}
	return s
}
