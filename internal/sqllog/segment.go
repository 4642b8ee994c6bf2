package sqllog

import "strings"

// segment is the raw multi-line text belonging to one logical record, from
// its header line up to (excluding) the next header line.
type segment struct {
	text      string
	startLine int
}

// segmentBuilder assembles segments from decoded lines. Lines before the
// first boundary are discarded; every later line belongs to the most recent
// boundary's segment, with embedded newlines preserved verbatim.
type segmentBuilder struct {
	buf       strings.Builder
	startLine int
	open      bool
}

// cleanLine strips the trailing CR (the reader already consumed LF) and any
// leading whitespace or replacement characters left over from lossy decoding.
func cleanLine(line string) string {
	line = strings.TrimRight(line, "\r\n")
	return strings.TrimLeft(line, " \t�")
}

// feed consumes one decoded physical line. When the line opens a new record,
// the previously accumulated segment (if any) is returned with done=true.
func (b *segmentBuilder) feed(line string, lineNum int) (seg segment, done bool) {
	clean := cleanLine(line)

	if lineStartsBoundary(clean) {
		if b.open {
			seg = segment{text: b.buf.String(), startLine: b.startLine}
			done = true
		}
		b.buf.Reset()
		b.startLine = lineNum
		b.open = true
		b.buf.WriteString(clean)
		return seg, done
	}

	if !b.open {
		// Content before the first record header is discarded.
		return segment{}, false
	}

	b.buf.WriteByte('\n')
	b.buf.WriteString(clean)
	return segment{}, false
}

// flush returns the trailing segment at end of input, if one is open.
func (b *segmentBuilder) flush() (segment, bool) {
	if !b.open || b.buf.Len() == 0 {
		return segment{}, false
	}
	seg := segment{text: b.buf.String(), startLine: b.startLine}
	b.buf.Reset()
	b.open = false
	return seg, true
}
