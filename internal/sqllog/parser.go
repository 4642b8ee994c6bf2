package sqllog

import (
	"regexp"
	"strconv"
	"strings"
)

// headerRE matches a full record segment: the 23-char timestamp, the
// parenthesized identifier block, an optional statement-kind tag, and the
// free-text description (which may span multiple lines). The timestamp
// itself is pre-validated by IsBoundary before a segment ever reaches the
// parser; the regexp only carves out the fields.
var headerRE = regexp.MustCompile(
	`(?s)^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}) ` +
		`\(EP\[(\d+)\]` +
		` sess:(\S+)` +
		` thrd:(\S+)` +
		` user:(\S+)` +
		` trxid:(\S+)` +
		` stmt:(\S+)` +
		`(?: appname:(.*?))?` +
		`(?: ip:?((?:::ffff:)?[0-9A-Fa-f:.]*?))?` +
		`\)\s(?:\[([A-Z]{3})\]:?\s)?(.*)`,
)

// metricsRE matches the optional trailing execution-metrics clause inside a
// description.
var metricsRE = regexp.MustCompile(
	`EXECTIME:\s*(\d+)\(ms\)\s*ROWCOUNT:\s*(\d+)\s*EXEC_ID:\s*(\d+)\.`,
)

// optValue maps the literal NULL token to an absent field; any other token
// is a present value.
func optValue(s string) *string {
	if s == "NULL" {
		return nil
	}
	v := s
	return &v
}

func presentIfNonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

// parseMetrics extracts the EXECTIME/ROWCOUNT/EXEC_ID integers from a
// description. A missing clause or an unparsable integer leaves all three
// absent; metrics never fail a record.
func parseMetrics(desc string) (execTime, rowCount, execID *int64) {
	m := metricsRE.FindStringSubmatch(desc)
	if m == nil {
		return nil, nil, nil
	}
	vals := make([]*int64, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return nil, nil, nil
		}
		vals[i] = &n
	}
	return vals[0], vals[1], vals[2]
}

func firstLine(segment string) string {
	if i := strings.IndexByte(segment, '\n'); i >= 0 {
		return segment[:i]
	}
	return segment
}

// ParseSegment converts one raw segment into a Record. It returns (nil, nil)
// for whitespace-only segments, and a *FormatError when the header does not
// match the trace grammar or the endpoint is not an integer. lineNum is the
// 1-based number of the segment's first physical line.
func ParseSegment(segment string, lineNum int) (*Record, error) {
	if strings.TrimSpace(segment) == "" {
		return nil, nil
	}

	m := headerRE.FindStringSubmatch(segment)
	if m == nil {
		return nil, &FormatError{Line: lineNum, FirstLine: firstLine(segment)}
	}

	ep, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, &FormatError{Line: lineNum, FirstLine: firstLine(segment)}
	}

	ip := strings.TrimPrefix(m[9], "::ffff:")
	desc := m[11]
	execTime, rowCount, execID := parseMetrics(desc)

	return &Record{
		OccurrenceTime: m[1],
		Endpoint:       ep,
		Session:        optValue(m[3]),
		Thread:         optValue(m[4]),
		User:           optValue(m[5]),
		TrxID:          optValue(m[6]),
		Statement:      optValue(m[7]),
		AppName:        presentIfNonEmpty(m[8]),
		IP:             presentIfNonEmpty(ip),
		SQLType:        presentIfNonEmpty(m[10]),
		Description:    desc,
		ExecuteTimeMS:  execTime,
		RowCount:       rowCount,
		ExecuteID:      execID,
	}, nil
}
