package sqllog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// traceLine renders one well-formed single-line record with a distinct
// second counter so record order is observable.
func traceLine(i int) string {
	return fmt.Sprintf("2025-10-10 10:10:%02d.%03d (EP[1] sess:NULL thrd:NULL user:NULL trxid:NULL stmt:NULL) [SEL]: SELECT %d", i%60, i%1000, i)
}

func writeTraceFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func genTraceContent(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(traceLine(i))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestParseAll(t *testing.T) {
	t.Run("Expect: unchunked parse to deliver everything once, in order", func(t *testing.T) {
		const n = 25
		path := writeTraceFile(t, "ok.log", genTraceContent(n))

		var calls int
		var records []Record
		var errs []ParseError
		err := ParseAll(path, 0,
			func(batch []Record) { calls++; records = append(records, batch...) },
			func(batch []ParseError) { errs = append(errs, batch...) },
		)
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.Empty(t, errs)
		require.Len(t, records, n)
		for i, rec := range records {
			assert.Equal(t, fmt.Sprintf("SELECT %d", i), rec.Description)
		}
	})

	t.Run("Expect: chunked parse to fire ceil(N/K) times with same concatenation", func(t *testing.T) {
		const n, k = 10, 3
		path := writeTraceFile(t, "chunked.log", genTraceContent(n))

		var calls int
		var chunked []Record
		err := ParseAll(path, k,
			func(batch []Record) {
				calls++
				assert.LessOrEqual(t, len(batch), k)
				chunked = append(chunked, batch...)
			},
			nil,
		)
		require.NoError(t, err)
		assert.Equal(t, 4, calls) // ceil(10/3)

		unchunked, _, err := ParseFileWithErrors(path)
		require.NoError(t, err)
		assert.Equal(t, unchunked, chunked)
	})

	t.Run("Expect: parsing twice to be idempotent", func(t *testing.T) {
		path := writeTraceFile(t, "twice.log", genTraceContent(12))

		first, err := ParseFile(path)
		require.NoError(t, err)
		second, err := ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Expect: empty file to yield zero records and zero errors", func(t *testing.T) {
		path := writeTraceFile(t, "empty.log", "")
		records, errs, err := ParseFileWithErrors(path)
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.Empty(t, errs)
	})

	t.Run("Expect: multi-line description to span up to the next boundary", func(t *testing.T) {
		content := traceLine(0) + "\n" +
			"FROM dual\n" +
			"\n" +
			"WHERE 1=1\n" +
			traceLine(1) + "\n"
		path := writeTraceFile(t, "multiline.log", content)

		records, errs, err := ParseFileWithErrors(path)
		require.NoError(t, err)
		assert.Empty(t, errs)
		require.Len(t, records, 2)
		assert.Equal(t, "SELECT 0\nFROM dual\n\nWHERE 1=1", records[0].Description)
		assert.Equal(t, "SELECT 1", records[1].Description)
	})

	t.Run("Expect: leading noise before the first boundary to be discarded", func(t *testing.T) {
		content := "truncated tail of a previous record\nmore noise\n" + traceLine(0) + "\n"
		path := writeTraceFile(t, "noise.log", content)

		records, errs, err := ParseFileWithErrors(path)
		require.NoError(t, err)
		assert.Empty(t, errs)
		require.Len(t, records, 1)
	})

	t.Run("Expect: malformed segment to error without losing its neighbors", func(t *testing.T) {
		content := traceLine(0) + "\n" +
			"2025-10-10 10:10:59.000 this header is broken\n" +
			traceLine(2) + "\n"
		path := writeTraceFile(t, "badseg.log", content)

		records, errs, err := ParseFileWithErrors(path)
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.Len(t, errs, 1)
		assert.Equal(t, KindFormat, errs[0].Kind)
		assert.Equal(t, 2, errs[0].Line)
		assert.Contains(t, errs[0].Content, "this header is broken")
	})

	t.Run("Expect: invalid UTF-8 line to be reported and recovered from", func(t *testing.T) {
		content := []byte(traceLine(0) + "\n")
		content = append(content, 0xff, 0xfe, 'b', 'a', 'd', '\n')
		content = append(content, []byte(traceLine(1)+"\n")...)
		path := filepath.Join(t.TempDir(), "badutf8.log")
		require.NoError(t, os.WriteFile(path, content, 0644))

		records, errs, err := ParseFileWithErrors(path)
		require.NoError(t, err)
		assert.Len(t, records, 2, "records around the bad line survive")

		var decodeErrs int
		for _, e := range errs {
			if e.Kind == KindDecode {
				decodeErrs++
				assert.Equal(t, 2, e.Line)
				assert.Contains(t, e.Content, "len=")
			}
		}
		assert.Equal(t, 1, decodeErrs)
	})

	t.Run("Expect: missing file to return an I/O error", func(t *testing.T) {
		err := ParseAll(filepath.Join(t.TempDir(), "nope.log"), 0, nil, nil)
		assert.Error(t, err)
	})
}

func TestParseInChunks(t *testing.T) {
	t.Run("Expect: streaming variant to match the whole-file variant", func(t *testing.T) {
		path := writeTraceFile(t, "stream.log", genTraceContent(50))

		var streamed []Record
		require.NoError(t, ParseInChunks(path, 7,
			func(batch []Record) { streamed = append(streamed, batch...) }, nil))

		whole, err := ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, whole, streamed)
	})

	t.Run("Expect: file without trailing newline to keep its last record", func(t *testing.T) {
		path := writeTraceFile(t, "notrail.log", traceLine(0)+"\n"+traceLine(1))
		records, err := ParseFile(path)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func BenchmarkParseInChunks(b *testing.B) {
	dir := b.TempDir()
	path := filepath.Join(dir, "bench.log")
	var sb strings.Builder
	for i := 0; i < 5000; i++ {
		sb.WriteString(traceLine(i))
		sb.WriteString("\nEXECTIME: 3(ms) ROWCOUNT: 1 EXEC_ID: ")
		sb.WriteString(fmt.Sprint(i))
		sb.WriteString(".\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ParseInChunks(path, 1024, func([]Record) {}, func([]ParseError) {}); err != nil {
			b.Fatal(err)
		}
	}
}
