package exporter

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmsqlkit/dmtrace/internal/sqllog"
)

func TestJSONExporter(t *testing.T) {
	t.Run("Expect: one JSON object per line, round-trippable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.jsonl")
		e, err := NewJSONExporter(JSONOptions{Path: path})
		require.NoError(t, err)

		records := sampleRecords()
		require.NoError(t, e.ExportBatch(records))
		require.NoError(t, e.Finalize())

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		var got []sqllog.Record
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			var rec sqllog.Record
			require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
			got = append(got, rec)
		}
		require.NoError(t, sc.Err())
		assert.Equal(t, records, got)
	})

	t.Run("Expect: absent optionals omitted from the output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.jsonl")
		e, err := NewJSONExporter(JSONOptions{Path: path})
		require.NoError(t, err)

		rec := sqllog.Record{OccurrenceTime: "2025-10-10 10:10:10.100", Description: "commit"}
		require.NoError(t, e.ExportRecord(&rec))
		require.NoError(t, e.Finalize())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "session")
		assert.NotContains(t, string(data), "execute_time")
		assert.Contains(t, string(data), `"occurrence_time"`)
	})

	t.Run("Expect: append mode to extend an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.jsonl")

		for i := 0; i < 2; i++ {
			e, err := NewJSONExporter(JSONOptions{Path: path, Append: true})
			require.NoError(t, err)
			require.NoError(t, e.ExportBatch(sampleRecords()[:1]))
			require.NoError(t, e.Finalize())
		}

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		lines := 0
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			lines++
		}
		assert.Equal(t, 2, lines)
	})
}
