package sqllog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBoundary(t *testing.T) {
	t.Run("Expect: valid timestamps to match", func(t *testing.T) {
		valid := []string{
			"2025-10-10 10:10:10.100",
			"2024-02-29 00:00:00.000",
			"2000-02-29 23:59:59.999",
			"0001-01-01 00:00:00.000",
			"1999-12-31 23:59:59.000",
		}
		for _, s := range valid {
			assert.True(t, IsBoundary(s), s)
		}
	})

	t.Run("Expect: out-of-range fields to be rejected", func(t *testing.T) {
		invalid := []string{
			"2025-13-01 10:10:10.100", // month 13
			"2025-00-01 10:10:10.100", // month 0
			"2025-02-30 10:10:10.100", // Feb 30
			"2023-02-29 10:10:10.100", // Feb 29, non-leap
			"1900-02-29 10:10:10.100", // Feb 29, century non-leap
			"2025-04-31 10:10:10.100", // April 31
			"2025-01-00 10:10:10.100", // day 0
			"2025-01-01 24:00:00.000", // hour 24
			"2025-01-01 10:60:00.000", // minute 60
			"2025-01-01 10:10:60.000", // second 60
			"0000-01-01 10:10:10.100", // year 0
		}
		for _, s := range invalid {
			assert.False(t, IsBoundary(s), s)
		}
	})

	t.Run("Expect: wrong length or separators to be rejected", func(t *testing.T) {
		invalid := []string{
			"",
			"2025-10-10 10:10:10.10",       // 22 chars
			"2025-10-10 10:10:10.1000",     // 24 chars
			"2025/10/10 10:10:10.100",      // wrong date separator
			"2025-10-10T10:10:10.100",      // T instead of space
			"2025-10-10 10:10:10,100",      // comma before millis
			"2025-10-10 10-10-10.100",      // wrong time separator
			"2O25-10-10 10:10:10.100",      // letter O for zero
			"SELECT * FROM t WHERE a",      // same length, no digits
		}
		for _, s := range invalid {
			assert.False(t, IsBoundary(s), s)
		}
	})
}

func TestFindBoundaryPos(t *testing.T) {
	t.Run("Expect: position of first valid window", func(t *testing.T) {
		assert.Equal(t, 0, FindBoundaryPos("2025-10-10 10:10:10.100 rest"))
		assert.Equal(t, 5, FindBoundaryPos("junk 2025-10-10 10:10:10.100"))
	})

	t.Run("Expect: -1 when no window matches", func(t *testing.T) {
		assert.Equal(t, -1, FindBoundaryPos("no timestamp in this string at all"))
		assert.Equal(t, -1, FindBoundaryPos("short"))
		assert.Equal(t, -1, FindBoundaryPos(""))
	})

	t.Run("Expect: invalid calendar windows to be skipped", func(t *testing.T) {
		// First window is Feb 30, second one is valid.
		s := "2025-02-30 10:10:10.100 2025-03-01 10:10:10.100"
		assert.Equal(t, 24, FindBoundaryPos(s))
	})
}

func BenchmarkIsBoundary(b *testing.B) {
	lines := []string{
		"2025-10-10 10:10:10.100",
		"SELECT * FROM sysobjects",
		"2023-02-29 10:10:10.100",
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		IsBoundary(lines[i%len(lines)])
	}
}
