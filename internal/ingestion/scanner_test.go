package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanDir(t *testing.T) {
	t.Run("Expect: only dmsql trace files, in name order", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dmsql_b.log"), []byte("b"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dmsql_a.log"), []byte("a"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dmsql.txt"), []byte("y"), 0644))

		paths, err := ScanDir(dir, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "dmsql_a.log"),
			filepath.Join(dir, "dmsql_b.log"),
		}, paths)
	})

	t.Run("Expect: no recursion into subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "nested")
		require.NoError(t, os.Mkdir(sub, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "dmsql_deep.log"), []byte("z"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dmsql_top.log"), []byte("t"), 0644))

		paths, err := ScanDir(dir, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "dmsql_top.log")}, paths)
	})

	t.Run("Expect: duplicate content to be scanned once", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dmsql_1.log"), []byte("same"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dmsql_1_copy.log"), []byte("same"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dmsql_2.log"), []byte("other"), 0644))

		paths, err := ScanDir(dir, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "dmsql_1.log"),
			filepath.Join(dir, "dmsql_2.log"),
		}, paths)
	})

	t.Run("Expect: missing directory to return an error", func(t *testing.T) {
		_, err := ScanDir(filepath.Join(t.TempDir(), "absent"), nil)
		assert.Error(t, err)
	})
}
