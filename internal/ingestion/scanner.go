package ingestion

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dmsqlkit/dmtrace/pkg/checksum"
)

const tracePattern = "dmsql*.log"

// ScanDir collects dmsql trace files directly under dir (no recursion),
// in name order. Files whose content duplicates an earlier file are skipped
// so reprocessing a copied log does not double the output.
func ScanDir(dir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	seen := make(map[string]string)
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := filepath.Match(tracePattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", entry.Name(), err)
		}
		if !matched {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		digest, err := checksum.FileChecksum(path)
		if err != nil {
			logger.Warn("skipping unreadable trace file", "path", path, "error", err)
			continue
		}
		if prev, dup := seen[digest]; dup {
			logger.Info("skipping duplicate trace file",
				"path", path, "duplicate_of", prev)
			continue
		}
		seen[digest] = path
		paths = append(paths, path)
	}

	logger.Info("scanned trace directory", "dir", dir, "files", len(paths))
	return paths, nil
}
