package checksum

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// FileChecksum returns the hex-encoded xxhash digest of the file's content.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	digest, err := ReaderChecksum(f)
	if err != nil {
		return "", fmt.Errorf("failed to hash file %s: %w", path, err)
	}
	return digest, nil
}

// ReaderChecksum returns the hex-encoded xxhash digest of everything r yields.
func ReaderChecksum(r io.Reader) (string, error) {
	hasher := xxhash.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
