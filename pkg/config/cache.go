package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/netzkontrast/mdflow/pkg/constants"
)

// ImportCache is the on-disk content-addressed cache for remote URL
// fetches, keyed by a 16-hex-char truncated hash of the canonicalized
// request (URL plus relevant directive flags). Writes are write-once per
// key; concurrent writers racing on the same key is safe because content
// is expected to be byte-identical.
type ImportCache struct {
	dir string
}

// NewImportCache opens (without yet creating) the cache directory under
// the per-user config directory.
func NewImportCache() (*ImportCache, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &ImportCache{dir: filepath.Join(dir, constants.CacheDirName)}, nil
}

// Key computes the 16-hex-char truncated cache key for a canonicalized
// request string (e.g. the URL concatenated with any directive flags that
// affect the fetched content).
func Key(canonicalRequest string) string {
	sum := sha256.Sum256([]byte(canonicalRequest))
	return hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached body for key, if present.
func (c *ImportCache) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores body under key. Last write wins on a race; content is
// expected to be byte-identical for the same key.
func (c *ImportCache) Set(key string, body []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", c.dir, err)
	}
	return os.WriteFile(filepath.Join(c.dir, key), body, 0o644)
}
