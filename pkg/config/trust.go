package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/netzkontrast/mdflow/pkg/constants"
)

// TrustStore is the set of hostnames trusted for remote URL execution,
// persisted as a newline-delimited text file (comments beginning with '#'
// are ignored).
type TrustStore struct {
	path  string
	hosts map[string]bool
}

// LoadTrustStore reads the known_hosts file under the per-user config
// directory. A missing file is not an error: it yields an empty store.
func LoadTrustStore() (*TrustStore, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, constants.KnownHostsFile)

	ts := &TrustStore{path: path, hosts: map[string]bool{}}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ts, nil
		}
		return nil, fmt.Errorf("reading trust store %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ts.hosts[line] = true
	}
	return ts, scanner.Err()
}

// IsTrusted reports whether host is in the trust store.
func (ts *TrustStore) IsTrusted(host string) bool {
	return ts.hosts[host]
}

// Trust adds host to the in-memory store and persists it, write-then-rename
// to avoid a partially written file under concurrent/interrupted writes.
func (ts *TrustStore) Trust(host string) error {
	if ts.hosts[host] {
		return nil
	}
	ts.hosts[host] = true

	dir := filepath.Dir(ts.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	var b strings.Builder
	b.WriteString("# mdflow trusted hosts -- one hostname per line\n")
	for h := range ts.hosts {
		b.WriteString(h)
		b.WriteString("\n")
	}

	tmp := ts.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing trust store: %w", err)
	}
	return os.Rename(tmp, ts.path)
}
