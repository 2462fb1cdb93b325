package resolvers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveGlob enumerates files matching pattern relative to baseDir using
// full "**"-capable glob matching, excludes binary files silently, and
// returns a concatenation of per-file blocks formatted as
// "<relative-path>\n<content>\n\n". A pattern matching nothing returns an
// empty string, not an error: a non-matching glob is non-fatal.
func ResolveGlob(pattern, baseDir string) (string, error) {
	fsys := os.DirFS(baseDir)
	cleanPattern := strings.TrimPrefix(pattern, "./")

	matches, err := doublestar.Glob(fsys, cleanPattern)
	if err != nil {
		return "", fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var b strings.Builder
	for _, rel := range matches {
		full := filepath.Join(baseDir, rel)
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		if IsBinary(full) {
			continue
		}
		data, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		b.WriteString(rel)
		b.WriteByte('\n')
		b.Write(data)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
