package resolvers

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/netzkontrast/mdflow/pkg/logger"
)

var log = logger.New("mdflow:resolvers")

// ResolvePath expands "~/…" against the user's home directory, leaves
// "/…" absolute paths untouched, and resolves everything else relative to
// baseDir.
func ResolvePath(path, baseDir string) (string, error) {
	switch {
	case strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	case filepath.IsAbs(path):
		return path, nil
	default:
		return filepath.Join(baseDir, path), nil
	}
}

// ResolveFile resolves a File ImportAction: plain read, or an inclusive
// 1-based line-range slice when lineRange is set.
func ResolveFile(path, baseDir string, hasLineRange bool, lineStart, lineEnd int) (string, error) {
	full, err := ResolvePath(path, baseDir)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(full); err != nil {
		return "", &FileNotFound{Path: path}
	}
	if IsBinary(full) {
		return "", &BinaryFileRejection{Path: path}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", full, err)
	}
	content := string(data)

	if !hasLineRange {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	lo, hi := lineStart, lineEnd
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 1 {
		return "", &InvalidRange{Path: path, Start: lineStart, End: lineEnd}
	}
	if lo > len(lines) {
		return "", nil
	}
	if hi > len(lines) {
		hi = len(lines)
	}
	// Re-order the slice according to the ORIGINAL start/end (honored as
	// given, even when start exceeds end).
	selected := lines[lo-1 : hi]
	if lineStart > lineEnd {
		reversed := make([]string, len(selected))
		for i, l := range selected {
			reversed[len(selected)-1-i] = l
		}
		selected = reversed
	}
	return strings.Join(selected, "\n"), nil
}

// symbolPatterns are the language-agnostic heuristics for locating a
// named symbol: the first line that contains one of these constructs
// followed by the target name, anywhere in the line.
var symbolPatterns = []string{
	`\bfunction\s+%s\b`,
	`\bconst\s+%s\b`,
	`\bclass\s+%s\b`,
	`\binterface\s+%s\b`,
	`\btype\s+%s\b`,
	`\bfunc\s+%s\b`,      // Go
	`\bdef\s+%s\b`,       // Python
	`\bvar\s+%s\b`,       // Go/JS
}

// ResolveSymbol resolves a Symbol ImportAction: reads the file and extracts
// the block of lines belonging to the named symbol's declaration, from its
// matching line up to the next line that starts a declaration (or EOF).
// That line may be indented, so a nested declaration such as a `var` or
// `const` inside a function body also ends the block.
func ResolveSymbol(path, baseDir, symbol string) (string, error) {
	full, err := ResolvePath(path, baseDir)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		return "", &FileNotFound{Path: path}
	}
	if IsBinary(full) {
		return "", &BinaryFileRejection{Path: path}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", full, err)
	}
	lines := strings.Split(string(data), "\n")

	var combined *regexp.Regexp
	{
		parts := make([]string, len(symbolPatterns))
		for i, p := range symbolPatterns {
			parts[i] = fmt.Sprintf(p, regexp.QuoteMeta(symbol))
		}
		combined = regexp.MustCompile(strings.Join(parts, "|"))
	}

	declStart := regexp.MustCompile(`^\s*(export\s+)?(async\s+)?(function|const|class|interface|type|func|def|var)\b`)

	startLine := -1
	for i, line := range lines {
		if combined.MatchString(line) {
			startLine = i
			break
		}
	}
	if startLine == -1 {
		return "", &SymbolNotFound{Path: path, Symbol: symbol}
	}

	endLine := len(lines)
	for i := startLine + 1; i < len(lines); i++ {
		if declStart.MatchString(lines[i]) {
			endLine = i
			break
		}
	}

	log.Printf("ResolveSymbol: %s#%s found at line %d, block ends at %d", path, symbol, startLine+1, endLine)
	return strings.Join(lines[startLine:endLine], "\n"), nil
}
