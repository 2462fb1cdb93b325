package parser

import (
	"strings"

	"github.com/goccy/go-yaml"
)

// FrontmatterResult is the outcome of splitting an agent markdown file into
// its YAML metadata header and its prompt body. Modeled on gh-aw's
// parser.ExtractFrontmatterFromContent, whose callers across pkg/cli and
// pkg/workflow all consume the same (frontmatter map, markdown body) shape.
type FrontmatterResult struct {
	Shebang     string
	Frontmatter map[string]any
	Markdown    string
}

// ErrMalformedFrontmatter is returned when the document opens a "---"
// fence but never closes it.
type ErrMalformedFrontmatter struct{}

func (e *ErrMalformedFrontmatter) Error() string {
	return "frontmatter: opening \"---\" fence was never closed"
}

// ExtractFrontmatter splits content into its leading YAML frontmatter
// block (delimited by a "---" line immediately at the start of the file
// and a matching closing "---" line) and the remaining markdown body. A
// file with no opening fence has no frontmatter: the whole content is the
// body and Frontmatter is nil.
func ExtractFrontmatter(content string) (*FrontmatterResult, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")

	var shebang string
	if strings.HasPrefix(normalized, "#!") {
		if nl := strings.IndexByte(normalized, '\n'); nl >= 0 {
			shebang = normalized[:nl]
			normalized = normalized[nl+1:]
		} else {
			return &FrontmatterResult{Shebang: normalized}, nil
		}
	}

	if !strings.HasPrefix(normalized, "---\n") && normalized != "---" {
		if shebang == "" {
			return &FrontmatterResult{Markdown: content}, nil
		}
		return &FrontmatterResult{Shebang: shebang, Markdown: normalized}, nil
	}

	rest := strings.TrimPrefix(normalized, "---\n")
	closeIdx := strings.Index(rest, "\n---\n")
	bodyStart := -1
	var yamlBlock string
	if strings.HasPrefix(rest, "---\n") {
		// Empty block: the closing fence directly follows the opening one.
		bodyStart = len("---\n")
	} else if rest == "---" && normalized != "---" {
		bodyStart = len(rest)
	} else if closeIdx >= 0 {
		yamlBlock = rest[:closeIdx]
		bodyStart = closeIdx + len("\n---\n")
	} else if strings.HasSuffix(rest, "\n---") {
		yamlBlock = rest[:len(rest)-len("\n---")]
		bodyStart = len(rest)
	} else {
		return nil, &ErrMalformedFrontmatter{}
	}

	var fm map[string]any
	if strings.TrimSpace(yamlBlock) != "" {
		if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil {
			return nil, err
		}
	}

	return &FrontmatterResult{
		Shebang:     shebang,
		Frontmatter: fm,
		Markdown:    strings.TrimPrefix(rest[bodyStart:], "\n"),
	}, nil
}
