package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/netzkontrast/mdflow/pkg/logger"
	"github.com/netzkontrast/mdflow/pkg/scanner"
)

var log = logger.New("mdflow:parser")

var (
	lineRangeSuffix = regexp.MustCompile(`^(.*):(\d+)-(\d+)$`)
	symbolSuffix    = regexp.MustCompile(`^(.*)#([A-Za-z_$][A-Za-z0-9_$]*)$`)
	urlScheme       = regexp.MustCompile(`^https?://`)
)

// ParseImports returns the ordered list of ImportActions found in src,
// matching directives inside safe ranges plus executable fences (which are
// discovered from the scanner's separate fenced-span pass). Parsing is
// total: it never fails, for any input.
func ParseImports(src string) []ImportAction {
	var actions []ImportAction

	for _, r := range scanner.SafeRanges(src) {
		actions = append(actions, parseRange(src, r.Start, r.End)...)
	}

	actions = append(actions, parseExecutableFences(src)...)

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Index < actions[j].Index
	})

	log.Printf("ParseImports: input=%d bytes, actions=%d", len(src), len(actions))
	return actions
}

// HasImports reports whether src contains at least one import directive.
func HasImports(src string) bool {
	return len(ParseImports(src)) > 0
}

func parseRange(src string, start, end int) []ImportAction {
	var actions []ImportAction
	i := start
	for i < end {
		switch src[i] {
		case '@':
			if a, next, ok := matchAtDirective(src, i, end); ok {
				actions = append(actions, a)
				i = next
				continue
			}
		case '!':
			if a, next, ok := matchCommandDirective(src, i, end); ok {
				actions = append(actions, a)
				i = next
				continue
			}
		}
		i++
	}
	return actions
}

// matchAtDirective attempts to match an @-directive starting at index i
// (src[i] == '@'). Returns the action, the index to resume scanning from,
// and whether a match was found.
func matchAtDirective(src string, i, end int) (ImportAction, int, bool) {
	rest := src[i+1 : end]
	if rest == "" {
		return ImportAction{}, 0, false
	}

	// Email-like "user@host" must not match: the path must begin with
	// '~', '.', '/', or a URL scheme.
	if !(rest[0] == '~' || rest[0] == '.' || rest[0] == '/' || urlScheme.MatchString(rest)) {
		return ImportAction{}, 0, false
	}

	token, tokenLen := readToken(rest)
	if token == "" {
		return ImportAction{}, 0, false
	}
	original := src[i : i+1+tokenLen]
	next := i + 1 + tokenLen

	if urlScheme.MatchString(token) {
		return ImportAction{
			Kind:     KindURL,
			Index:    i,
			Original: original,
			URL:      token,
		}, next, true
	}

	if m := lineRangeSuffix.FindStringSubmatch(token); m != nil {
		start, errS := strconv.Atoi(m[2])
		endLine, errE := strconv.Atoi(m[3])
		if errS == nil && errE == nil && start > 0 && endLine > 0 {
			return ImportAction{
				Kind:         KindFile,
				Index:        i,
				Original:     original,
				Path:         m[1],
				HasLineRange: true,
				LineStart:    start,
				LineEnd:      endLine,
			}, next, true
		}
	}

	if m := symbolSuffix.FindStringSubmatch(token); m != nil {
		return ImportAction{
			Kind:     KindSymbol,
			Index:    i,
			Original: original,
			Path:     m[1],
			Symbol:   m[2],
		}, next, true
	}

	if strings.ContainsAny(token, "*?[") {
		return ImportAction{
			Kind:     KindGlob,
			Index:    i,
			Original: original,
			Pattern:  token,
		}, next, true
	}

	return ImportAction{
		Kind:     KindFile,
		Index:    i,
		Original: original,
		Path:     token,
	}, next, true
}

// readToken scans a directive path/url token starting at the beginning of
// s, stopping at whitespace or a backtick. Returns the token and its byte
// length in s.
func readToken(s string) (string, int) {
	n := 0
	for n < len(s) {
		c := s[n]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '`' {
			break
		}
		n++
	}
	return s[:n], n
}

// matchCommandDirective matches !`CMD` starting at index i (src[i] == '!').
func matchCommandDirective(src string, i, end int) (ImportAction, int, bool) {
	if i+1 >= end || src[i+1] != '`' {
		return ImportAction{}, 0, false
	}
	closeIdx := strings.IndexByte(src[i+2:end], '`')
	if closeIdx == -1 {
		return ImportAction{}, 0, false
	}
	cmd := src[i+2 : i+2+closeIdx]
	if strings.TrimSpace(cmd) == "" {
		return ImportAction{}, 0, false
	}
	next := i + 2 + closeIdx + 1
	return ImportAction{
		Kind:     KindCommand,
		Index:    i,
		Original: src[i:next],
		Command:  cmd,
	}, next, true
}

// parseExecutableFences scans every fenced code block in src (regardless of
// safe-range status -- the fence markers themselves are not in a safe
// range) and emits an ExecutableFence action for any whose first body line
// begins with "#!".
func parseExecutableFences(src string) []ImportAction {
	var actions []ImportAction
	for _, span := range scanner.FencedSpans(src) {
		if span.BodyEnd <= span.HeaderEnd {
			continue
		}
		body := src[span.HeaderEnd:span.BodyEnd]
		if !strings.HasPrefix(body, "#!") {
			continue
		}
		// The action's original span covers the full fence, from the
		// opening fence line through the closing fence line, so the
		// injector can splice the whole block.
		fenceStart := findFenceStart(src, span.HeaderEnd)
		fenceEndExclusive := findFenceEnd(src, span.BodyEnd)
		actions = append(actions, ImportAction{
			Kind:     KindExecutableFence,
			Index:    fenceStart,
			Original: src[fenceStart:fenceEndExclusive],
			Language: span.Language,
			Body:     strings.TrimRight(body, "\n"),
		})
	}
	return actions
}

func findFenceStart(src string, headerEnd int) int {
	// headerEnd is one past the opening fence line's trailing newline (or
	// the opening line is the last line of src). Search for the newline
	// that precedes that line to find where it begins.
	searchEnd := headerEnd - 1
	if searchEnd < 0 {
		searchEnd = 0
	}
	if searchEnd > len(src) {
		searchEnd = len(src)
	}
	idx := strings.LastIndexByte(src[:searchEnd], '\n')
	if idx == -1 {
		return 0
	}
	return idx + 1
}

func findFenceEnd(src string, bodyEnd int) int {
	// The closing fence line starts at bodyEnd; find its end (including
	// the trailing newline, if present).
	nl := strings.IndexByte(src[bodyEnd:], '\n')
	if nl == -1 {
		return len(src)
	}
	return bodyEnd + nl + 1
}
