// Package scanner finds "safe ranges" in a markdown body: the byte spans
// that lie outside fenced code blocks and inline code spans, where import
// directives are legal to parse. Modeled on gh-aw's frontmatter/grammar
// scanning style (small hand-rolled lexers over line-oriented markdown
// rather than a full CommonMark parser).
package scanner

import (
	"strings"

	"github.com/netzkontrast/mdflow/pkg/logger"
)

var log = logger.New("mdflow:scanner")

// Range is a half-open byte range [Start, End) within a source string.
type Range struct {
	Start int
	End   int
}

type scanContext int

const (
	ctxNormal scanContext = iota
	ctxFenced
	ctxInlineCode
)

// SafeRanges returns the non-overlapping, strictly increasing list of byte
// ranges in src where directive parsing is legal (outside fenced code
// blocks and inline code spans). Unterminated fences/spans are recovered by
// treating end-of-input as their terminator; SafeRanges never fails.
func SafeRanges(src string) []Range {
	var ranges []Range
	n := len(src)
	if n == 0 {
		return ranges
	}

	ctx := ctxNormal
	normalStart := 0
	var fenceChar byte
	var fenceLen int

	i := 0
	for i < n {
		lineStart := i
		lineEnd := indexByteFrom(src, '\n', i)
		if lineEnd == -1 {
			lineEnd = n
		}
		line := src[lineStart:lineEnd]

		switch ctx {
		case ctxNormal:
			if ch, count, ok := fenceOpener(line); ok {
				ranges = appendRange(ranges, normalStart, lineStart)
				ctx = ctxFenced
				fenceChar = ch
				fenceLen = count
			} else {
				// Scan the line for inline code spans; inline code never
				// crosses a line boundary.
				normalStart = scanInlineCode(src, line, lineStart, normalStart, &ranges)
			}
		case ctxFenced:
			if isFenceCloser(line, fenceChar, fenceLen) {
				ctx = ctxNormal
				normalStart = lineEnd + 1
			}
		case ctxInlineCode:
			// unreachable: inline code is resolved within scanInlineCode
		}

		i = lineEnd + 1
	}

	if ctx == ctxNormal {
		ranges = appendRange(ranges, normalStart, n)
	}
	// An unterminated fence simply drops the remainder (it is never safe).

	log.Printf("SafeRanges: input=%d bytes, ranges=%d", n, len(ranges))
	return ranges
}

// scanInlineCode walks a single line, splitting out inline code spans
// delimited by a single backtick (closed by the next backtick or EOL), and
// appends the normal-text sub-ranges found before the line's end to ranges.
// A backtick pair directly after '!' is a "!`CMD`" command directive, not
// inline code, and stays in the normal text. It returns the normalStart to
// resume from: unchanged when the line opens no inline code span, otherwise
// just past the last span's closing backtick (or the line's end when that
// span is unterminated).
func scanInlineCode(src, line string, lineStart, normalStart int, ranges *[]Range) int {
	cursor := 0
	for cursor < len(line) {
		idx := strings.IndexByte(line[cursor:], '`')
		if idx == -1 {
			break
		}
		backtickPos := cursor + idx
		// A run of two-or-more backticks is not treated as inline code by
		// this scanner (it would require fence-like run matching); skip
		// past a doubled backtick without opening a span.
		if backtickPos+1 < len(line) && line[backtickPos+1] == '`' {
			cursor = backtickPos + 2
			continue
		}
		// Open inline code: close at next backtick or EOL.
		closeIdx := strings.IndexByte(line[backtickPos+1:], '`')
		// A "!`CMD`" command directive is not inline code: leave it in the
		// safe range so the parser can match it.
		if backtickPos > 0 && line[backtickPos-1] == '!' && closeIdx != -1 {
			cursor = backtickPos + 1 + closeIdx + 1
			continue
		}
		absOpen := lineStart + backtickPos
		*ranges = appendRange(*ranges, normalStart, absOpen)
		if closeIdx == -1 {
			// Unterminated: rest of line is code, EOL terminates it.
			normalStart = lineStart + len(line)
			return normalStart
		}
		absClose := lineStart + backtickPos + 1 + closeIdx
		normalStart = absClose + 1
		cursor = backtickPos + 1 + closeIdx + 1
	}
	return normalStart
}

// fenceOpener reports whether line opens a fenced code block: its first
// non-whitespace run is three-or-more of the same fence character
// (backtick or tilde). The info string (language) after it is ignored.
func fenceOpener(line string) (ch byte, count int, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 3 {
		return 0, 0, false
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return 0, 0, false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	return c, n, true
}

// isFenceCloser reports whether line closes a fence opened with (ch, count):
// the same character repeated at least count times, starting at the line's
// first non-whitespace position.
func isFenceCloser(line string, ch byte, count int) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < count {
		return false
	}
	for i := 0; i < count; i++ {
		if trimmed[i] != ch {
			return false
		}
	}
	rest := strings.TrimRight(trimmed[count:], " \t")
	return rest == ""
}

func indexByteFrom(s string, b byte, from int) int {
	idx := strings.IndexByte(s[from:], b)
	if idx == -1 {
		return -1
	}
	return from + idx
}

func appendRange(ranges []Range, start, end int) []Range {
	if end <= start {
		return ranges
	}
	return append(ranges, Range{Start: start, End: end})
}

// FencedSpan is a fenced code block discovered during scanning, used by the
// parser's second pass to detect executable (`#!`-prefixed) fences.
type FencedSpan struct {
	// HeaderEnd is the byte offset just past the opening fence line
	// (including its newline), i.e. where the fence body begins.
	HeaderEnd int
	// BodyEnd is the byte offset where the fence body ends (exclusive of
	// the closing fence line).
	BodyEnd int
	// Language is the info string following the opening fence marker.
	Language string
}

// FencedSpans returns every fenced code block in src, in source order,
// regardless of nesting depth (fences cannot nest in CommonMark, so this is
// a flat list). Unterminated fences extend to end-of-input.
func FencedSpans(src string) []FencedSpan {
	var spans []FencedSpan
	n := len(src)
	i := 0
	for i < n {
		lineStart := i
		lineEnd := indexByteFrom(src, '\n', i)
		if lineEnd == -1 {
			lineEnd = n
		}
		line := src[lineStart:lineEnd]

		if ch, count, ok := fenceOpener(line); ok {
			trimmed := strings.TrimLeft(line, " \t")
			lang := strings.TrimSpace(trimmed[count:])
			headerEnd := lineEnd + 1
			if headerEnd > n {
				headerEnd = n
			}
			bodyEnd := n
			cursor := headerEnd
			for cursor < n {
				innerLineStart := cursor
				innerLineEnd := indexByteFrom(src, '\n', cursor)
				if innerLineEnd == -1 {
					innerLineEnd = n
				}
				innerLine := src[innerLineStart:innerLineEnd]
				if isFenceCloser(innerLine, ch, count) {
					bodyEnd = innerLineStart
					cursor = innerLineEnd + 1
					break
				}
				cursor = innerLineEnd + 1
			}
			spans = append(spans, FencedSpan{HeaderEnd: headerEnd, BodyEnd: bodyEnd, Language: lang})
			i = cursor
			continue
		}
		i = lineEnd + 1
	}
	return spans
}
