// Package parser matches import/templating directives inside a markdown
// body's safe ranges and produces an ordered list of ImportAction values.
// Modeled on gh-aw's pkg/parser: small regex-driven matchers over a
// pre-scanned source, returning a plain slice rather than building an AST.
package parser

// Kind identifies which directive variant an ImportAction carries.
type Kind int

const (
	KindFile Kind = iota
	KindGlob
	KindURL
	KindCommand
	KindSymbol
	KindExecutableFence
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "File"
	case KindGlob:
		return "Glob"
	case KindURL:
		return "Url"
	case KindCommand:
		return "Command"
	case KindSymbol:
		return "Symbol"
	case KindExecutableFence:
		return "ExecutableFence"
	default:
		return "Unknown"
	}
}

// ImportAction is the tagged variant each import/templating directive
// match parses into: it carries its kind, kind-specific fields, the
// literal matched text, and its starting byte offset in the source.
type ImportAction struct {
	Kind     Kind
	Index    int
	Original string

	// File / Glob / Symbol
	Path string

	// File with a line range: @path:START-END (both inclusive, 1-based;
	// START may exceed END, honored as given).
	HasLineRange bool
	LineStart    int
	LineEnd      int

	// Symbol name for KindSymbol (@path#SYMBOL).
	Symbol string

	// Glob pattern for KindGlob.
	Pattern string

	// URL for KindURL.
	URL string

	// Shell command string for KindCommand (between backticks of !`CMD`).
	Command string

	// ExecutableFence fields.
	Language string
	Body     string
}
