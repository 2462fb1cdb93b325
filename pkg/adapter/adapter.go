// Package adapter implements the per-command interactive-mode transforms
// and command resolution: the known adapters for claude/gemini/codex/
// copilot edit an agent's metadata map in place when interactive mode is
// requested, and ResolveCommand picks the child command from CLI flag,
// filename suffix, or metadata hint, in that priority order.
package adapter

import (
	"strings"

	"github.com/netzkontrast/mdflow/pkg/parser"
)

// NoCommand is returned when no command resolution strategy succeeds.
type NoCommand struct{}

func (e *NoCommand) Error() string {
	return "no command: pass --_command, use a NAME.<command>.md filename, or set a command hint in metadata"
}

// Request carries every input to command resolution, in ResolveCommand's
// priority order: CLI flag > filename suffix > metadata hint.
type Request struct {
	CLICommand      string // --_command / -_c, empty if not given
	Filename        string
	MetadataCommand string // rare optional metadata-provided hint
}

// Resolved is the outcome of command resolution: the chosen command name
// and whether interactive mode was requested alongside it.
type Resolved struct {
	Command     string
	Interactive bool
}

// ResolveCommand resolves the child command from a Request, in priority
// order.
func ResolveCommand(req Request) (Resolved, error) {
	if req.CLICommand != "" {
		return Resolved{Command: req.CLICommand}, nil
	}
	if cmd, interactive, ok := parser.FilenameCommand(req.Filename); ok {
		return Resolved{Command: cmd, Interactive: interactive}, nil
	}
	if req.MetadataCommand != "" {
		return Resolved{Command: req.MetadataCommand}, nil
	}
	return Resolved{}, &NoCommand{}
}

// Metadata is the mutable key/value map an adapter edits in place.
type Metadata map[string]any

// truthy reports whether a metadata value should be treated as boolean
// true: the bool true, or the strings "true"/"1"/"yes" (case-insensitive).
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}

// WantsInteractive reports whether metadata, a CLI flag, or the filename's
// ".i." segment requests interactive mode.
func WantsInteractive(meta Metadata, filenameInteractive, cliFlag bool) bool {
	if cliFlag || filenameInteractive {
		return true
	}
	if v, ok := meta["_interactive"]; ok && truthy(v) {
		return true
	}
	if v, ok := meta["_i"]; ok && truthy(v) {
		return true
	}
	return false
}

// ApplyInteractive mutates meta in place per the known adapter for
// command. Unknown commands simply drop the interactive-request flags.
func ApplyInteractive(command string, meta Metadata) {
	switch command {
	case "claude":
		delete(meta, "print")
	case "codex":
		delete(meta, "_subcommand")
	case "gemini":
		meta["$1"] = "prompt-interactive"
	case "copilot":
		meta["$1"] = "interactive"
	}
	delete(meta, "_interactive")
	delete(meta, "_i")
}
