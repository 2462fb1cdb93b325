// Command mdflow turns a markdown agent file into an invocation of an
// external AI-assistant command. See pkg/engine for the pipeline this
// entrypoint drives.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/netzkontrast/mdflow/pkg/console"
	"github.com/netzkontrast/mdflow/pkg/parser"
)

// version is set at build time by GoReleaser.
var version = "dev"

// toolSubcommands are consumed by the tool itself before any file-dispatch
// path is considered.
var toolSubcommands = map[string]bool{
	"help": true, "logs": true, "setup": true, "create": true, "explain": true,
	"version": true, "completion": true,
}

func main() {
	basename := filepath.Base(os.Args[0])
	if command, interactive, ok := parser.AdHocProgramCommand(basename); ok {
		os.Exit(runAdHoc(command, interactive, os.Args[1:]))
	}

	if len(os.Args) >= 2 && toolSubcommands[os.Args[1]] {
		if err := newRootCmd().Execute(); err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			os.Exit(1)
		}
		return
	}

	if len(os.Args) >= 2 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		_ = newRootCmd().Help()
		return
	}

	// No recognized subcommand: primary `md <file.md> [flags]` form. A bare
	// `md` with no positional at all falls through to the PICKER state
	// inside runPrimary rather than printing help.
	os.Exit(runPrimary(os.Args[1:]))
}
