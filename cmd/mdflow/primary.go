package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"strconv"
	"strings"

	"github.com/netzkontrast/mdflow/pkg/console"
	"github.com/netzkontrast/mdflow/pkg/engine"
	"github.com/netzkontrast/mdflow/pkg/tty"
)

// runPrimary implements ARG-PARSE for the `md <file.md> [flags]` form: scan
// the tool-reserved flags out of argv, resolve the remaining positional to
// a file (or fall through to PICKER when none is given), and hand
// everything else to engine.Run unmodified.
func runPrimary(args []string) int {
	opts, filePath, editRequested, err := scanArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		return 1
	}

	if filePath == "" {
		picked, err := pickAgentFile()
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			return 1
		}
		filePath = picked
	}

	if editRequested {
		if err := openInEditor(filePath); err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			return 1
		}
	}

	opts.FilePath = filePath
	opts.Cwd, _ = os.Getwd()
	if stdin, ok := readPipedStdin(); ok {
		opts.Stdin = stdin
	}

	return runEngine(opts)
}

// runAdHoc implements the `md.<command>`/`md.i.<command>` dispatch form:
// the first non-flag positional is the body of an implicit virtual agent.
func runAdHoc(command string, interactive bool, args []string) int {
	opts, body, _, err := scanArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		return 1
	}
	opts.AdHocBody = body
	opts.Command = command
	opts.Interactive = opts.Interactive || interactive
	opts.Cwd, _ = os.Getwd()
	if stdin, ok := readPipedStdin(); ok {
		opts.Stdin = stdin
	}

	return runEngine(opts)
}

func runEngine(opts engine.Options) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			cancel()
		}
	}()

	result, err := engine.Run(ctx, opts)
	if err != nil && result.ExitCode != 127 {
		// 127 (command not found) is already reported by the executor itself.
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
	}
	return result.ExitCode
}

// scanArgs splits args into the tool-reserved flags (consumed into Options),
// any "--_<varname> value" template-variable assignment, and everything
// else (passed through verbatim to the child command). The first
// non-flag positional becomes the returned path/body string.
func scanArgs(args []string) (engine.Options, string, bool, error) {
	opts := engine.Options{CLIVars: map[string]string{}}
	var positional string
	var passthrough []string
	var editRequested bool

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--_command" || a == "-_c":
			i++
			if i >= len(args) {
				return opts, "", false, fmt.Errorf("%s requires a value", a)
			}
			opts.Command = args[i]
		case a == "--_dry-run":
			opts.DryRun = true
		case a == "--_edit":
			editRequested = true
		case a == "--_trust":
			opts.TrustFlag = true
		case a == "--_no-cache":
			opts.NoCache = true
		case a == "--_context":
			i++
			if i >= len(args) {
				return opts, "", false, fmt.Errorf("--_context requires a value")
			}
			n, convErr := strconv.Atoi(args[i])
			if convErr != nil {
				return opts, "", false, fmt.Errorf("--_context: %w", convErr)
			}
			opts.ContextOverride = n
		case a == "--_quiet":
			opts.Quiet = true
		case a == "--_no-menu":
			opts.NoMenu = true
		case a == "--_no-history":
			opts.NoHistory = true
		case a == "--_interactive" || a == "--_i":
			opts.Interactive = true
		case a == "--raw":
			opts.Raw = true
		case strings.HasPrefix(a, "--_") && len(a) > 3:
			name := "_" + a[len("--_"):]
			i++
			if i >= len(args) {
				return opts, "", false, fmt.Errorf("%s requires a value", a)
			}
			opts.CLIVars[name] = args[i]
		case positional == "" && !strings.HasPrefix(a, "-"):
			positional = a
		default:
			passthrough = append(passthrough, a)
		}
	}

	opts.Passthrough = passthrough
	return opts, positional, editRequested, nil
}

// openInEditor opens path in $VISUAL or $EDITOR, waits for it to exit, and
// lets the caller continue with the (possibly edited) file.
func openInEditor(path string) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		return fmt.Errorf("--_edit requires VISUAL or EDITOR to be set")
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// pickAgentFile implements the picker state: when no file path was given
// on the command line, offer the agent markdown files found in the
// current directory. Non-interactive stdin is a hard failure rather than
// a silent guess.
func pickAgentFile() (string, error) {
	entries, err := os.ReadDir(".")
	if err != nil {
		return "", fmt.Errorf("PICKER: %w", err)
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		candidates = append(candidates, e.Name())
	}
	sort.Strings(candidates)

	if len(candidates) == 0 {
		return "", fmt.Errorf("no agent file given and no .md files found in the current directory")
	}
	if !tty.IsStdinTerminal() {
		return "", fmt.Errorf("no agent file given; pass one explicitly (stdin is not a terminal)")
	}

	options := make([]console.SelectOption, len(candidates))
	for i, c := range candidates {
		options[i] = console.SelectOption{Label: c, Value: c}
	}
	return console.Select("Which agent file?", options)
}

// readPipedStdin reads stdin when it is not a terminal, exposing it to the
// template engine via the "_stdin" variable.
func readPipedStdin() (string, bool) {
	if tty.IsStdinTerminal() {
		return "", false
	}
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return "", false
	}
	var b strings.Builder
	buf := make([]byte, 4096)
	for {
		n, readErr := os.Stdin.Read(buf)
		if n > 0 {
			b.Write(buf[:n])
		}
		if readErr != nil {
			break
		}
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}
