// Package executor spawns the resolved child command, tees its output in
// print mode (or hands it a real pty in interactive mode so tools that
// refuse to run without a tty still work), maps the child's outcome to
// mdflow's exit-code rules, and on failure offers the Retry / Fix-with-AI
// / Quit menu.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/creack/pty"
	"github.com/netzkontrast/mdflow/pkg/console"
	"github.com/netzkontrast/mdflow/pkg/logger"
	"golang.org/x/term"
)

var log = logger.New("mdflow:executor")

// fixPromptTailBytes is how much of the trailing stderr/stdout the
// Fix-with-AI prompt quotes.
const fixPromptTailBytes = 2000

// Request describes a single child-process invocation.
type Request struct {
	Command     string
	Args        []string
	Dir         string
	Env         map[string]string
	Stdin       string
	Interactive bool
	Quiet       bool
}

// Result carries a completed run's outcome. Stdout/Stderr are populated
// only in print mode; interactive mode's output goes straight to the
// caller's terminal via the allocated pty.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandNotFound reports that the child binary could not be located on
// PATH, which Run maps to exit code 127.
type CommandNotFound struct {
	Command string
}

func (e *CommandNotFound) Error() string {
	return fmt.Sprintf("command not found: %s", e.Command)
}

// Run spawns req.Command and waits for it to finish, teeing or inheriting
// its streams according to req.Interactive.
func Run(ctx context.Context, req Request) (Result, error) {
	if _, err := exec.LookPath(req.Command); err != nil {
		fmt.Fprintf(os.Stderr, "mdflow: command not found: %s\n", req.Command)
		return Result{ExitCode: 127}, &CommandNotFound{Command: req.Command}
	}

	cmd := exec.CommandContext(ctx, req.Command, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = mergedEnv(req.Env)

	if req.Interactive {
		return runInteractive(cmd, req)
	}
	return runCaptured(cmd, req)
}

func mergedEnv(overlay map[string]string) []string {
	env := os.Environ()
	for k, v := range overlay {
		env = append(env, k+"="+v)
	}
	return env
}

// runInteractive allocates a pty for cmd so the child always sees a real
// terminal, forwards the caller's stdin into it, mirrors its output to the
// caller's stdout, and puts the caller's own stdin into raw mode for the
// duration of the run so keystrokes reach the child immediately.
func runInteractive(cmd *exec.Cmd, req Request) (Result, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return Result{ExitCode: 1}, err
	}
	defer ptmx.Close()

	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(h), Cols: uint16(w)})
	}

	var restore func()
	if stdinFd := int(os.Stdin.Fd()); term.IsTerminal(stdinFd) {
		if oldState, err := term.MakeRaw(stdinFd); err == nil {
			restore = func() { _ = term.Restore(stdinFd, oldState) }
		}
	}
	if restore != nil {
		defer restore()
	}

	copyDone := make(chan struct{})
	go func() {
		_, _ = io.Copy(os.Stdout, ptmx)
		close(copyDone)
	}()

	if req.Stdin != "" {
		go func() {
			_, _ = io.Copy(ptmx, strings.NewReader(req.Stdin))
		}()
	} else {
		go func() {
			_, _ = io.Copy(ptmx, os.Stdin)
		}()
	}

	waitErr := cmd.Wait()
	<-copyDone

	return Result{ExitCode: exitCodeFromWaitErr(waitErr)}, nil
}

// runCaptured runs cmd with its stdin fed from req.Stdin and its
// stdout/stderr teed to both the caller's terminal and an in-memory
// buffer, "Tee" paragraph. io.MultiWriter is stdlib
// but nothing in the domain stack offers a tee primitive beyond it; the
// two consumers (terminal, buffer) never block each other since neither
// a bytes.Buffer write nor a normal terminal write blocks on the other.
func runCaptured(cmd *exec.Cmd, req Request) (Result, error) {
	cmd.Stdin = strings.NewReader(req.Stdin)

	var stdoutBuf, stderrBuf bytes.Buffer
	if req.Quiet {
		cmd.Stdout = &stdoutBuf
		cmd.Stderr = &stderrBuf
	} else {
		cmd.Stdout = teeWriter(os.Stdout, &stdoutBuf)
		cmd.Stderr = teeWriter(os.Stderr, &stderrBuf)
	}

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: 1}, err
	}

	waitErr := cmd.Wait()

	return Result{
		ExitCode: exitCodeFromWaitErr(waitErr),
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
	}, nil
}

// teeWriter wraps terminal in brokenPipeGuard so a downstream SIGPIPE/EPIPE
// on the tool's own stdout can't crash mdflow, exit
// code rules, then fans writes out to both the terminal and the collector.
func teeWriter(terminal io.Writer, collector *bytes.Buffer) io.Writer {
	return io.MultiWriter(&brokenPipeGuard{w: terminal}, collector)
}

type brokenPipeGuard struct {
	w      io.Writer
	broken bool
}

func (g *brokenPipeGuard) Write(p []byte) (int, error) {
	if g.broken {
		return len(p), nil
	}
	n, err := g.w.Write(p)
	if isBrokenPipe(err) {
		g.broken = true
		return len(p), nil
	}
	return n, err
}

func isBrokenPipe(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.EPIPE) || strings.Contains(err.Error(), "broken pipe")
}

// exitCodeFromWaitErr maps cmd.Wait()'s error to a child exit code. A nil
// error is success (0); an *exec.ExitError carries the real code; anything
// else (start failure surfaced late, signal kill) falls back to 1.
func exitCodeFromWaitErr(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// FailureChoice is the outcome of the post-failure menu.
type FailureChoice string

const (
	ChoiceRetry FailureChoice = "retry"
	ChoiceFix   FailureChoice = "fix"
	ChoiceQuit  FailureChoice = "quit"
)

// PromptFailureMenu shows the Retry/Fix-with-AI/Quit menu. Callers only
// present this when stdin is a TTY and the child's exit code is
// non-zero.
func PromptFailureMenu() (FailureChoice, error) {
	choice, err := console.Select("Command failed. What now?", []console.SelectOption{
		{Label: "Retry", Value: string(ChoiceRetry)},
		{Label: "Fix with AI", Value: string(ChoiceFix)},
		{Label: "Quit", Value: string(ChoiceQuit)},
	})
	if err != nil {
		return "", err
	}
	return FailureChoice(choice), nil
}

// FixPrompt builds the secondary prompt sent back through the pipeline
// when the user picks Fix-with-AI, in a fixed section order: STDERR,
// then STDOUT, then the original request.
func FixPrompt(originalRequest string, exitCode int, stdout, stderr string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The previous command failed with exit code %d.\n\n", exitCode)
	b.WriteString("--- STDERR ---\n")
	b.WriteString(tail(stderr, fixPromptTailBytes))
	b.WriteString("\n\n--- STDOUT (partial) ---\n")
	b.WriteString(tail(stdout, fixPromptTailBytes))
	b.WriteString("\n\nOriginal request:\n")
	b.WriteString(originalRequest)
	return b.String()
}

// tail returns the last n bytes of s; a rune boundary may be cut but that
// matches the fixed byte budget the Fix-with-AI prompt uses.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
