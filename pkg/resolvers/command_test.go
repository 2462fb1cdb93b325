package resolvers

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestResolveCommand_CapturesStdout(t *testing.T) {
	out, err := ResolveCommand(context.Background(), "echo hello", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("ResolveCommand: %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("unexpected stdout: %q", out)
	}
}

func TestResolveCommand_NonZeroExitFails(t *testing.T) {
	_, err := ResolveCommand(context.Background(), "exit 3", t.TempDir(), nil)
	var failed *CommandImportFailed
	if !errors.As(err, &failed) {
		t.Fatalf("expected *CommandImportFailed, got %T: %v", err, err)
	}
	if failed.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", failed.ExitCode)
	}
}

func TestResolveCommand_StderrCapturedOnFailure(t *testing.T) {
	_, err := ResolveCommand(context.Background(), "echo oops 1>&2; exit 1", t.TempDir(), nil)
	var failed *CommandImportFailed
	if !errors.As(err, &failed) {
		t.Fatalf("expected *CommandImportFailed, got %T: %v", err, err)
	}
	if !strings.Contains(failed.Stderr, "oops") {
		t.Errorf("expected stderr captured, got %q", failed.Stderr)
	}
}

func TestResolveCommand_EnvOverlayIsVisible(t *testing.T) {
	out, err := ResolveCommand(context.Background(), "echo $MDFLOW_TEST_VAR", t.TempDir(), map[string]string{
		"MDFLOW_TEST_VAR": "overlay-value",
	})
	if err != nil {
		t.Fatalf("ResolveCommand: %v", err)
	}
	if strings.TrimSpace(out) != "overlay-value" {
		t.Errorf("expected overlay env visible to subprocess, got %q", out)
	}
}

func TestResolveCommand_RunsInBaseDir(t *testing.T) {
	dir := t.TempDir()
	out, err := ResolveCommand(context.Background(), "pwd", dir, nil)
	if err != nil {
		t.Fatalf("ResolveCommand: %v", err)
	}
	if !strings.Contains(out, dir) {
		t.Errorf("expected subprocess cwd %q, got %q", dir, out)
	}
}

func TestResolveExecutableFence_UsesShebangInterpreter(t *testing.T) {
	body := "#!/bin/sh\necho fenced-output"
	out, err := ResolveExecutableFence(context.Background(), body, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("ResolveExecutableFence: %v", err)
	}
	if strings.TrimSpace(out) != "fenced-output" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestResolveExecutableFence_NonZeroExitFails(t *testing.T) {
	body := "#!/bin/sh\nexit 2"
	_, err := ResolveExecutableFence(context.Background(), body, t.TempDir(), nil)
	var failed *CommandImportFailed
	if !errors.As(err, &failed) {
		t.Fatalf("expected *CommandImportFailed, got %T: %v", err, err)
	}
	if failed.ExitCode != 2 {
		t.Errorf("expected exit code 2, got %d", failed.ExitCode)
	}
}
