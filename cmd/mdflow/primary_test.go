package main

import "testing"

func TestScanArgs_PositionalIsFirstNonFlag(t *testing.T) {
	_, path, _, err := scanArgs([]string{"agent.claude.md", "--model", "opus"})
	if err != nil {
		t.Fatalf("scanArgs: %v", err)
	}
	if path != "agent.claude.md" {
		t.Errorf("got positional %q", path)
	}
}

func TestScanArgs_ReservedFlagsAreConsumed(t *testing.T) {
	opts, path, edit, err := scanArgs([]string{
		"agent.md", "--_dry-run", "--_quiet", "--_command", "claude", "--_context", "4000", "--_edit",
	})
	if err != nil {
		t.Fatalf("scanArgs: %v", err)
	}
	if !opts.DryRun || !opts.Quiet {
		t.Error("expected --_dry-run and --_quiet to be consumed")
	}
	if opts.Command != "claude" {
		t.Errorf("got command %q", opts.Command)
	}
	if opts.ContextOverride != 4000 {
		t.Errorf("got context override %d", opts.ContextOverride)
	}
	if !edit {
		t.Error("expected --_edit to be reported")
	}
	if path != "agent.md" {
		t.Errorf("got positional %q", path)
	}
}

func TestScanArgs_TemplateVarFlagsArePulledOut(t *testing.T) {
	opts, _, _, err := scanArgs([]string{"agent.md", "--_topic", "refactoring"})
	if err != nil {
		t.Fatalf("scanArgs: %v", err)
	}
	if opts.CLIVars["_topic"] != "refactoring" {
		t.Errorf("got CLIVars %v", opts.CLIVars)
	}
}

func TestScanArgs_UnknownFlagsPassThrough(t *testing.T) {
	opts, path, _, err := scanArgs([]string{"agent.md", "--model", "opus", "--verbose"})
	if err != nil {
		t.Fatalf("scanArgs: %v", err)
	}
	if path != "agent.md" {
		t.Errorf("got positional %q", path)
	}
	want := []string{"--model", "opus", "--verbose"}
	if len(opts.Passthrough) != len(want) {
		t.Fatalf("got passthrough %v", opts.Passthrough)
	}
	for i, w := range want {
		if opts.Passthrough[i] != w {
			t.Errorf("passthrough[%d] = %q, want %q", i, opts.Passthrough[i], w)
		}
	}
}

func TestScanArgs_MissingValueErrors(t *testing.T) {
	if _, _, _, err := scanArgs([]string{"--_command"}); err == nil {
		t.Fatal("expected error for --_command with no value")
	}
	if _, _, _, err := scanArgs([]string{"--_context", "not-a-number"}); err == nil {
		t.Fatal("expected error for non-numeric --_context")
	}
}
