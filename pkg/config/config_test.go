package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMerge_LaterWinsOnOverlap(t *testing.T) {
	a := Map{Commands: map[string]CommandConfig{"claude": {"model": "sonnet", "print": true}}}
	b := Map{Commands: map[string]CommandConfig{"claude": {"model": "opus"}}}

	merged := Merge(a, b)
	if merged.Commands["claude"]["model"] != "opus" {
		t.Fatalf("expected override to win, got %v", merged.Commands["claude"]["model"])
	}
	if merged.Commands["claude"]["print"] != true {
		t.Fatalf("expected non-overlapping key preserved, got %v", merged.Commands["claude"]["print"])
	}
}

func TestMerge_Associative(t *testing.T) {
	a := Map{Commands: map[string]CommandConfig{"claude": {"a": 1}}}
	b := Map{Commands: map[string]CommandConfig{"gemini": {"b": 2}}}
	c := Map{Commands: map[string]CommandConfig{"codex": {"c": 3}}}

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))

	if len(left.Commands) != len(right.Commands) {
		t.Fatalf("associativity mismatch: %v vs %v", left, right)
	}
	for cmd, cfg := range left.Commands {
		for k, v := range cfg {
			if right.Commands[cmd][k] != v {
				t.Fatalf("associativity mismatch on %s.%s: %v vs %v", cmd, k, v, right.Commands[cmd][k])
			}
		}
	}
}

func TestMerge_DoesNotMutateBuiltinDefaults(t *testing.T) {
	before := len(BuiltinDefaults.Commands["claude"])
	override := Map{Commands: map[string]CommandConfig{"claude": {"new_key": "value"}}}
	_ = Merge(BuiltinDefaults, override)

	if len(BuiltinDefaults.Commands["claude"]) != before {
		t.Fatalf("BuiltinDefaults was mutated: now has %d keys, want %d",
			len(BuiltinDefaults.Commands["claude"]), before)
	}
	if _, exists := BuiltinDefaults.Commands["claude"]["new_key"]; exists {
		t.Fatal("BuiltinDefaults leaked a key from an override map")
	}
}

func TestLoad_MissingFileYieldsEmpty(t *testing.T) {
	m := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if len(m.Commands) != 0 {
		t.Fatalf("expected empty map for missing file, got %+v", m)
	}
}

func TestLoad_MalformedFileRecoversLocally(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("commands: [this is not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := Load(path)
	if len(m.Commands) != 0 {
		t.Fatalf("expected empty map for malformed file, got %+v", m)
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mdflow.config.yaml")
	yamlContent := "commands:\n  claude:\n    model: opus\n    print: true\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatal(err)
	}
	m := Load(path)
	if m.Commands["claude"]["model"] != "opus" {
		t.Fatalf("unexpected parse result: %+v", m)
	}
}
