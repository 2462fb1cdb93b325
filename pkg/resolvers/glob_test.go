package resolvers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveGlob_ConcatenatesMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content-a")
	writeFile(t, dir, "b.txt", "content-b")

	out, err := ResolveGlob("*.txt", dir)
	if err != nil {
		t.Fatalf("ResolveGlob: %v", err)
	}
	if !strings.Contains(out, "a.txt\ncontent-a") || !strings.Contains(out, "b.txt\ncontent-b") {
		t.Errorf("expected both files with their headers, got %q", out)
	}
}

func TestResolveGlob_RecursivePattern(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, dir, "sub/nested.txt", "nested-content")

	out, err := ResolveGlob("**/*.txt", dir)
	if err != nil {
		t.Fatalf("ResolveGlob: %v", err)
	}
	if !strings.Contains(out, "nested-content") {
		t.Errorf("expected nested match, got %q", out)
	}
}

func TestResolveGlob_NoMatchesReturnsEmptyNotError(t *testing.T) {
	dir := t.TempDir()
	out, err := ResolveGlob("*.nonexistent", dir)
	if err != nil {
		t.Fatalf("expected no error for a non-matching glob, got %v", err)
	}
	if out != "" {
		t.Errorf("expected empty result, got %q", out)
	}
}

func TestResolveGlob_ExcludesBinaryFilesSilently(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.txt", "readable")
	if err := os.WriteFile(filepath.Join(dir, "photo.png"), []byte{0x89, 'P', 'N', 'G', 0x00}, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	out, err := ResolveGlob("*", dir)
	if err != nil {
		t.Fatalf("ResolveGlob: %v", err)
	}
	if strings.Contains(out, "photo.png") {
		t.Errorf("expected binary file excluded, got %q", out)
	}
	if !strings.Contains(out, "readable") {
		t.Errorf("expected text file included, got %q", out)
	}
}

func TestResolveGlob_InvalidPattern(t *testing.T) {
	dir := t.TempDir()
	_, err := ResolveGlob("[", dir)
	if err == nil {
		t.Fatal("expected an error for a malformed glob pattern")
	}
}
