package resolvers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpand_PlainFileImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "snippet.md", "snippet body")

	src := "before\n@snippet.md\nafter"
	out, err := Expand(context.Background(), src, Environment{BaseDir: dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !strings.Contains(out, "snippet body") {
		t.Errorf("expected expanded content, got %q", out)
	}
	if strings.Contains(out, "@snippet.md") {
		t.Errorf("directive should have been replaced, got %q", out)
	}
}

func TestExpand_RecursiveImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "leaf.md", "leaf content")
	writeFile(t, dir, "middle.md", "middle start\n@leaf.md\nmiddle end")

	src := "@middle.md"
	out, err := Expand(context.Background(), src, Environment{BaseDir: dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !strings.Contains(out, "leaf content") {
		t.Errorf("expected transitively expanded content, got %q", out)
	}
	if !strings.Contains(out, "middle start") || !strings.Contains(out, "middle end") {
		t.Errorf("expected middle.md content preserved, got %q", out)
	}
}

func TestExpand_NoImportsReturnsSourceUnchanged(t *testing.T) {
	src := "nothing to see here"
	out, err := Expand(context.Background(), src, Environment{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if out != src {
		t.Errorf("expected unchanged source, got %q", out)
	}
}

func TestExpand_DetectsDirectCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "@b.md")
	writeFile(t, dir, "b.md", "@a.md")

	_, err := Expand(context.Background(), "@a.md", Environment{BaseDir: dir})
	if err == nil {
		t.Fatal("expected an import cycle error")
	}
	var cycle *ImportCycle
	if !errors.As(err, &cycle) {
		t.Errorf("expected *ImportCycle, got %T: %v", err, err)
	}
}

func TestExpand_SelfCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "self.md", "@self.md")

	_, err := Expand(context.Background(), "@self.md", Environment{BaseDir: dir})
	if err == nil {
		t.Fatal("expected an import cycle error for self-reference")
	}
}

func TestExpand_LineRangeIsNotRecursivelyExpanded(t *testing.T) {
	dir := t.TempDir()
	// If the sliced range happened to contain "@leaf.md" it must NOT be
	// expanded further: a line-ranged excerpt is a literal slice.
	writeFile(t, dir, "leaf.md", "leaf content")
	writeFile(t, dir, "excerpt.md", "line one\n@leaf.md\nline three")

	src := "@excerpt.md:2-2"
	out, err := Expand(context.Background(), src, Environment{BaseDir: dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !strings.Contains(out, "@leaf.md") {
		t.Errorf("expected the literal directive text preserved in the excerpt, got %q", out)
	}
}

func TestExpand_GlobImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "one-content")
	writeFile(t, dir, "two.txt", "two-content")

	src := "@*.txt"
	out, err := Expand(context.Background(), src, Environment{BaseDir: dir})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !strings.Contains(out, "one-content") || !strings.Contains(out, "two-content") {
		t.Errorf("expected both glob matches present, got %q", out)
	}
}

func TestExpand_MissingFilePropagatesError(t *testing.T) {
	dir := t.TempDir()
	_, err := Expand(context.Background(), "@missing.md", Environment{BaseDir: dir})
	if err == nil {
		t.Fatal("expected an error for a missing file import")
	}
}

func TestExpand_MaxDepthExceeded(t *testing.T) {
	dir := t.TempDir()
	// A long chain that bottoms out without a literal cycle, to isolate the
	// depth cap from cycle detection.
	const chainLen = MaxExpansionDepth + 4
	for i := 0; i < chainLen; i++ {
		name := chainFileName(i)
		var body string
		if i == chainLen-1 {
			body = "bottom"
		} else {
			body = "@" + chainFileName(i+1)
		}
		writeFile(t, dir, name, body)
	}

	_, err := Expand(context.Background(), "@"+chainFileName(0), Environment{BaseDir: dir})
	if err == nil {
		t.Fatal("expected a max-depth error")
	}
	var depthErr *MaxDepthExceeded
	if !errors.As(err, &depthErr) {
		t.Errorf("expected *MaxDepthExceeded, got %T: %v", err, err)
	}
}

func chainFileName(i int) string {
	return "chain" + string(rune('a'+i%26)) + "-" + itoa(i) + ".md"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

