package parser

import "testing"

func TestExtractFrontmatter_NoFrontmatterReturnsWholeBody(t *testing.T) {
	result, err := ExtractFrontmatter("just a prompt body\n")
	if err != nil {
		t.Fatalf("ExtractFrontmatter: %v", err)
	}
	if result.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", result.Frontmatter)
	}
	if result.Markdown != "just a prompt body\n" {
		t.Errorf("got %q", result.Markdown)
	}
}

func TestExtractFrontmatter_ParsesYAMLAndBody(t *testing.T) {
	content := "---\nmodel: sonnet\nprint: true\n---\nDo the thing.\n"
	result, err := ExtractFrontmatter(content)
	if err != nil {
		t.Fatalf("ExtractFrontmatter: %v", err)
	}
	if result.Frontmatter["model"] != "sonnet" {
		t.Errorf("got %v", result.Frontmatter["model"])
	}
	if result.Frontmatter["print"] != true {
		t.Errorf("got %v", result.Frontmatter["print"])
	}
	if result.Markdown != "Do the thing.\n" {
		t.Errorf("got %q", result.Markdown)
	}
}

func TestExtractFrontmatter_UnclosedFenceErrors(t *testing.T) {
	_, err := ExtractFrontmatter("---\nmodel: sonnet\nno closing fence\n")
	if err == nil {
		t.Fatal("expected error for unclosed frontmatter")
	}
	if _, ok := err.(*ErrMalformedFrontmatter); !ok {
		t.Errorf("expected *ErrMalformedFrontmatter, got %T", err)
	}
}

func TestExtractFrontmatter_SkipsLeadingShebangBeforeFence(t *testing.T) {
	content := "#!/usr/bin/env md\n---\nmodel: sonnet\n---\nDo the thing.\n"
	result, err := ExtractFrontmatter(content)
	if err != nil {
		t.Fatalf("ExtractFrontmatter: %v", err)
	}
	if result.Shebang != "#!/usr/bin/env md" {
		t.Errorf("got shebang %q", result.Shebang)
	}
	if result.Frontmatter["model"] != "sonnet" {
		t.Errorf("got %v", result.Frontmatter["model"])
	}
	if result.Markdown != "Do the thing.\n" {
		t.Errorf("got %q", result.Markdown)
	}
}

func TestExtractFrontmatter_ShebangWithoutFrontmatter(t *testing.T) {
	content := "#!/usr/bin/env md\nJust a prompt, no frontmatter.\n"
	result, err := ExtractFrontmatter(content)
	if err != nil {
		t.Fatalf("ExtractFrontmatter: %v", err)
	}
	if result.Shebang != "#!/usr/bin/env md" {
		t.Errorf("got shebang %q", result.Shebang)
	}
	if result.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", result.Frontmatter)
	}
	if result.Markdown != "Just a prompt, no frontmatter.\n" {
		t.Errorf("got %q", result.Markdown)
	}
}

func TestExtractFrontmatter_EmptyFrontmatterBlock(t *testing.T) {
	result, err := ExtractFrontmatter("---\n---\nbody text\n")
	if err != nil {
		t.Fatalf("ExtractFrontmatter: %v", err)
	}
	if result.Frontmatter != nil {
		t.Errorf("expected nil frontmatter for empty block, got %v", result.Frontmatter)
	}
	if result.Markdown != "body text\n" {
		t.Errorf("got %q", result.Markdown)
	}
}
