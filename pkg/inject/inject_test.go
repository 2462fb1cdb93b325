package inject

import (
	"testing"

	"github.com/netzkontrast/mdflow/pkg/parser"
)

func action(index int, original string) parser.ImportAction {
	return parser.ImportAction{Kind: parser.KindFile, Index: index, Original: original}
}

func TestInject_ReverseSpliceCorrectness(t *testing.T) {
	src := "@./a.md and @./b.md"
	aIdx := 0
	bIdx := len("@./a.md and ")

	resolved := []Resolved{
		{Action: action(bIdx, "@./b.md"), Content: "BBB"},
		{Action: action(aIdx, "@./a.md"), Content: "AAA"},
	}
	got := Inject(src, resolved)
	if got != "AAA and BBB" {
		t.Fatalf("got %q, want %q", got, "AAA and BBB")
	}

	// Order of the resolved slice must not matter.
	reversed := []Resolved{resolved[1], resolved[0]}
	got2 := Inject(src, reversed)
	if got2 != got {
		t.Fatalf("result depends on resolved-list order: %q vs %q", got, got2)
	}
}

func TestInject_Associative(t *testing.T) {
	src := "[1] and [2] and [3]"
	one := action(0, "[1]")
	two := action(len("[1] and "), "[2]")
	three := action(len("[1] and [2] and "), "[3]")

	all := []Resolved{
		{Action: one, Content: "ONE"},
		{Action: two, Content: "TWO"},
		{Action: three, Content: "THREE"},
	}
	combined := Inject(src, all)

	// Inject disjoint subsets separately in any split and compare.
	firstHalf := Inject(src, []Resolved{all[0]})
	full := Inject(firstHalf, []Resolved{
		{Action: two, Content: "TWO"},
		{Action: three, Content: "THREE"},
	})
	if full != combined {
		t.Fatalf("splitting injection changed the result: %q vs %q", full, combined)
	}
}

func TestInject_NoOpOnEmptyResolved(t *testing.T) {
	src := "nothing to replace here"
	if got := Inject(src, nil); got != src {
		t.Fatalf("expected unchanged source, got %q", got)
	}
}
