package parser

import "testing"

func TestParseInputs_NilIsNotAnError(t *testing.T) {
	names, specs, err := ParseInputs(nil)
	if err != nil {
		t.Fatalf("ParseInputs: %v", err)
	}
	if names != nil || specs != nil {
		t.Errorf("expected nil/nil for an absent _inputs key, got %v/%v", names, specs)
	}
}

func TestParseInputs_OrderedListPreservesOrder(t *testing.T) {
	names, specs, err := ParseInputs([]any{"topic", "audience", "tone"})
	if err != nil {
		t.Fatalf("ParseInputs: %v", err)
	}
	want := []string{"topic", "audience", "tone"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("position %d: got %q, want %q", i, names[i], n)
		}
	}
	if specs != nil {
		t.Errorf("expected no typed specs for the ordered-list form, got %v", specs)
	}
}

func TestParseInputs_OrderedListRejectsNonStringEntries(t *testing.T) {
	_, _, err := ParseInputs([]any{"topic", 42})
	var bad *InvalidInputsValue
	if !errAsInvalidInputsValue(err, &bad) {
		t.Fatalf("expected *InvalidInputsValue, got %T: %v", err, err)
	}
}

func TestParseInputs_TypedMapSortsNamesAndFillsSpecs(t *testing.T) {
	names, specs, err := ParseInputs(map[string]any{
		"topic": map[string]any{
			"type":        "string",
			"default":     "refactoring",
			"description": "what to work on",
			"required":    false,
		},
		"audience": map[string]any{
			"type":     "string",
			"required": true,
		},
	})
	if err != nil {
		t.Fatalf("ParseInputs: %v", err)
	}
	if len(names) != 2 || names[0] != "audience" || names[1] != "topic" {
		t.Fatalf("expected alphabetical order, got %v", names)
	}
	topic := specs["topic"]
	if topic.Default != "refactoring" || topic.Description != "what to work on" || topic.Required {
		t.Errorf("got %+v", topic)
	}
	audience := specs["audience"]
	if !audience.Required {
		t.Errorf("expected audience to be required, got %+v", audience)
	}
}

func TestParseInputs_TypedMapRejectsUnknownFields(t *testing.T) {
	_, _, err := ParseInputs(map[string]any{
		"topic": map[string]any{
			"type":    "string",
			"bogus":   "not a real field",
			"default": "x",
		},
	})
	var bad *InvalidInputDefinition
	if !errAsInvalidInputDefinition(err, &bad) {
		t.Fatalf("expected *InvalidInputDefinition, got %T: %v", err, err)
	}
}

func TestParseInputs_TypedMapRejectsBadType(t *testing.T) {
	_, _, err := ParseInputs(map[string]any{
		"topic": map[string]any{"type": "object"},
	})
	var bad *InvalidInputDefinition
	if !errAsInvalidInputDefinition(err, &bad) {
		t.Fatalf("expected *InvalidInputDefinition, got %T: %v", err, err)
	}
}

func TestParseInputs_RejectsUnsupportedShape(t *testing.T) {
	_, _, err := ParseInputs("topic")
	var bad *InvalidInputsValue
	if !errAsInvalidInputsValue(err, &bad) {
		t.Fatalf("expected *InvalidInputsValue, got %T: %v", err, err)
	}
}

// errAsInvalidInputsValue and errAsInvalidInputDefinition avoid importing
// "errors" just to call As once per test with a local pointer type.
func errAsInvalidInputsValue(err error, target **InvalidInputsValue) bool {
	v, ok := err.(*InvalidInputsValue)
	if ok {
		*target = v
	}
	return ok
}

func errAsInvalidInputDefinition(err error, target **InvalidInputDefinition) bool {
	v, ok := err.(*InvalidInputDefinition)
	if ok {
		*target = v
	}
	return ok
}
