package argv

import (
	"reflect"
	"testing"

	"github.com/netzkontrast/mdflow/pkg/config"
)

func TestMerge_MetadataOverridesConfig(t *testing.T) {
	cfg := config.CommandConfig{"print": true, "model": "haiku"}
	meta := map[string]any{"model": "sonnet"}
	merged := Merge(cfg, meta)
	if merged["model"] != "sonnet" {
		t.Errorf("got %v, want sonnet", merged["model"])
	}
	if merged["print"] != true {
		t.Errorf("expected print carried over from config")
	}
}

func TestBuild_BooleanTrueAppendsFlag(t *testing.T) {
	argv := Build(map[string]any{"print": true}, nil)
	if !reflect.DeepEqual(argv, []string{"--print"}) {
		t.Errorf("got %v", argv)
	}
}

func TestBuild_BooleanFalseOmitted(t *testing.T) {
	argv := Build(map[string]any{"print": false}, nil)
	if len(argv) != 0 {
		t.Errorf("got %v, want empty", argv)
	}
}

func TestBuild_StringFlag(t *testing.T) {
	argv := Build(map[string]any{"model": "sonnet"}, nil)
	if !reflect.DeepEqual(argv, []string{"--model", "sonnet"}) {
		t.Errorf("got %v", argv)
	}
}

func TestBuild_SingleCharFlagUsesShortForm(t *testing.T) {
	argv := Build(map[string]any{"m": "sonnet"}, nil)
	if !reflect.DeepEqual(argv, []string{"-m", "sonnet"}) {
		t.Errorf("got %v", argv)
	}
}

func TestBuild_ArrayRepeatsFlag(t *testing.T) {
	argv := Build(map[string]any{"tag": []string{"a", "b"}}, nil)
	if !reflect.DeepEqual(argv, []string{"--tag", "a", "--tag", "b"}) {
		t.Errorf("got %v", argv)
	}
}

func TestBuild_ReservedKeysExcluded(t *testing.T) {
	argv := Build(map[string]any{"_env": map[string]string{"X": "1"}, "_inputs": []string{"a"}}, nil)
	if len(argv) != 0 {
		t.Errorf("got %v, want reserved keys excluded", argv)
	}
}

func TestBuild_PositionalOrdering(t *testing.T) {
	argv := Build(map[string]any{"$2": "second", "$1": "first"}, nil)
	if !reflect.DeepEqual(argv, []string{"first", "second"}) {
		t.Errorf("got %v", argv)
	}
}

func TestBuild_PositionalTrueUsesNamedFlag(t *testing.T) {
	argv := Build(map[string]any{"$1": true}, PositionalNames{1: "prompt"})
	if !reflect.DeepEqual(argv, []string{"--prompt"}) {
		t.Errorf("got %v", argv)
	}
}

func TestBuild_DeterministicFlagOrder(t *testing.T) {
	argv1 := Build(map[string]any{"b": "2", "a": "1"}, nil)
	argv2 := Build(map[string]any{"a": "1", "b": "2"}, nil)
	if !reflect.DeepEqual(argv1, argv2) {
		t.Errorf("expected stable ordering, got %v vs %v", argv1, argv2)
	}
}

func TestWithPassthrough_AppendsAfterBuilt(t *testing.T) {
	built := []string{"--model", "sonnet"}
	out := WithPassthrough(built, []string{"--model", "opus"})
	want := []string{"--model", "sonnet", "--model", "opus"}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("got %v, want %v", out, want)
	}
}
