package resolvers

import (
	"errors"
	"strings"
	"testing"
)

func TestContextLimitForModel_KnownSubstring(t *testing.T) {
	cases := map[string]int{
		"claude-opus-4":   200_000,
		"claude-3-sonnet": 200_000,
		"claude-haiku":    200_000,
		"gpt-4-turbo":     128_000,
		"gpt-5":           272_000,
		"gemini-1.5-pro":  1_000_000,
	}
	for model, want := range cases {
		if got := ContextLimitForModel(model, 0); got != want {
			t.Errorf("ContextLimitForModel(%q): got %d, want %d", model, got, want)
		}
	}
}

func TestContextLimitForModel_UnknownFallsBackToDefault(t *testing.T) {
	got := ContextLimitForModel("some-unknown-model", 0)
	if got != DefaultContextLimit {
		t.Errorf("got %d, want %d", got, DefaultContextLimit)
	}
}

func TestContextLimitForModel_OverrideWins(t *testing.T) {
	got := ContextLimitForModel("claude-opus-4", 5_000)
	if got != 5_000 {
		t.Errorf("expected override to supersede model match, got %d", got)
	}
}

func TestEstimateTokens_EmptyStringIsZero(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestEstimateTokens_ApproximatesFourCharsPerToken(t *testing.T) {
	text := strings.Repeat("a", 400)
	got := EstimateTokens(text)
	if got != 100 {
		t.Errorf("got %d, want 100", got)
	}
}

func TestCheckBudget_BelowWarnThresholdIsSilent(t *testing.T) {
	warning, err := CheckBudget("short text", "claude-opus-4", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning != "" {
		t.Errorf("expected no warning, got %q", warning)
	}
}

func TestCheckBudget_SoftThresholdWarns(t *testing.T) {
	text := strings.Repeat("a", (WarnTokens+1)*4)
	warning, err := CheckBudget(text, "claude-opus-4", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning == "" {
		t.Error("expected a soft-threshold warning")
	}
}

func TestCheckBudget_HardLimitExceeded(t *testing.T) {
	text := strings.Repeat("a", (DefaultContextLimit+1)*4)
	_, err := CheckBudget(text, "unknown-model", 0)
	var overflow *ContextOverflow
	if !errors.As(err, &overflow) {
		t.Fatalf("expected *ContextOverflow, got %T: %v", err, err)
	}
}

func TestCheckBudget_ForceEnvVarBypassesHardLimit(t *testing.T) {
	t.Setenv(ForceContextEnvVar, "1")
	text := strings.Repeat("a", (DefaultContextLimit+1)*4)
	warning, err := CheckBudget(text, "unknown-model", 0)
	if err != nil {
		t.Fatalf("expected bypass to suppress the error, got %v", err)
	}
	if warning == "" {
		t.Error("expected a warning explaining the bypass")
	}
}
