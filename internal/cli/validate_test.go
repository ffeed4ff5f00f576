package cli

import "testing"

func TestValidateStructRejectsMissingRequiredField(t *testing.T) {
	t.Parallel()
	cfg := DevConfig{Port: 3000, Host: "localhost"}
	err := validate.Struct(&cfg)
	if err == nil {
		t.Fatal("expected a validation error for an empty Path")
	}
	wrapped := renderValidationError("dev", err)
	if _, ok := wrapped.(usageError); !ok {
		t.Fatalf("got %T, want usageError", wrapped)
	}
}

func TestValidateStructAcceptsCompleteConfig(t *testing.T) {
	t.Parallel()
	cfg := DevConfig{Path: "./api.rqc", Port: 3000, Host: "localhost"}
	if err := validate.Struct(&cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRenderValidationErrorPassesThroughNonValidationErrors(t *testing.T) {
	t.Parallel()
	other := newUsageError("boom")
	if got := renderValidationError("dev", other); got != other {
		t.Fatalf("expected the original error to pass through unchanged, got %v", got)
	}
}
