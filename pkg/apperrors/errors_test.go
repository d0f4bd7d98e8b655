package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorFormatting(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(CodeUpstream, "failed to upload proof", cause)

	if got, want := err.Error(), "[UPSTREAM] failed to upload proof: connection reset"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("AppError should unwrap to its cause")
	}
	if got, want := Validation("quantity must be positive").Error(), "[VALIDATION] quantity must be positive"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("redeem: %w", New(CodeInsufficientPoints, "not enough points", nil))
	if CodeOf(err) != CodeInsufficientPoints {
		t.Errorf("CodeOf = %s", CodeOf(err))
	}
	if !Is(err, CodeInsufficientPoints) {
		t.Error("Is should match wrapped code")
	}
	if CodeOf(errors.New("plain")) != CodeInternal {
		t.Error("plain errors should map to INTERNAL")
	}
}

func TestWithDetailsCopies(t *testing.T) {
	base := Validation("blocked")
	withDetails := base.WithDetails([]string{"proof_missing"})
	if base.Details != nil {
		t.Error("WithDetails must not mutate the receiver")
	}
	if withDetails.Details == nil {
		t.Error("details missing")
	}
}
