package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/matzehuels/treecontrast/pkg/phylo"
	"github.com/matzehuels/treecontrast/pkg/pic"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeMalformedTree, "duplicate tip label %q", "Homo")
	want := `MALFORMED_TREE: duplicate tip label "Homo"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(ErrCodeInternal, cause, "computing contrasts")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if got := err.Error(); got != "INTERNAL_ERROR: computing contrasts: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(ErrCodeTraitMismatch, "missing Galago")

	if !Is(err, ErrCodeTraitMismatch) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeMalformedTree) {
		t.Error("Is should not match a different code")
	}
	if got := GetCode(err); got != ErrCodeTraitMismatch {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeTraitMismatch)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}

	// Codes survive further wrapping with %w.
	wrapped := fmt.Errorf("outer: %w", err)
	if !Is(wrapped, ErrCodeTraitMismatch) {
		t.Error("Is should unwrap the chain")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeDegenerateBranch, "node 3 has zero-sum branch lengths")
	if got := UserMessage(err); got != "node 3 has zero-sum branch lengths" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(stderrors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"Nil", nil, ""},
		{"Coded", New(ErrCodeNotFound, "missing"), ErrCodeNotFound},
		{"MalformedTree", fmt.Errorf("build: %w", phylo.ErrMalformedTree), ErrCodeMalformedTree},
		{"DuplicateTip", phylo.ErrDuplicateTipLabel, ErrCodeMalformedTree},
		{"Cycle", phylo.ErrCycleDetected, ErrCodeCycleDetected},
		{"TraitMismatch", pic.ErrTraitMismatch, ErrCodeTraitMismatch},
		{"NonFiniteTrait", fmt.Errorf("tip %q: %w", "Homo", pic.ErrNonFiniteTrait), ErrCodeInvalidInput},
		{"Degenerate", fmt.Errorf("node 2: %w", pic.ErrDegenerateBranch), ErrCodeDegenerateBranch},
		{"Unknown", stderrors.New("disk full"), ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateTipLabel(t *testing.T) {
	valid := []string{"Homo", "Pongo_pygmaeus", "taxon-42", "Macaca mulatta"}
	for _, label := range valid {
		if err := ValidateTipLabel(label); err != nil {
			t.Errorf("ValidateTipLabel(%q) = %v, want nil", label, err)
		}
	}

	invalid := []string{"", "a/b", "a\\b", "..", "bad\x00byte", "ctl\tchar"}
	for _, label := range invalid {
		if err := ValidateTipLabel(label); err == nil {
			t.Errorf("ValidateTipLabel(%q) = nil, want error", label)
		}
	}
}

func TestValidateRunID(t *testing.T) {
	if err := ValidateRunID("0c6a8d2e-4f31-4b87-9a15-2d90b8e6f104"); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	for _, id := range []string{"", "not-a-uuid", "0C6A8D2E-4F31-4B87-9A15-2D90B8E6F104"} {
		if err := ValidateRunID(id); err == nil {
			t.Errorf("ValidateRunID(%q) = nil, want error", id)
		}
	}
}
