package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("underlying error")

	err := New(CheckFailed, "2 files are not sorted", cause)

	if err.Code != CheckFailed {
		t.Errorf("Code = %v, want %v", err.Code, CheckFailed)
	}
	if err.Message != "2 files are not sorted" {
		t.Errorf("Message = %q, want %q", err.Message, "2 files are not sorted")
	}
	if len(err.SuggestedFixes) != 2 {
		t.Errorf("len(SuggestedFixes) = %d, want 2", len(err.SuggestedFixes))
	}
}

func TestSortError_Error(t *testing.T) {
	tests := []struct {
		name      string
		err       *SortError
		wantParts []string
	}{
		{
			name:      "with cause",
			err:       New(ReadFailed, "cannot read", errors.New("permission denied")),
			wantParts: []string{"READ_FAILED", "cannot read", "permission denied"},
		},
		{
			name:      "without cause",
			err:       New(InternalError, "unexpected", nil),
			wantParts: []string{"INTERNAL_ERROR", "unexpected"},
		},
		{
			name:      "with path",
			err:       New(WriteFailed, "cannot write", nil).WithPath("Cargo.toml"),
			wantParts: []string{"WRITE_FAILED", "Cargo.toml: cannot write"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestSortError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := New(ReadFailed, "cannot read", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if New(ReadFailed, "x", nil).Unwrap() != nil {
		t.Error("Unwrap() without cause should be nil")
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	if fixes := GetSuggestedFixes(ConfigInvalid); len(fixes) == 0 {
		t.Error("ConfigInvalid should have suggested fixes")
	}
	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("InternalError fixes = %v, want nil", fixes)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"check failed", New(CheckFailed, "unsorted", nil), ExitCheckFailed},
		{"read failed", New(ReadFailed, "read", nil), ExitReadFailed},
		{"not found", New(FileNotFound, "missing", nil), ExitReadFailed},
		{"wrapped", fmt.Errorf("run: %w", New(CheckFailed, "unsorted", nil)), ExitCheckFailed},
		{"config", New(ConfigInvalid, "bad", nil), ExitError},
		{"plain error", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
	wrapped := fmt.Errorf("outer: %w", New(VerifyFailed, "data changed", nil))
	if got := CodeOf(wrapped); got != VerifyFailed {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, VerifyFailed)
	}
}
