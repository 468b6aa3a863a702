// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load configuration"},
			expected: "failed to load configuration",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load configuration", Resource: "config.cue"},
			expected: "failed to load configuration: config.cue",
		},
		{
			name:     "full context",
			err:      &ActionableError{Operation: "save configuration", Resource: "config.toml", Cause: errors.New("permission denied")},
			expected: "failed to save configuration: config.toml: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	cause := errors.New("specific error")
	wrapped := fmt.Errorf("outer: %w", &ActionableError{Operation: "load configuration", Cause: cause})

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := &ActionableError{
		Operation:   "load configuration",
		Resource:    "config.cue",
		Suggestions: []string{"Run 'dlconfig config init'", "Check file permissions"},
		Cause:       fmt.Errorf("decode: %w", errors.New("syntax error")),
	}

	plain := err.Format(false)
	for _, want := range []string{"failed to load configuration: config.cue", "• Run 'dlconfig config init'", "• Check file permissions"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q\ngot:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain\ngot:\n%s", plain)
	}

	verbose := err.Format(true)
	for _, want := range []string{"Error chain:", "1. decode: syntax error", "2. syntax error"} {
		if !strings.Contains(verbose, want) {
			t.Errorf("Format(true) missing %q\ngot:\n%s", want, verbose)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation should return untyped nil, got %#v", err)
	}

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("save configuration").
		WithResource("/etc/dlconfig/config.cue").
		WithSuggestion("first").
		WithSuggestion("second").
		Wrap(cause).
		Build()
	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if ae.Operation != "save configuration" || ae.Resource != "/etc/dlconfig/config.cue" {
		t.Errorf("unexpected context: %+v", ae)
	}
	if len(ae.Suggestions) != 2 || !ae.HasSuggestions() {
		t.Errorf("Suggestions = %v, want 2 entries", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("built error should wrap the cause")
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
	err := WrapWithContext(errors.New("cause"), "write file", "/tmp/x")
	if got, want := err.Error(), "failed to write file: /tmp/x: cause"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, false) != "" {
		t.Error("FormatError(nil) should be empty")
	}
	if got := FormatError(errors.New("plain"), true); got != "plain" {
		t.Errorf("FormatError(plain) = %q", got)
	}

	ae := NewErrorContext().WithOperation("load configuration").WithSuggestion("try again").BuildError()
	got := FormatError(fmt.Errorf("wrapped: %w", ae), false)
	if !strings.Contains(got, "• try again") {
		t.Errorf("FormatError should render suggestions from the chain, got %q", got)
	}
}
