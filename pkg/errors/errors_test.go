package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"no cause", New(ErrCodeNotFound, "node %d", 7), "NOT_FOUND: node 7"},
		{"with cause", Wrap(ErrCodeInvalidInput, errors.New("eof"), "decode %s", "g.json"), "INVALID_INPUT: decode g.json: eof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsThroughWrapping(t *testing.T) {
	base := New(ErrCodeInconsistentProvenance, "edge (3, 2)")
	wrapped := fmt.Errorf("select: %w", base)

	if !Is(wrapped, ErrCodeInconsistentProvenance) {
		t.Error("Is should find code through fmt.Errorf wrapping")
	}
	if Is(wrapped, ErrCodeNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), "") {
		t.Error("Is should not match the empty code")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrCodeInternal, cause, "render")
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNotFound, "graph 4 not found")); got != "graph 4 not found" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(errors.New("x")) != "" {
		t.Error("plain errors have no code")
	}
	if GetCode(New(ErrCodeUnsupported, "x")) != ErrCodeUnsupported {
		t.Error("GetCode should return the code")
	}
}
