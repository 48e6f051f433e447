package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessageFallbacks(t *testing.T) {
	if got := New(http.StatusBadRequest, "bad", errors.New("boom")).Error(); got != "boom" {
		t.Fatalf("got %q", got)
	}
	if got := New(http.StatusBadRequest, "bad", nil).Error(); got != "bad" {
		t.Fatalf("got %q", got)
	}
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("got %q", got)
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	inner := WithDetails(http.StatusBadRequest, "invalid_rows", nil, map[string]any{"n": 1})
	wrapped := fmt.Errorf("apply: %w", inner)
	var ae *Error
	if !errors.As(wrapped, &ae) {
		t.Fatal("expected errors.As to find *Error")
	}
	if ae.Status != http.StatusBadRequest || ae.Details == nil {
		t.Fatalf("unexpected error: %+v", ae)
	}
}
