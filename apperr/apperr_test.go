// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusConflict},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("loading survey: %w", NotFound("Survey not found"))
	if e := From(wrapped); e.Kind != KindNotFound {
		t.Errorf("From() kind = %v, want NotFound", e.Kind)
	}

	plain := errors.New("connection reset")
	e := From(plain)
	if e.Kind != KindInternal {
		t.Errorf("From(plain) kind = %v, want Internal", e.Kind)
	}
	if !errors.Is(e, plain) {
		t.Error("From(plain) should wrap the original error")
	}
	if e.Message == plain.Error() {
		t.Error("internal message should not expose the underlying error")
	}
}

func TestWithCode(t *testing.T) {
	base := Unauthorized("Please verify your email before logging in")
	coded := base.WithCode(CodeEmailNotVerified)

	if coded.Code != CodeEmailNotVerified {
		t.Errorf("Code = %q", coded.Code)
	}
	if base.Code != "" {
		t.Error("WithCode should not mutate the receiver")
	}
	if !Is(coded, KindUnauthorized) {
		t.Error("coded error should keep its kind")
	}
}
