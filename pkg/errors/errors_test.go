package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"invalid time range", InvalidTimeRange("bad range"), CodeInvalidTimeRange, http.StatusBadRequest},
		{"past booking", PastBooking("too late"), CodePastBooking, http.StatusBadRequest},
		{"internal conflict", ConflictInternal("busy"), CodeConflictInternal, http.StatusConflict},
		{"external conflict", ConflictExternal("busy elsewhere", nil), CodeConflictExternal, http.StatusConflict},
		{"already cancelled", AlreadyCancelled("done"), CodeAlreadyCancelled, http.StatusConflict},
		{"conflict", Conflict("race"), CodeConflict, http.StatusConflict},
		{"not found", NotFoundWithID("Booking", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("invalid", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("missing header"), CodeInvalidInput, http.StatusBadRequest},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.StatusCode())
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := ConflictExternal("unavailable", errors.New("connection refused"))

	if !IsCode(err, CodeConflictExternal) {
		t.Error("expected IsCode to match")
	}
	if IsCode(err, CodeConflictInternal) {
		t.Error("expected IsCode to reject a different code")
	}
	if IsCode(errors.New("plain"), CodeConflictExternal) {
		t.Error("expected IsCode to reject non-app errors")
	}

	wrapped := fmt.Errorf("handling request: %w", err)
	if !IsCode(wrapped, CodeConflictExternal) {
		t.Error("expected IsCode to see through wrapping")
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ConflictExternal("unavailable", cause)

	if !errors.Is(err, cause) {
		t.Error("expected the cause to survive wrapping")
	}
}

func TestWithDetails(t *testing.T) {
	err := ConflictExternal("unavailable", nil).WithDetails(map[string]any{"reason": "check_failed"})

	if err.Details["reason"] != "check_failed" {
		t.Errorf("expected details to be attached, got %v", err.Details)
	}
}
