package apierr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"go.uber.org/zap"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", apierr.ErrInvalidCredentials, http.StatusUnauthorized},
		{"locked", apierr.ErrAccountLocked, http.StatusLocked},
		{"inactive", apierr.ErrAccountInactive, http.StatusUnauthorized},
		{"token expired", apierr.ErrTokenExpired, http.StatusUnauthorized},
		{"token invalid", apierr.ErrTokenInvalid, http.StatusUnauthorized},
		{"permission", apierr.ErrPermissionDenied, http.StatusForbidden},
		{"access", apierr.ErrAccessDenied, http.StatusForbidden},
		{"case missing", apierr.ErrCaseNotFound, http.StatusNotFound},
		{"user missing", apierr.ErrUserNotFound, http.StatusNotFound},
		{"conflict", apierr.ErrConflict, http.StatusConflict},
		{"rate limited", apierr.ErrRateLimited, http.StatusTooManyRequests},
		{"validation", apierr.Invalid("status", "bad"), http.StatusBadRequest},
		{"duplicate", apierr.Duplicate("email"), http.StatusBadRequest},
		{"wrapped", fmt.Errorf("update: %w", apierr.ErrCaseNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apierr.Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMessage_DoesNotLeakUnexpected(t *testing.T) {
	err := errors.New("mongo: connection refused at 10.0.0.3")
	if got := apierr.Message(err); got != "Internal server error" {
		t.Errorf("Message() = %q, want generic text", got)
	}
	if apierr.IsExpected(err) {
		t.Error("IsExpected() = true for an unknown error")
	}
}

func TestMessage_Duplicate(t *testing.T) {
	if got := apierr.Message(apierr.Duplicate("username")); got != "username already exists" {
		t.Errorf("Message() = %q", got)
	}
}

func TestValidationError_Err(t *testing.T) {
	var v apierr.ValidationError
	if v.Err() != nil {
		t.Fatal("empty ValidationError should yield nil")
	}
	v.Add("priority", "must be one of low, medium, high, critical")
	v.Add("type", "is required")
	err := v.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "validation failed: priority, type" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWrite_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.Write(rec, zap.NewNop(), apierr.Invalid("incidentDate", "cannot be in the future"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var env apierr.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success {
		t.Error("success should be false")
	}
	if env.Message != "Validation failed" {
		t.Errorf("message = %q", env.Message)
	}
	if len(env.Errors) != 1 || env.Errors[0].Field != "incidentDate" {
		t.Errorf("errors = %+v", env.Errors)
	}
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.OK(rec, http.StatusCreated, map[string]any{"data": 1})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != true || body["data"] != float64(1) {
		t.Errorf("body = %v", body)
	}
}
