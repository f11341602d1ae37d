// Package apierr defines the error taxonomy shared by the workflows and the
// JSON envelope the HTTP layer writes for it.
package apierr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountInactive    = errors.New("account inactive")
	ErrUnauthenticated    = errors.New("access token required")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrAccessDenied       = errors.New("access denied")
	ErrCaseNotFound       = errors.New("case not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("concurrent modification")
	ErrRateLimited        = errors.New("rate limited")
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "validation failed: " + strings.Join(names, ", ")
}

// Add records a field failure.
func (e *ValidationError) Add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// Err returns e when it holds failures and nil otherwise, so callers can
// build a ValidationError unconditionally and return v.Err().
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Invalid is shorthand for a single-field ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}
}

// DuplicateKeyError reports a unique-constraint violation on Field.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return e.Field + " already exists"
}

// Duplicate returns a DuplicateKeyError for field.
func Duplicate(field string) error {
	return &DuplicateKeyError{Field: field}
}

type classification struct {
	status  int
	message string
}

var known = []struct {
	err error
	classification
}{
	{ErrInvalidCredentials, classification{http.StatusUnauthorized, "Invalid credentials"}},
	{ErrAccountLocked, classification{http.StatusLocked, "Account is temporarily locked due to too many failed login attempts"}},
	{ErrAccountInactive, classification{http.StatusUnauthorized, "Account is not active"}},
	{ErrUnauthenticated, classification{http.StatusUnauthorized, "Access token required"}},
	{ErrTokenInvalid, classification{http.StatusUnauthorized, "Invalid token"}},
	{ErrTokenExpired, classification{http.StatusUnauthorized, "Token expired"}},
	{ErrPermissionDenied, classification{http.StatusForbidden, "Insufficient permissions"}},
	{ErrAccessDenied, classification{http.StatusForbidden, "Access denied"}},
	{ErrCaseNotFound, classification{http.StatusNotFound, "Case not found"}},
	{ErrUserNotFound, classification{http.StatusNotFound, "User not found"}},
	{ErrNotFound, classification{http.StatusNotFound, "Not found"}},
	{ErrConflict, classification{http.StatusConflict, "Record was modified by another request, reload and try again"}},
	{ErrRateLimited, classification{http.StatusTooManyRequests, "Too many requests, please try again later"}},
}

func classify(err error) (classification, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return classification{http.StatusBadRequest, "Validation failed"}, true
	}
	var de *DuplicateKeyError
	if errors.As(err, &de) {
		return classification{http.StatusBadRequest, de.Error()}, true
	}
	for _, k := range known {
		if errors.Is(err, k.err) {
			return k.classification, true
		}
	}
	return classification{http.StatusInternalServerError, "Internal server error"}, false
}

// Status maps err to its HTTP status. Unrecognized errors are 500.
func Status(err error) int {
	c, _ := classify(err)
	return c.status
}

// Message is the client-safe text for err. Unrecognized errors never leak
// their text.
func Message(err error) string {
	c, _ := classify(err)
	return c.message
}

// IsExpected reports whether err belongs to the taxonomy.
func IsExpected(err error) bool {
	_, ok := classify(err)
	return ok
}
