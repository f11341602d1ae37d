package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Envelope is the error body: {"success": false, "message": "..."}.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes {"success": true} merged with payload.
func OK(w http.ResponseWriter, status int, payload map[string]any) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	JSON(w, status, body)
}

// Write maps err onto the envelope. Errors outside the taxonomy are logged
// and reported as a bare 500.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	c, ok := classify(err)
	if !ok && log != nil {
		log.Error("unexpected error", zap.Error(err))
	}
	env := Envelope{Message: c.message}
	var ve *ValidationError
	if errors.As(err, &ve) {
		env.Errors = ve.Fields
	}
	JSON(w, c.status, env)
}

// WriteMessage writes an envelope with an explicit status and message, for
// request-shape problems caught before any workflow runs.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Message: msg})
}
