// Package formutil decodes JSON request bodies for the API handlers.
//
// Every handler that accepts a body goes through Decode so that size
// limits, content-type checks and malformed-input responses are the same
// everywhere.
//
// Example usage:
//
//	var in loginRequest
//	if !formutil.Decode(w, r, limits.MaxAuthBodySize, &in) {
//		return
//	}
package formutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/dalemusser/crms/internal/app/system/apierr"
)

// ErrBadBody is returned by DecodeErr for bodies that are not valid JSON.
var ErrBadBody = errors.New("invalid request body")

// ErrTooLarge is returned by DecodeErr when the body exceeds the limit.
var ErrTooLarge = errors.New("request body too large")

// DecodeErr reads at most limit bytes of JSON from r into v. An empty body
// leaves v untouched, and so does a rejected one.
func DecodeErr(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return ErrBadBody
		}
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &tooBig):
			return ErrTooLarge
		default:
			return ErrBadBody
		}
	}
	if dec.More() {
		return ErrBadBody
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrBadBody
	}
	return nil
}

// Decode is DecodeErr that writes the 400/413 response itself. It reports
// whether the handler should continue.
func Decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	err := DecodeErr(w, r, limit, v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrTooLarge):
		apierr.WriteMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
	default:
		apierr.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
	}
	return false
}
