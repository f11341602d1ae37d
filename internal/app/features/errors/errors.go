// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
	"runtime/debug"

	"github.com/dalemusser/crms/internal/app/system/apierr"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler writes the JSON envelope for requests no feature handles.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	apierr.WriteMessage(w, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed answers known routes called with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierr.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// Recoverer turns a panic into a logged 500 with the standard envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func (h *Handler) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			h.Log.Error("panic serving request",
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.ByteString("stack", debug.Stack()))
			apierr.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
