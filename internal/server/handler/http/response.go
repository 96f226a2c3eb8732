// Package http provides the HTTP handlers, routing and the standard response
// envelope for the note-taking API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/NoteKeeper/internal/auth"
	"github.com/atinyakov/NoteKeeper/internal/service"
	"go.uber.org/zap"
)

// envelope is the standard response body: success plus data, or failure plus
// a field-error map (empty for non-validation failures).
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// respondError writes a failure envelope. A nil fields map becomes an empty
// object so clients always see an "errors" key.
func respondError(w http.ResponseWriter, status int, message string, fields map[string][]string) {
	if fields == nil {
		fields = map[string][]string{}
	}
	writeJSON(w, status, envelope{Success: false, Message: message, Errors: fields})
}

// respondServiceError maps service-layer errors to HTTP statuses and writes
// the failure envelope. Unrecognized errors are logged and surface as a
// generic 500 with no internal detail.
func respondServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, "Validation failed", verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, auth.ErrTokenMissing):
		respondError(w, http.StatusUnauthorized, "Refresh token missing", nil)
	case errors.Is(err, auth.ErrTokenInvalid):
		respondError(w, http.StatusUnauthorized, "Invalid refresh token", nil)
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "You do not have permission to perform this action", nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found", nil)
	default:
		log.Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Something went wrong on the server", nil)
	}
}
