// Package response writes the JSON envelope shared by every API endpoint.
// Success payloads arrive as {"success":true,"data":...} and failures as
// {"success":false,"error":{"code","message","details"}}.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError is the machine-readable error half of the envelope. Details is
// optional and carries structured context such as per-field validation
// messages keyed by field name.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, envelope{Success: true, Data: data})
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	write(w, r, status, envelope{Success: false, Error: &APIError{Code: code, Message: message, Details: details}})
}

func write(w http.ResponseWriter, r *http.Request, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "response.encode_failed", "error", err)
	}
}
