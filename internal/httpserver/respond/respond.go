// Package respond writes the JSON envelope shared by every API endpoint.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/inframe/internal/domain"
)

// Envelope is the body of every enveloped response.
type Envelope struct {
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes an enveloped success response.
func Success(w http.ResponseWriter, status int, code, message string, data any) {
	JSON(w, status, Envelope{Code: code, Status: status, Message: message, Data: data})
}

// Fail writes an enveloped error response.
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, Envelope{Code: code, Status: status, Message: message})
}

// Error maps err to its status and code. Internal details never reach the client.
func Error(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	msg := http.StatusText(status)

	var appErr *domain.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError && appErr.Message != "" {
		msg = appErr.Message
	}
	Fail(w, status, domain.CodeOf(err), msg)
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnavailable, domain.KindTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
