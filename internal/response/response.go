// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/pixtag/service/internal/apperr"
	"github.com/pixtag/service/internal/logging"
)

// ErrorBody is the JSON document written for failed requests.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Error writes an error response with the given status and message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// MethodNotAllowed writes a 405 response. Every API endpoint accepts POST only.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	Fail(w, apperr.MethodNotAllowed())
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusNotFound, "not found")
}

// Fail writes the response for err.
func Fail(w http.ResponseWriter, err error) {
	status, contentType, body := Render(err)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Render maps err to a status, content type and body. Upstream errors that
// carry a raw body are passed through unchanged; everything else becomes an
// ErrorBody document.
func Render(err error) (int, string, []byte) {
	ae := apperr.From(err)
	if ae == nil {
		ae = apperr.Internal(nil)
	}

	switch ae.Kind {
	case apperr.KindInternal:
		logging.Error("request failed", "err", err)
	case apperr.KindUpstream, apperr.KindConfig:
		logging.Warn("request failed", "kind", ae.Kind, "status", ae.Status, "err", err)
	}

	if ae.Body != "" {
		return ae.Status, "text/plain; charset=utf-8", []byte(ae.Body)
	}
	b, mErr := json.Marshal(ErrorBody{Error: ae.Message, Details: ae.Details})
	if mErr != nil {
		return http.StatusInternalServerError, "application/json", []byte(`{"error":"internal server error"}`)
	}
	return ae.Status, "application/json", b
}
