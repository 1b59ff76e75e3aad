// backend/internal/httpx/respond.go
package httpx

import (
	"encoding/json"
	"log"
	"net/http"

	"quiz-platform/internal/apperr"
)

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// Message writes a {"msg": ...} body.
func Message(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"msg": msg})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindTokenInvalid:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error", "kind"}. Internal errors are logged and their
// message is replaced.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s %s failed: %v", RequestID(r.Context()), r.Method, r.URL.Path, err)
	}
	WriteJSON(w, status, map[string]string{
		"error": apperr.Message(err),
		"kind":  string(kind),
	})
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return apperr.Validation("Invalid request")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid request", err)
	}
	return nil
}
