// Package respond writes JSON responses with the API's success/error envelope
// and maps the shared error taxonomy to HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"socialcat/backend/internal/platform/apperrors"
)

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code    string                     `json:"code"`
	Message string                     `json:"message"`
	Details []apperrors.FieldViolation `json:"details,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// JSON writes v with the given status code. v carries its own envelope fields.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("respond: encode response: %v", err)
	}
}

// Error writes a failure envelope with the given status, code, and message.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, errorEnvelope{Error: ErrorBody{Code: code, Message: message}})
}

// ValidationError writes a 400 with one details entry per violated field.
func ValidationError(w http.ResponseWriter, v *apperrors.Validation) {
	JSON(w, http.StatusBadRequest, errorEnvelope{Error: ErrorBody{
		Code:    "VALIDATION_ERROR",
		Message: "request validation failed",
		Details: v.Violations,
	}})
}

// FromError maps err to its HTTP rendering:
// validation errors to 400 with details, missing session or organization
// context to 401, insufficient role to 403, anything else to a generic 500.
// Internal error details are logged, never sent to the client.
func FromError(w http.ResponseWriter, err error) {
	if v := apperrors.AsValidation(err); v != nil {
		ValidationError(w, v)
		return
	}
	switch {
	case errors.Is(err, apperrors.ErrNoSession):
		Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, apperrors.ErrNoOrganization):
		Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "no organization context")
	case errors.Is(err, apperrors.ErrInsufficientRole):
		Error(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
	default:
		log.Printf("respond: internal error: %v", err)
		Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// DecodeJSON parses the request body into v. A malformed body is a validation
// failure on the body itself, not an internal error.
func DecodeJSON(r *http.Request, v any) *apperrors.Validation {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		violation := &apperrors.Validation{}
		return violation.Add("body", "malformed JSON payload")
	}
	return nil
}
