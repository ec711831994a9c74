// Package shared holds the response helpers every handler uses.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "discussly/pkg/domain-errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteError maps a domain error kind onto an HTTP status and writes the
// message as JSON. Non-domain errors come out as opaque 500s.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
		switch domainErr.Kind {
		case dErrors.KindValidation:
			status = http.StatusBadRequest
		case dErrors.KindNotFound:
			status = http.StatusNotFound
		case dErrors.KindConflict:
			status = http.StatusConflict
		case dErrors.KindPolicyDenied:
			status = http.StatusForbidden
		case dErrors.KindUnauthorized:
			status = http.StatusUnauthorized
		default:
			message = "internal error"
		}
	}

	WriteJSON(w, status, errorResponse{Error: message})
}

// WriteJSON writes the payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
