// Package handler implements the HTTP handlers for the jdgen API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jharjadi/jdgen/internal/model"
)

// maxBodyBytes bounds request bodies. Every text field is capped well below
// this by validation.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

// writeError writes a standard error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, model.ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// decodeJSON reads a JSON request body into v, rejecting unknown fields
// and oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// statusFor maps a pipeline error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidLevelFormat),
		errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with the status from statusFor and returns
// that status. Validation errors echo the violated constraint; identifier
// rejections and server-side failures do not echo details.
func writeServiceError(w http.ResponseWriter, err error, requestID string) int {
	status := statusFor(err)
	switch {
	case errors.Is(err, model.ErrInvalidIdentifier):
		writeError(w, status, "invalid_identifier", "invalid guide identifier")
	case errors.Is(err, model.ErrInvalidLevelFormat):
		writeError(w, status, "invalid_level", "target_level must be uniN, mgrN, vp or svp")
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, status, "bad_request", err.Error())
	case status == http.StatusForbidden:
		writeError(w, status, "forbidden", "insufficient permissions")
	case status == http.StatusNotFound:
		writeError(w, status, "not_found", "not found")
	case status == http.StatusBadGateway:
		slog.Error("upstream failure", "error", err, "request_id", requestID)
		writeError(w, status, "upstream_error", "an upstream service failed")
	default:
		slog.Error("request failed", "error", err, "request_id", requestID)
		writeError(w, status, "internal", "internal error")
	}
	return status
}
