// Package handlers implements the HTTP endpoints of the API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/samplecodes/testkata/internal/apperr"
	"github.com/samplecodes/testkata/internal/metrics"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status and body and counts it in errors_total.
func writeError(w http.ResponseWriter, err error) {
	status, resp := mapErrorToResponse(err)
	kind := string(apperr.KindOf(err))
	if kind == "" {
		kind = "Internal"
	}
	metrics.RecordError(kind)
	writeJSON(w, status, resp)
}

// mapErrorToResponse maps error kinds to HTTP status codes and error responses.
func mapErrorToResponse(err error) (int, ErrorResponse) {
	switch apperr.KindOf(err) {
	case apperr.KindDivisionByZero:
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "DIVISION_BY_ZERO"}
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"}
	case apperr.KindMissingParameter:
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "MISSING_PARAMETER"}
	case apperr.KindNotFound:
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"}
	case apperr.KindUpstream:
		return http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: "UPSTREAM_ERROR"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}
	}
}

// writeUnavailable answers 503 for a backend that is not configured.
func writeUnavailable(w http.ResponseWriter, what string) {
	metrics.RecordError("Unavailable")
	writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
		Error: what + " not configured",
		Code:  "SERVICE_UNAVAILABLE",
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	metrics.RecordError("InvalidRequest")
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "INVALID_REQUEST"})
}
