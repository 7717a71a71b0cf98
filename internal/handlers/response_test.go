package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/samplecodes/testkata/internal/apperr"
	"github.com/samplecodes/testkata/internal/calculator"
	"github.com/samplecodes/testkata/internal/metrics"
	"github.com/samplecodes/testkata/internal/users"
	"github.com/samplecodes/testkata/internal/validation"
)

func TestMapErrorToResponse(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"division by zero", calculator.ErrDivisionByZero, http.StatusBadRequest, "DIVISION_BY_ZERO", "cannot divide by zero"},
		{"validation", validation.ErrTooShort, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "username must be at least 3 characters"},
		{"missing parameter", users.ErrMissingUserID, http.StatusBadRequest, "MISSING_PARAMETER", "user ID is required"},
		{"not found", users.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", "user not found"},
		{"upstream", apperr.New(apperr.KindUpstream, "api error: 500"), http.StatusBadGateway, "UPSTREAM_ERROR", "api error: 500"},
		{"wrapped kind", fmt.Errorf("failed to fetch user data: %w", apperr.New(apperr.KindUpstream, "api error: 404")), http.StatusBadGateway, "UPSTREAM_ERROR", "failed to fetch user data: api error: 404"},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := mapErrorToResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestWriteError_CountsKind(t *testing.T) {
	counter := metrics.ErrorsTotal.WithLabelValues("NotFound")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	writeError(rec, users.ErrUserNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	internal := metrics.ErrorsTotal.WithLabelValues("Internal")
	before = testutil.ToFloat64(internal)
	writeError(httptest.NewRecorder(), errors.New("plain"))
	assert.Equal(t, before+1, testutil.ToFloat64(internal))
}

func TestWriteUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	writeUnavailable(rec, "profile API")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"profile API not configured","code":"SERVICE_UNAVAILABLE"}`, rec.Body.String())
}
