package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/samplecodes/testkata/internal/validation"
)

// ValidateUsernameRequest is the body of POST /api/v1/usernames/validate.
type ValidateUsernameRequest struct {
	Username string `json:"username"`
}

// ValidateUsernameResponse reports an accepted username.
type ValidateUsernameResponse struct {
	Username string `json:"username"`
	Valid    bool   `json:"valid"`
}

// UsernameHandler exposes username validation.
type UsernameHandler struct{}

// NewUsernameHandler creates a new UsernameHandler.
func NewUsernameHandler() *UsernameHandler {
	return &UsernameHandler{}
}

// maxBodyBytes caps request bodies read by JSON handlers.
const maxBodyBytes = 1 << 16

// Validate handles POST /api/v1/usernames/validate.
func (h *UsernameHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateUsernameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateUsernameResponse{Username: req.Username, Valid: true})
}
