package handlers

import (
	"context"
	"net/http"

	"github.com/samplecodes/testkata/internal/profile"
)

// ProfileGetter loads a user profile from the remote API.
type ProfileGetter interface {
	GetUserData(ctx context.Context, userID string) (*profile.Profile, error)
}

// ProfileHandler exposes remote profiles.
type ProfileHandler struct {
	profiles ProfileGetter
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles ProfileGetter) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile handles GET /api/v1/profiles/{id}.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetUserData(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}
