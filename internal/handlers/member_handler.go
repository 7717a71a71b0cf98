package handlers

import (
	"context"
	"net/http"

	"github.com/samplecodes/testkata/internal/users"
)

// ActiveAdultLister returns the active adult members.
type ActiveAdultLister interface {
	GetActiveAdults(ctx context.Context) ([]users.Member, error)
}

// MembersResponse lists members.
type MembersResponse struct {
	Members []users.Member `json:"members"`
	Count   int            `json:"count"`
}

// MemberHandler exposes member queries.
type MemberHandler struct {
	members ActiveAdultLister
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members ActiveAdultLister) *MemberHandler {
	return &MemberHandler{members: members}
}

// ActiveAdults handles GET /api/v1/members/active-adults.
func (h *MemberHandler) ActiveAdults(w http.ResponseWriter, r *http.Request) {
	adults, err := h.members.GetActiveAdults(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if adults == nil {
		adults = []users.Member{}
	}

	writeJSON(w, http.StatusOK, MembersResponse{Members: adults, Count: len(adults)})
}
