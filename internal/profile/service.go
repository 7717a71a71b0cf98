package profile

import (
	"context"
	"fmt"

	"github.com/spf13/cast"
)

// API fetches raw JSON objects from an endpoint.
type API interface {
	FetchData(ctx context.Context, endpoint string) (map[string]interface{}, error)
}

// Profile is the subset of upstream user data the application exposes.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Service reshapes upstream user data into Profiles.
type Service struct {
	api API
}

// NewService creates a Service using api.
func NewService(api API) *Service {
	return &Service{api: api}
}

// GetUserData returns the profile of userID. Upstream fields other than
// id, name and email are dropped. Failures are wrapped, keeping the cause.
func (s *Service) GetUserData(ctx context.Context, userID string) (*Profile, error) {
	data, err := s.api.FetchData(ctx, "users/"+userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user data: %w", err)
	}

	return &Profile{
		ID:    cast.ToString(data["id"]),
		Name:  cast.ToString(data["name"]),
		Email: cast.ToString(data["email"]),
	}, nil
}
