package users

import (
	"context"
)

// NameLookup resolves display names through a Fetcher.
type NameLookup struct {
	fetcher *Fetcher
}

// NewNameLookup creates a NameLookup backed by f.
func NewNameLookup(f *Fetcher) *NameLookup {
	return &NameLookup{fetcher: f}
}

// GetUserName returns the name of the user with the given id.
func (l *NameLookup) GetUserName(_ context.Context, id string) (string, error) {
	user, err := l.fetcher.Fetch(id)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}
