package users

import (
	"context"
)

// Directory lists the members known to the system.
type Directory interface {
	ListMembers(ctx context.Context) ([]Member, error)
}

// Manager filters and counts members from a Directory.
type Manager struct {
	directory Directory
}

// NewManager creates a Manager over dir.
func NewManager(dir Directory) *Manager {
	return &Manager{directory: dir}
}

// ProcessMembers calls fn once per member, in directory order, and returns
// how many calls returned true.
func (m *Manager) ProcessMembers(ctx context.Context, fn func(Member) bool) (int, error) {
	members, err := m.directory.ListMembers(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, member := range members {
		if fn(member) {
			count++
		}
	}
	return count, nil
}

// GetActiveAdults returns the active members aged AdultAge or older.
func (m *Manager) GetActiveAdults(ctx context.Context) ([]Member, error) {
	members, err := m.directory.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	adults := make([]Member, 0, len(members))
	for _, member := range members {
		if member.IsActiveAdult() {
			adults = append(adults, member)
		}
	}
	return adults, nil
}
