// Package display formats user-facing strings.
package display

import (
	"context"
)

// DisplayPrefix precedes every formatted display name.
const DisplayPrefix = "Display name: "

// NameLookup resolves a user's name. Implementations are owned by callers.
type NameLookup interface {
	GetUserName(ctx context.Context, id string) (string, error)
}

// LookupFunc adapts a function to NameLookup.
type LookupFunc func(ctx context.Context, id string) (string, error)

// GetUserName calls f(ctx, id).
func (f LookupFunc) GetUserName(ctx context.Context, id string) (string, error) {
	return f(ctx, id)
}

// Formatter builds display strings from names resolved through a NameLookup.
type Formatter struct {
	names NameLookup
}

// NewFormatter creates a Formatter using names for resolution.
func NewFormatter(names NameLookup) *Formatter {
	return &Formatter{names: names}
}

// FormatUserDisplay returns "Display name: <name>" for the user with id.
// Lookup errors are returned unchanged.
func (f *Formatter) FormatUserDisplay(ctx context.Context, id string) (string, error) {
	name, err := f.names.GetUserName(ctx, id)
	if err != nil {
		return "", err
	}
	return DisplayPrefix + name, nil
}
