// Package shopping keeps an in-memory shopping list.
package shopping

import (
	"sync"

	"github.com/samplecodes/testkata/internal/apperr"
)

// List is an ordered shopping list. It is safe for concurrent use.
type List struct {
	mu    sync.RWMutex
	items []string
}

// NewList creates an empty List.
func NewList() *List {
	return &List{}
}

// AddItem appends item to the list.
func (l *List) AddItem(item string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
}

// RemoveItem removes the first occurrence of item.
// It fails with a NotFound error when item is not on the list.
func (l *List) RemoveItem(item string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, it := range l.items {
		if it == item {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return nil
		}
	}
	return apperr.Newf(apperr.KindNotFound, "item: %s does not exist", item)
}

// Contains reports whether item is on the list.
func (l *List) Contains(item string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, it := range l.items {
		if it == item {
			return true
		}
	}
	return false
}

// Items returns a copy of the list contents.
func (l *List) Items() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}
