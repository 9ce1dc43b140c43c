// Package badge holds the visible badge state: a short text label (the
// blocked-counter decimal string) and a background color. It is pure output,
// updated by the classifier on every block and read by the admin API.
package badge

import "sync"

type Badge struct {
	mu    sync.RWMutex
	text  string
	color string
}

func New() *Badge {
	return &Badge{}
}

// Update replaces the badge text and background color.
func (b *Badge) Update(text, color string) {
	b.mu.Lock()
	b.text = text
	b.color = color
	b.mu.Unlock()
}

// Snapshot returns the current badge text and background color.
func (b *Badge) Snapshot() (text, color string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text, b.color
}
