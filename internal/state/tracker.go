// Package state tracks which tag occurrences are currently expanded in a
// peek surface. Membership is always re-derivable from the visible previews;
// Reconcile replaces the whole set rather than patching it.
package state

import "sync"

// Key identifies one logical tag occurrence across recomputation passes:
// the owning document plus the marker's start offset. Two occurrences with
// the same key in different passes are the same logical tag.
type Key struct {
	Document string
	Start    int
}

// Tracker is the process-wide expanded set, owned by the coordinator and
// passed by reference to the components that need it.
type Tracker struct {
	mu       sync.Mutex
	expanded map[Key]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{expanded: make(map[Key]struct{})}
}

// IsExpanded reports whether the occurrence is in expanded state.
func (t *Tracker) IsExpanded(key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.expanded[key]
	return ok
}

// MarkExpanded records that the user opened a peek surface for the
// occurrence. Called synchronously from the peek command handler.
func (t *Tracker) MarkExpanded(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expanded[key] = struct{}{}
}

// Reconcile replaces the expanded set with exactly the given keys. After the
// call IsExpanded(k) holds if and only if k was present, with no leftover
// membership from before.
func (t *Tracker) Reconcile(present []Key) {
	next := make(map[Key]struct{}, len(present))
	for _, key := range present {
		next[key] = struct{}{}
	}
	t.mu.Lock()
	t.expanded = next
	t.mu.Unlock()
}
