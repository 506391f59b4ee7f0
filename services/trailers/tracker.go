package trailers

import "sync"

// Tracker remembers the most recent lookup per view so results that arrive
// after the view moved on can be ignored. It is a helper for view-layer
// callers that start lookups themselves; the HTTP handlers resolve
// synchronously and do not need it.
type Tracker struct {
	mu     sync.Mutex
	latest map[string]string
}

func NewTracker() *Tracker {
	return &Tracker{latest: make(map[string]string)}
}

// Track records l as the current lookup for key, superseding any earlier one.
func (t *Tracker) Track(key string, l *Lookup) {
	t.mu.Lock()
	t.latest[key] = l.ID()
	t.mu.Unlock()
}

// Accept reports whether l is still the current lookup for key.
func (t *Tracker) Accept(key string, l *Lookup) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[key] == l.ID()
}

// Forget drops key, e.g. when its view is dismissed.
func (t *Tracker) Forget(key string) {
	t.mu.Lock()
	delete(t.latest, key)
	t.mu.Unlock()
}
