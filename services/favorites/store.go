package favorites

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"marquee/models"
)

const persistTimeout = 10 * time.Second

// Persister stores the favorites collection between sessions. The store
// works without one; favorites then live only as long as the process.
type Persister interface {
	Load(ctx context.Context) ([]models.Title, error)
	Save(ctx context.Context, titles []models.Title) error
}

// Listener receives a snapshot of the ordered favorites after a mutation.
// Listeners run on the mutating goroutine and must not mutate the store.
type Listener func(snapshot []models.Title)

type subscriber struct {
	id uuid.UUID
	fn Listener
}

// Store owns the ordered, identity-unique favorites collection.
type Store struct {
	// writeMu serialises mutations together with their notifications so
	// observers see snapshots in mutation order.
	writeMu sync.Mutex

	mu    sync.RWMutex
	items []models.Title

	subsMu sync.RWMutex
	subs   []subscriber
}

// NewStore returns an empty, session-scoped store.
func NewStore() *Store {
	return &Store{items: make([]models.Title, 0)}
}

// Open loads favorites through p and saves every later snapshot back to it.
func Open(ctx context.Context, p Persister) (*Store, error) {
	s := NewStore()
	if p == nil {
		return s, nil
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	s.items = dedupe(loaded)
	if len(s.items) != len(loaded) {
		log.Printf("[favorites] dropped %d duplicate entries on load", len(loaded)-len(s.items))
	}

	s.Subscribe(func(snapshot []models.Title) {
		saveCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := p.Save(saveCtx, snapshot); err != nil {
			log.Printf("[favorites] failed to persist %d favorites: %v", len(snapshot), err)
		}
	})

	return s, nil
}

// IsFavorite reports whether an entry with the same ID is stored.
func (s *Store) IsFavorite(title models.Title) bool {
	return s.Contains(title.ID)
}

// Contains reports whether an entry with the given ID is stored.
func (s *Store) Contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.indexLocked(id) >= 0
}

// List returns a copy of the favorites in insertion order.
func (s *Store) List() []models.Title {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

// Len returns the number of stored favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

// Add appends title unless an entry with the same ID already exists.
// It reports whether the collection changed.
func (s *Store) Add(title models.Title) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.indexLocked(title.ID) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items, title)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// Remove deletes the entry sharing title's ID, if any.
func (s *Store) Remove(title models.Title) bool {
	return s.RemoveByID(title.ID)
}

// RemoveByID deletes the entry with the given ID, if any.
func (s *Store) RemoveByID(id int64) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// Toggle removes title if it is stored and appends it otherwise, as one
// mutation. It reports whether title is a favorite afterwards.
func (s *Store) Toggle(title models.Title) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	added := true
	if idx := s.indexLocked(title.ID); idx >= 0 {
		s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
		added = false
	} else {
		s.items = append(s.items, title)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return added
}

// Clear empties the collection. Observers hear about it only when
// something was removed.
func (s *Store) Clear() bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return false
	}
	s.items = make([]models.Title, 0)
	s.mu.Unlock()

	s.notify([]models.Title{})
	return true
}

// Subscribe registers fn for every future mutation.
func (s *Store) Subscribe(fn Listener) *Subscription {
	sub := subscriber{id: uuid.New(), fn: fn}

	s.subsMu.Lock()
	s.subs = append(s.subs, sub)
	s.subsMu.Unlock()

	return &Subscription{id: sub.id, store: s}
}

func (s *Store) unsubscribe(id uuid.UUID) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.subs = lo.Reject(s.subs, func(sub subscriber, _ int) bool {
		return sub.id == id
	})
}

func (s *Store) notify(snapshot []models.Title) {
	s.subsMu.RLock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.RUnlock()

	for _, sub := range subs {
		// Each listener gets its own copy so none can corrupt another's view.
		view := make([]models.Title, len(snapshot))
		copy(view, snapshot)
		sub.fn(view)
	}
}

func (s *Store) indexLocked(id int64) int {
	_, idx, ok := lo.FindIndexOf(s.items, func(t models.Title) bool {
		return t.ID == id
	})
	if !ok {
		return -1
	}
	return idx
}

func (s *Store) snapshotLocked() []models.Title {
	out := make([]models.Title, len(s.items))
	copy(out, s.items)
	return out
}

func dedupe(titles []models.Title) []models.Title {
	return lo.UniqBy(titles, func(t models.Title) int64 {
		return t.ID
	})
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id    uuid.UUID
	store *Store
	once  sync.Once
}

// ID identifies the subscription.
func (s *Subscription) ID() string {
	return s.id.String()
}

// Cancel stops delivery. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.store.unsubscribe(s.id)
	})
}
