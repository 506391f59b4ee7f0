package favorites

import (
	"context"
	"sync"

	"marquee/models"
)

// Watch streams snapshots of the favorites until ctx is done. The current
// snapshot is delivered first. Slow readers only ever see the latest
// snapshot; a mutation never waits on a reader.
func (s *Store) Watch(ctx context.Context) <-chan []models.Title {
	w := &watcher{ch: make(chan []models.Title, 1)}

	// Register before taking the initial snapshot so no mutation falls
	// between the two.
	s.writeMu.Lock()
	sub := s.Subscribe(w.offer)
	w.offer(s.List())
	s.writeMu.Unlock()

	go func() {
		<-ctx.Done()
		sub.Cancel()
		w.close()
	}()

	return w.ch
}

type watcher struct {
	mu     sync.Mutex
	closed bool
	ch     chan []models.Title
}

func (w *watcher) offer(snapshot []models.Title) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	for {
		select {
		case w.ch <- snapshot:
			return
		default:
		}
		// Drop the stale snapshot nobody has read yet.
		select {
		case <-w.ch:
		default:
		}
	}
}

func (w *watcher) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.closed {
		w.closed = true
		close(w.ch)
	}
}
