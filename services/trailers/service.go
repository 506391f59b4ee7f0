package trailers

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/iter"

	"marquee/models"
	"marquee/services/metadata"
)

const defaultMaxConcurrent = 4

// Query builds the video search string for a title, e.g. "Dune trailer 2021".
// The localised title is used; the original names only stand in when it is
// blank.
func Query(title models.Title) string {
	name := strings.TrimSpace(title.Title)
	if name == "" {
		name = title.DisplayName()
	}
	return strings.TrimSpace(name + " trailer " + title.ReleaseYear())
}

// Service resolves trailers for titles through a metadata gateway.
type Service struct {
	gateway       metadata.Gateway
	maxConcurrent int
}

func NewService(gateway metadata.Gateway, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Service{gateway: gateway, maxConcurrent: maxConcurrent}
}

// Lookup is a single in-flight trailer lookup. It starts pending and
// settles exactly once.
type Lookup struct {
	id string

	mu    sync.RWMutex
	state models.TrailerState

	once sync.Once
	done chan struct{}
}

func (l *Lookup) ID() string {
	return l.id
}

// State returns the current state; pending until the lookup settles.
func (l *Lookup) State() models.TrailerState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Done is closed once the lookup has settled.
func (l *Lookup) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the lookup settles or ctx ends. On ctx expiry the
// lookup keeps running and the current (pending) state is returned.
func (l *Lookup) Wait(ctx context.Context) (models.TrailerState, error) {
	select {
	case <-l.done:
		return l.State(), nil
	case <-ctx.Done():
		return l.State(), ctx.Err()
	}
}

func (l *Lookup) settle(state models.TrailerState) {
	l.once.Do(func() {
		state.LookupID = l.id
		l.mu.Lock()
		l.state = state
		l.mu.Unlock()
		close(l.done)
	})
}

// Start begins a lookup for title and returns immediately.
func (s *Service) Start(ctx context.Context, title models.Title) *Lookup {
	l := &Lookup{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
	l.state = models.PendingTrailer(title.ID)
	l.state.LookupID = l.id

	query := Query(title)
	future := metadata.VideoAsync(ctx, s.gateway, query)
	go func() {
		ref, err := future.Collect()
		l.settle(stateFor(title.ID, ref, err))
		if err != nil {
			log.Printf("[trailers] lookup %q failed: %v", query, err)
		}
	}()
	return l
}

// Resolve runs a lookup to completion.
func (s *Service) Resolve(ctx context.Context, title models.Title) models.TrailerState {
	state, err := s.Start(ctx, title).Wait(ctx)
	if err != nil && !state.Settled() {
		return models.FailedTrailer(title.ID, models.TrailerFetchFailed, err.Error())
	}
	return state
}

// ResolveMany resolves every title with bounded parallelism. The result is
// index-aligned with titles.
func (s *Service) ResolveMany(ctx context.Context, titles []models.Title) []models.TrailerState {
	mapper := iter.Mapper[models.Title, models.TrailerState]{MaxGoroutines: s.maxConcurrent}
	return mapper.Map(titles, func(title *models.Title) models.TrailerState {
		return s.Resolve(ctx, *title)
	})
}

func stateFor(titleID int64, ref models.VideoRef, err error) models.TrailerState {
	switch {
	case err != nil:
		return models.FailedTrailer(titleID, models.TrailerFetchFailed, err.Error())
	case !ref.Found():
		return models.FailedTrailer(titleID, models.TrailerNotFound, models.TrailerNotFoundReason)
	default:
		return models.ResolvedTrailer(titleID, ref)
	}
}
