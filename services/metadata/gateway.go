package metadata

import (
	"context"
	"errors"

	"github.com/samber/mo"

	"marquee/models"
)

// ErrFetchFailed matches every error the gateway returns, whatever the
// underlying cause (transport, HTTP status, decoding, configuration).
var ErrFetchFailed = errors.New("fetch failed")

// Gateway is the remote title source consumed by handlers and trailer
// lookups. Every call is single-shot: no retries, and it completes exactly
// once with either a payload or a *FetchError.
type Gateway interface {
	FetchTrending(ctx context.Context) ([]models.Title, error)
	SearchTitles(ctx context.Context, query string) ([]models.Title, error)
	// FetchVideoMetadata returns an empty VideoRef, not an error, when
	// nothing matched the query.
	FetchVideoMetadata(ctx context.Context, query string) (models.VideoRef, error)
}

// FetchError carries the reason a gateway call failed, verbatim.
type FetchError struct {
	Op     string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Op == "" {
		return e.Reason
	}
	return e.Op + ": " + e.Reason
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchFailed(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Op: op, Reason: err.Error(), Err: err}
}

// TrendingAsync starts FetchTrending and returns a future that settles once.
func TrendingAsync(ctx context.Context, g Gateway) *mo.Future[[]models.Title] {
	return async(func() ([]models.Title, error) {
		return g.FetchTrending(ctx)
	})
}

// SearchAsync starts SearchTitles and returns a future that settles once.
func SearchAsync(ctx context.Context, g Gateway, query string) *mo.Future[[]models.Title] {
	return async(func() ([]models.Title, error) {
		return g.SearchTitles(ctx, query)
	})
}

// VideoAsync starts FetchVideoMetadata and returns a future that settles once.
func VideoAsync(ctx context.Context, g Gateway, query string) *mo.Future[models.VideoRef] {
	return async(func() (models.VideoRef, error) {
		return g.FetchVideoMetadata(ctx, query)
	})
}

func async[T any](fn func() (T, error)) *mo.Future[T] {
	return mo.NewFuture[T](func(resolve func(T), reject func(error)) {
		value, err := fn()
		if err != nil {
			reject(err)
			return
		}
		resolve(value)
	})
}
