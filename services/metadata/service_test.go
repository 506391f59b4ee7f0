package metadata

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func newTestService(t *testing.T, ttl time.Duration, fn roundTripFunc) *Service {
	t.Helper()
	return NewService(Config{
		TMDBAPIKey:    "tmdb-key",
		YouTubeAPIKey: "yt-key",
		Language:      "en",
		CacheDir:      "/cache",
		TrendingTTL:   ttl,
		Fs:            afero.NewMemMapFs(),
		HTTPClient:    &http.Client{Transport: fn},
	})
}

const trendingBody = `{"page":1,"results":[
	{"id":27205,"title":"Inception","original_title":"Inception","poster_path":"/inc.jpg","release_date":"2010-07-15","vote_average":8.4,"overview":"Dreams."},
	{"id":603,"title":"The Matrix","original_title":"The Matrix","poster_path":"/mat.jpg","release_date":"1999-03-30","vote_average":8.2}
]}`

func TestFetchTrendingMapsResults(t *testing.T) {
	svc := newTestService(t, 0, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/3/trending/movie/week" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		if got := req.URL.Query().Get("api_key"); got != "tmdb-key" {
			t.Fatalf("expected api_key tmdb-key, got %q", got)
		}
		if got := req.URL.Query().Get("language"); got != "en-US" {
			t.Fatalf("expected language en-US, got %q", got)
		}
		return jsonResponse(http.StatusOK, trendingBody), nil
	})

	titles, err := svc.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("FetchTrending returned error: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(titles))
	}
	if titles[0].ID != 27205 || titles[0].Title != "Inception" || titles[0].MediaType != "movie" {
		t.Fatalf("unexpected first title: %+v", titles[0])
	}
	if titles[0].PosterURL() != "https://image.tmdb.org/t/p/w500/inc.jpg" {
		t.Fatalf("unexpected poster url %q", titles[0].PosterURL())
	}
	if titles[1].ReleaseDate != "1999-03-30" {
		t.Fatalf("unexpected release date %q", titles[1].ReleaseDate)
	}
}

func TestFetchTrendingServesFromCache(t *testing.T) {
	var calls int32
	svc := newTestService(t, time.Hour, func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return jsonResponse(http.StatusOK, trendingBody), nil
	})

	for i := 0; i < 3; i++ {
		titles, err := svc.FetchTrending(context.Background())
		if err != nil {
			t.Fatalf("FetchTrending returned error: %v", err)
		}
		if len(titles) != 2 {
			t.Fatalf("expected 2 titles, got %d", len(titles))
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 upstream call, got %d", got)
	}

	if err := svc.ClearCache(); err != nil {
		t.Fatalf("ClearCache returned error: %v", err)
	}
	if _, err := svc.FetchTrending(context.Background()); err != nil {
		t.Fatalf("FetchTrending returned error: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected cache clear to force a refetch, got %d calls", got)
	}
}

func TestFetchTrendingConcurrentFirstUse(t *testing.T) {
	svc := newTestService(t, time.Hour, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, trendingBody), nil
	})

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			titles, err := svc.FetchTrending(context.Background())
			if err == nil && len(titles) != 2 {
				err = errors.New("short trending result")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent FetchTrending failed: %v", err)
		}
	}
	if _, ok := svc.trending.get(); !ok {
		t.Fatalf("expected trending cache to be populated")
	}
}

func TestUpdateAPIKeysUsesNewCredentials(t *testing.T) {
	var lastKey atomic.Value
	svc := newTestService(t, time.Hour, func(req *http.Request) (*http.Response, error) {
		lastKey.Store(req.URL.Query().Get("api_key"))
		return jsonResponse(http.StatusOK, trendingBody), nil
	})

	if _, err := svc.FetchTrending(context.Background()); err != nil {
		t.Fatalf("FetchTrending returned error: %v", err)
	}
	svc.UpdateAPIKeys("rotated-key", "yt-key", "en", "")

	if _, err := svc.FetchTrending(context.Background()); err != nil {
		t.Fatalf("FetchTrending returned error: %v", err)
	}
	if got := lastKey.Load(); got != "rotated-key" {
		t.Fatalf("expected refetch with rotated-key, got %v", got)
	}
}

func TestFetchTrendingHTTPErrorIsFetchFailed(t *testing.T) {
	svc := newTestService(t, time.Hour, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"status_message":"Invalid API key"}`), nil
	})

	_, err := svc.FetchTrending(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.Op != "trending" || !strings.Contains(fe.Reason, "Unauthorized") {
		t.Fatalf("unexpected fetch error: %+v", fe)
	}
}

func TestFetchTrendingTransportErrorKeepsReason(t *testing.T) {
	svc := newTestService(t, 0, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := svc.FetchTrending(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected reason to be carried, got %q", err.Error())
	}
}

func TestUnconfiguredServiceFails(t *testing.T) {
	svc := NewService(Config{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			t.Fatalf("unexpected request to %s", req.URL)
			return nil, nil
		})},
	})

	if _, err := svc.FetchTrending(context.Background()); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("trending: expected ErrFetchFailed, got %v", err)
	}
	if _, err := svc.SearchTitles(context.Background(), "dune"); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("search: expected ErrFetchFailed, got %v", err)
	}
	if _, err := svc.FetchVideoMetadata(context.Background(), "dune trailer"); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("video: expected ErrFetchFailed, got %v", err)
	}
}

func TestSearchTitlesDropsPeople(t *testing.T) {
	svc := newTestService(t, 0, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/3/search/multi" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		if got := req.URL.Query().Get("query"); got != "dune" {
			t.Fatalf("expected query dune, got %q", got)
		}
		return jsonResponse(http.StatusOK, `{"results":[
			{"id":438631,"media_type":"movie","title":"Dune","release_date":"2021-09-15"},
			{"id":1190668,"media_type":"person","name":"Timothee Chalamet"},
			{"id":90228,"media_type":"tv","name":"Dune: Prophecy","first_air_date":"2024-11-17"}
		]}`), nil
	})

	titles, err := svc.SearchTitles(context.Background(), "  dune ")
	if err != nil {
		t.Fatalf("SearchTitles returned error: %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("expected 2 titles, got %d: %+v", len(titles), titles)
	}
	if titles[1].Title != "Dune: Prophecy" || titles[1].MediaType != "tv" || titles[1].ReleaseDate != "2024-11-17" {
		t.Fatalf("unexpected tv result: %+v", titles[1])
	}
}

func TestSearchTitlesBlankQuery(t *testing.T) {
	svc := newTestService(t, 0, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("blank query should not hit the network")
		return nil, nil
	})

	titles, err := svc.SearchTitles(context.Background(), "   ")
	if err != nil {
		t.Fatalf("SearchTitles returned error: %v", err)
	}
	if titles == nil || len(titles) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", titles)
	}
}

func TestFetchVideoMetadataPicksBestMatch(t *testing.T) {
	svc := newTestService(t, 0, func(req *http.Request) (*http.Response, error) {
		if req.URL.Host != "www.googleapis.com" {
			t.Fatalf("unexpected host %s", req.URL.Host)
		}
		q := req.URL.Query()
		if q.Get("key") != "yt-key" || q.Get("type") != "video" || q.Get("q") != "Dune trailer 2021" {
			t.Fatalf("unexpected query %v", q)
		}
		return jsonResponse(http.StatusOK, `{"items":[
			{"id":{"kind":"youtube#video","videoId":"react1"},"snippet":{"title":"Reacting to every sci-fi trailer of 2021","channelTitle":"Reacts"}},
			{"id":{"kind":"youtube#video","videoId":""},"snippet":{"title":"Broken"}},
			{"id":{"kind":"youtube#video","videoId":"n9xhJrPXop4"},"snippet":{"title":"Dune | Official Trailer 2021","channelTitle":"Warner Bros."}}
		]}`), nil
	})

	ref, err := svc.FetchVideoMetadata(context.Background(), "Dune trailer 2021")
	if err != nil {
		t.Fatalf("FetchVideoMetadata returned error: %v", err)
	}
	if ref.VideoID != "n9xhJrPXop4" || ref.Channel != "Warner Bros." {
		t.Fatalf("unexpected video: %+v", ref)
	}
	if ref.EmbedURL() != "https://www.youtube.com/embed/n9xhJrPXop4" {
		t.Fatalf("unexpected embed url %q", ref.EmbedURL())
	}
}

func TestFetchVideoMetadataNoResults(t *testing.T) {
	svc := newTestService(t, 0, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"items":[]}`), nil
	})

	ref, err := svc.FetchVideoMetadata(context.Background(), "Obscure trailer 1931")
	if err != nil {
		t.Fatalf("expected nil error for no results, got %v", err)
	}
	if ref.Found() {
		t.Fatalf("expected empty ref, got %+v", ref)
	}
}

func TestFetchVideoMetadataAPIError(t *testing.T) {
	svc := newTestService(t, 0, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusForbidden, `{"error":{"code":403,"message":"quotaExceeded"}}`), nil
	})

	_, err := svc.FetchVideoMetadata(context.Background(), "Dune trailer 2021")
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "quotaExceeded") {
		t.Fatalf("expected api message in error, got %q", err.Error())
	}
}

func TestAsyncFuturesSettle(t *testing.T) {
	svc := newTestService(t, 0, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, trendingBody), nil
	})

	titles, err := TrendingAsync(context.Background(), svc).Collect()
	if err != nil || len(titles) != 2 {
		t.Fatalf("unexpected trending future result: %v %v", titles, err)
	}

	failing := newTestService(t, 0, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("boom")
	})
	if _, err := SearchAsync(context.Background(), failing, "dune").Collect(); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected search future to reject with ErrFetchFailed, got %v", err)
	}
}
