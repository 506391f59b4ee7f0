package metadata

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"marquee/models"
	"marquee/utils/similarity"
)

// Config wires the remote clients behind Service.
type Config struct {
	TMDBAPIKey    string
	YouTubeAPIKey string
	Language      string
	Region        string
	CacheDir      string
	TrendingTTL   time.Duration
	// Fs backs the trending cache; nil means the OS filesystem.
	Fs         afero.Fs
	HTTPClient *http.Client
}

// Service is the TMDB + YouTube implementation of Gateway.
type Service struct {
	mu       sync.RWMutex
	tmdb     *tmdbClient
	youtube  *youtubeClient
	httpc    *http.Client
	trending *trendingCache
}

var _ Gateway = (*Service)(nil)

func NewService(cfg Config) *Service {
	return &Service{
		tmdb:     newTMDBClient(cfg.TMDBAPIKey, cfg.Language, cfg.Region, cfg.HTTPClient),
		youtube:  newYouTubeClient(cfg.YouTubeAPIKey, cfg.HTTPClient),
		httpc:    cfg.HTTPClient,
		trending: newTrendingCache(cfg.Fs, cfg.CacheDir, cfg.TrendingTTL),
	}
}

// UpdateAPIKeys swaps in clients built from new credentials. Calls already
// in flight finish with the old ones. The cached trending response is
// dropped since it may come from a different language or region.
func (s *Service) UpdateAPIKeys(tmdbKey, youtubeKey, language, region string) {
	s.mu.Lock()
	s.tmdb = newTMDBClient(tmdbKey, language, region, s.httpc)
	s.youtube = newYouTubeClient(youtubeKey, s.httpc)
	s.mu.Unlock()

	if err := s.trending.clear(); err != nil {
		log.Printf("[metadata] %v", err)
	}
}

func (s *Service) clients() (*tmdbClient, *youtubeClient) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tmdb, s.youtube
}

// FetchTrending returns this week's trending movies.
func (s *Service) FetchTrending(ctx context.Context) ([]models.Title, error) {
	if cached, ok := s.trending.get(); ok {
		return cached, nil
	}

	tmdb, _ := s.clients()
	titles, err := tmdb.trending(ctx)
	if err != nil {
		log.Printf("[metadata] trending fetch failed: %v", err)
		return nil, fetchFailed("trending", err)
	}

	s.trending.set(titles)
	return titles, nil
}

// SearchTitles returns movies and shows matching query. A blank query
// matches nothing and makes no request.
func (s *Service) SearchTitles(ctx context.Context, query string) ([]models.Title, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Title{}, nil
	}

	tmdb, _ := s.clients()
	titles, err := tmdb.search(ctx, query)
	if err != nil {
		log.Printf("[metadata] search %q failed: %v", query, err)
		return nil, fetchFailed("search", err)
	}
	return titles, nil
}

// FetchVideoMetadata searches YouTube and returns the result whose title
// best matches query. No results yields an empty VideoRef and a nil error.
func (s *Service) FetchVideoMetadata(ctx context.Context, query string) (models.VideoRef, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.VideoRef{}, nil
	}

	_, youtube := s.clients()
	videos, err := youtube.search(ctx, query)
	if err != nil {
		log.Printf("[metadata] video lookup %q failed: %v", query, err)
		return models.VideoRef{}, fetchFailed("video lookup", err)
	}
	if len(videos) == 0 {
		return models.VideoRef{}, nil
	}

	titles := lo.Map(videos, func(v youtubeVideo, _ int) string { return v.Title })
	best := videos[similarity.Best(titles, query)]

	return models.VideoRef{
		VideoID: best.ID,
		Title:   best.Title,
		Channel: best.Channel,
	}, nil
}

// ClearCache drops the cached trending response.
func (s *Service) ClearCache() error {
	return s.trending.clear()
}
