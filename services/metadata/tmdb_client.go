package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"marquee/models"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

var errTMDBNotConfigured = errors.New("tmdb api key not configured")

type tmdbClient struct {
	apiKey   string
	language string
	region   string
	httpc    *http.Client

	// Rate limiting
	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language, region string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:      strings.TrimSpace(apiKey),
		language:    language,
		region:      strings.ToUpper(strings.TrimSpace(region)),
		httpc:       httpc,
		minInterval: 20 * time.Millisecond, // TMDB has generous rate limits
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

type tmdbResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	VoteAverage   float64 `json:"vote_average"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	MediaType     string  `json:"media_type"`
}

type tmdbPagedResponse struct {
	Page         int          `json:"page"`
	Results      []tmdbResult `json:"results"`
	TotalResults int          `json:"total_results"`
}

// doGET performs a single throttled GET and decodes the JSON body into v.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, params url.Values, v any) error {
	c.throttleMu.Lock()
	since := time.Since(c.lastRequest)
	if since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
	c.throttleMu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	q.Set("api_key", c.apiKey)
	if lang := strings.TrimSpace(c.language); lang != "" {
		q.Set("language", normalizeLanguage(lang))
	} else {
		q.Set("language", "en-US")
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("tmdb request failed: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}

func (c *tmdbClient) trending(ctx context.Context) ([]models.Title, error) {
	if !c.isConfigured() {
		return nil, errTMDBNotConfigured
	}

	endpoint, err := url.JoinPath(tmdbBaseURL, "trending", "movie", "week")
	if err != nil {
		return nil, err
	}

	var payload tmdbPagedResponse
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return nil, fmt.Errorf("tmdb trending: %w", err)
	}

	return lo.Map(payload.Results, func(r tmdbResult, _ int) models.Title {
		return r.toTitle("movie")
	}), nil
}

func (c *tmdbClient) search(ctx context.Context, query string) ([]models.Title, error) {
	if !c.isConfigured() {
		return nil, errTMDBNotConfigured
	}

	endpoint, err := url.JoinPath(tmdbBaseURL, "search", "multi")
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if c.region != "" {
		params.Set("region", c.region)
	}

	var payload tmdbPagedResponse
	if err := c.doGET(ctx, endpoint, params, &payload); err != nil {
		return nil, fmt.Errorf("tmdb search %q: %w", query, err)
	}

	// Multi search also returns people; only movies and shows are titles.
	return lo.FilterMap(payload.Results, func(r tmdbResult, _ int) (models.Title, bool) {
		switch r.MediaType {
		case "movie", "tv":
			return r.toTitle(r.MediaType), true
		default:
			return models.Title{}, false
		}
	}), nil
}

func (r tmdbResult) toTitle(mediaType string) models.Title {
	releaseDate := strings.TrimSpace(r.ReleaseDate)
	if releaseDate == "" {
		releaseDate = strings.TrimSpace(r.FirstAirDate)
	}
	return models.Title{
		ID:            r.ID,
		Title:         pickTMDBName(mediaType, r.Name, r.Title),
		OriginalTitle: strings.TrimSpace(r.OriginalTitle),
		OriginalName:  strings.TrimSpace(r.OriginalName),
		PosterPath:    strings.TrimSpace(r.PosterPath),
		ReleaseDate:   releaseDate,
		VoteAverage:   r.VoteAverage,
		Overview:      r.Overview,
		MediaType:     mediaType,
	}
}

func pickTMDBName(mediaType, seriesName, movieTitle string) string {
	if mediaType == "movie" && movieTitle != "" {
		return movieTitle
	}
	if seriesName != "" {
		return seriesName
	}
	return movieTitle
}

func normalizeLanguage(lang string) string {
	lang = strings.ReplaceAll(lang, "_", "-")
	if len(lang) == 2 {
		return strings.ToLower(lang) + "-US"
	}
	if len(lang) >= 5 {
		return strings.ToLower(lang[:2]) + "-" + strings.ToUpper(lang[3:])
	}
	return "en-US"
}
