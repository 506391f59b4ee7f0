package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	youtubeSearchURL     = "https://www.googleapis.com/youtube/v3/search"
	youtubeSearchResults = 5
)

var errYouTubeNotConfigured = errors.New("youtube api key not configured")

type youtubeClient struct {
	apiKey string
	httpc  *http.Client
}

func newYouTubeClient(apiKey string, httpc *http.Client) *youtubeClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &youtubeClient{apiKey: strings.TrimSpace(apiKey), httpc: httpc}
}

func (c *youtubeClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type youtubeVideo struct {
	ID      string
	Title   string
	Channel string
}

// search returns up to youtubeSearchResults videos in relevance order.
func (c *youtubeClient) search(ctx context.Context, query string) ([]youtubeVideo, error) {
	if !c.isConfigured() {
		return nil, errYouTubeNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youtubeSearchURL, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("maxResults", strconv.Itoa(youtubeSearchResults))
	q.Set("q", query)
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr youtubeAPIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("youtube search failed: %s: %s", resp.Status, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("youtube search failed: %s", resp.Status)
	}

	var payload youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode youtube response: %w", err)
	}

	videos := make([]youtubeVideo, 0, len(payload.Items))
	for _, item := range payload.Items {
		id := strings.TrimSpace(item.ID.VideoID)
		if id == "" {
			continue
		}
		videos = append(videos, youtubeVideo{
			ID:      id,
			Title:   strings.TrimSpace(item.Snippet.Title),
			Channel: strings.TrimSpace(item.Snippet.ChannelTitle),
		})
	}

	return lo.UniqBy(videos, func(v youtubeVideo) string { return v.ID }), nil
}
