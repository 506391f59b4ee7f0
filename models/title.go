package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TMDB poster rendition used by every client list and detail view.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"

const unknownTitle = "Unknown Title"

// Title is a movie or show record as returned by the metadata gateway.
// Identity is by ID only; the remaining fields may drift between fetches.
type Title struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"originalTitle,omitempty"`
	OriginalName  string  `json:"originalName,omitempty"`
	PosterPath    string  `json:"posterPath,omitempty"`
	ReleaseDate   string  `json:"releaseDate,omitempty"` // YYYY-MM-DD
	VoteAverage   float64 `json:"voteAverage"`
	Overview      string  `json:"overview,omitempty"`
	MediaType     string  `json:"mediaType,omitempty"` // movie | tv
}

// MarshalJSON adds the derived posterUrl so clients need not know the
// TMDB image host. It is ignored when decoding.
func (t Title) MarshalJSON() ([]byte, error) {
	type titleJSON Title
	return json.Marshal(struct {
		titleJSON
		PosterURL string `json:"posterUrl,omitempty"`
	}{titleJSON: titleJSON(t), PosterURL: t.PosterURL()})
}

// SameAs reports whether both values describe the same entity.
func (t Title) SameAs(other Title) bool {
	return t.ID == other.ID
}

// DisplayName picks the original title, then the original series name,
// then the localised title.
func (t Title) DisplayName() string {
	for _, name := range []string{t.OriginalTitle, t.OriginalName, t.Title} {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			return trimmed
		}
	}
	return unknownTitle
}

// PosterURL returns the absolute poster URL, or "" when TMDB has no poster.
func (t Title) PosterURL() string {
	trimmed := strings.TrimSpace(t.PosterPath)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return PosterBaseURL + trimmed
}

// ReleaseYear returns the first four characters of the release date.
func (t Title) ReleaseYear() string {
	date := strings.TrimSpace(t.ReleaseDate)
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// RatingLabel formats the average vote the way list rows show it.
func (t Title) RatingLabel() string {
	return fmt.Sprintf("%.1f", t.VoteAverage)
}
