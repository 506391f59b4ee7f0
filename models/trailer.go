package models

import "strings"

const YouTubeEmbedBaseURL = "https://www.youtube.com/embed/"

// VideoRef is the result of a video lookup. An empty VideoID means nothing
// matched, which is not the same thing as a failed lookup.
type VideoRef struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// Found reports whether the lookup matched a playable video.
func (v VideoRef) Found() bool {
	return strings.TrimSpace(v.VideoID) != ""
}

// EmbedURL returns the embeddable player URL for the referenced video.
func (v VideoRef) EmbedURL() string {
	if !v.Found() {
		return ""
	}
	return YouTubeEmbedBaseURL + strings.TrimSpace(v.VideoID)
}

type TrailerStatus string

const (
	TrailerPending  TrailerStatus = "pending"
	TrailerResolved TrailerStatus = "resolved"
	TrailerFailed   TrailerStatus = "failed"
)

// TrailerFailure separates "nothing found" from "the lookup itself failed".
type TrailerFailure string

const (
	TrailerNotFound    TrailerFailure = "not_found"
	TrailerFetchFailed TrailerFailure = "fetch_failed"
)

const TrailerNotFoundReason = "No trailer found"

// TrailerState is the tri-state outcome of a single trailer lookup.
type TrailerState struct {
	LookupID string         `json:"lookupId,omitempty"`
	TitleID  int64          `json:"titleId"`
	Status   TrailerStatus  `json:"status"`
	URL      string         `json:"url,omitempty"`
	VideoID  string         `json:"videoId,omitempty"`
	Failure  TrailerFailure `json:"failure,omitempty"`
	Reason   string         `json:"reason,omitempty"`
}

func PendingTrailer(titleID int64) TrailerState {
	return TrailerState{TitleID: titleID, Status: TrailerPending}
}

func ResolvedTrailer(titleID int64, ref VideoRef) TrailerState {
	return TrailerState{
		TitleID: titleID,
		Status:  TrailerResolved,
		URL:     ref.EmbedURL(),
		VideoID: strings.TrimSpace(ref.VideoID),
	}
}

func FailedTrailer(titleID int64, failure TrailerFailure, reason string) TrailerState {
	return TrailerState{
		TitleID: titleID,
		Status:  TrailerFailed,
		Failure: failure,
		Reason:  reason,
	}
}

// Settled reports whether the state has left pending.
func (s TrailerState) Settled() bool {
	return s.Status == TrailerResolved || s.Status == TrailerFailed
}
