package models

import (
	"time"

	"github.com/lib/pq"
)

// Sermon represents a persisted sermon row. Link fields point at external
// podcast platforms; the first non-empty one doubles as the canonical link.
type Sermon struct {
	ID              int64          `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Speaker         string         `db:"speaker" json:"speaker"`
	Scripture       string         `db:"scripture" json:"scripture,omitempty"`
	Date            time.Time      `db:"date" json:"date"`
	Series          string         `db:"series" json:"series"`
	EpisodeNumber   *int           `db:"episode_number" json:"episode_number,omitempty"`
	SpotifyURL      *string        `db:"spotify_url" json:"spotify_url,omitempty"`
	YouTubeURL      *string        `db:"youtube_url" json:"youtube_url,omitempty"`
	ApplePodcastURL *string        `db:"apple_podcasts_url" json:"apple_podcasts_url,omitempty"`
	ThumbnailURL    *string        `db:"podcast_thumbnail_url" json:"podcast_thumbnail_url,omitempty"`
	Tags            pq.StringArray `db:"tags" json:"tags,omitempty"`
	Active          bool           `db:"active" json:"active"`
	Archived        bool           `db:"archived" json:"archived"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Link returns the preferred external link for the sermon.
func (s Sermon) Link() string {
	for _, u := range []*string{s.SpotifyURL, s.YouTubeURL, s.ApplePodcastURL} {
		if u != nil && *u != "" {
			return *u
		}
	}
	return ""
}

// SermonFilter captures listing and search criteria for sermons.
type SermonFilter struct {
	Search          string
	Year            int
	Speaker         string
	Series          string
	IncludeArchived bool
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
}
