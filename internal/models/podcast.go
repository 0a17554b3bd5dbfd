package models

import "time"

// PodcastSeries groups episodes under a named teaching series.
type PodcastSeries struct {
	ID          int64     `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Episodes is populated on demand; it is not a column.
	Episodes []PodcastEpisode `db:"-" json:"episodes,omitempty"`
}

// PodcastEpisode represents one episode within a series.
type PodcastEpisode struct {
	ID           int64      `db:"id" json:"id"`
	SeriesID     int64      `db:"series_id" json:"series_id"`
	Number       int        `db:"number" json:"number"`
	Title        string     `db:"title" json:"title"`
	Link         *string    `db:"link" json:"link,omitempty"`
	ListenURL    *string    `db:"listen_url" json:"listen_url,omitempty"`
	HandoutURL   *string    `db:"handout_url" json:"handout_url,omitempty"`
	Guest        *string    `db:"guest" json:"guest,omitempty"`
	DateAdded    *time.Time `db:"date_added" json:"date_added,omitempty"`
	Season       int        `db:"season" json:"season"`
	Scripture    string     `db:"scripture" json:"scripture,omitempty"`
	ThumbnailURL *string    `db:"podcast_thumbnail_url" json:"podcast_thumbnail_url,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// PodcastEpisodeFilter captures listing criteria for episodes.
type PodcastEpisodeFilter struct {
	SeriesID int64
	Search   string
	Season   int
	Page     int
	PageSize int
}
