package ingest

import "time"

// Snapshot is the normalized result of one feed fetch. Every source produces
// the same envelope so handlers and the cache treat them uniformly.
type Snapshot struct {
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Count     int         `json:"count"`
	Items     interface{} `json:"items"`
	FetchedAt time.Time   `json:"fetched_at"`
}

// NewsletterItem is one newsletter issue from the mailing list RSS feed.
type NewsletterItem struct {
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Published *time.Time `json:"published,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	Image     string     `json:"image,omitempty"`
}

// Video is one upload from the YouTube channel feed.
type Video struct {
	VideoID     string     `json:"video_id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Published   *time.Time `json:"published,omitempty"`
	Description string     `json:"description,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
}

// CalendarEvent is one upcoming event from the ICS calendar feed.
type CalendarEvent struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Episode is one podcast episode normalized from RSS or the Spotify API.
type Episode struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Link            string     `json:"link,omitempty"`
	Published       *time.Time `json:"published,omitempty"`
	DurationSeconds int        `json:"duration_seconds,omitempty"`
	Author          string     `json:"author,omitempty"`
	Thumbnail       string     `json:"thumbnail,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
}
