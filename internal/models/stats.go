package models

import "time"

// TypeCount pairs a grouping value with its row count.
type TypeCount struct {
	Value string `db:"value" json:"value"`
	Count int    `db:"count" json:"count"`
}

// AnnouncementStats summarises the announcements table.
type AnnouncementStats struct {
	Total         int         `json:"total"`
	Active        int         `json:"active"`
	Superfeatured int         `json:"superfeatured"`
	ByType        []TypeCount `json:"by_type"`
	ByCategory    []TypeCount `json:"by_category"`
}

// SermonStats summarises the sermons table.
type SermonStats struct {
	Total       int         `json:"total"`
	RecentMonth int         `json:"recent_month"`
	BySpeaker   []TypeCount `json:"by_speaker"`
}

// PodcastStats summarises podcast series and episodes.
type PodcastStats struct {
	Series   int         `json:"series"`
	Episodes int         `json:"episodes"`
	BySeries []TypeCount `json:"by_series"`
}

// GalleryStats summarises the gallery table.
type GalleryStats struct {
	Total       int `json:"total"`
	EventPhotos int `json:"event_photos"`
}

// EventStats summarises ongoing events.
type EventStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// SystemMetrics is an aggregated runtime snapshot for the admin dashboard.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	IngestFetches            uint64    `json:"ingest_fetches"`
	IngestFailures           uint64    `json:"ingest_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// ContentStats aggregates per-table statistics for the admin dashboard.
type ContentStats struct {
	Announcements AnnouncementStats `json:"announcements"`
	Sermons       SermonStats       `json:"sermons"`
	Podcasts      PodcastStats      `json:"podcasts"`
	Gallery       GalleryStats      `json:"gallery"`
	Events        EventStats        `json:"events"`
}
