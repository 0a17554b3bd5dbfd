package models

import (
	"time"

	"github.com/lib/pq"
)

// GalleryImage represents one image in the photo gallery.
type GalleryImage struct {
	ID      int64          `db:"id" json:"id"`
	Name    string         `db:"name" json:"name"`
	URL     string         `db:"url" json:"url"`
	Size    string         `db:"size" json:"size,omitempty"`
	Type    string         `db:"type" json:"type,omitempty"`
	Tags    pq.StringArray `db:"tags" json:"tags"`
	Event   bool           `db:"event" json:"event"`
	Created time.Time      `db:"created" json:"created"`
}

// GalleryFilter captures listing criteria for gallery images.
type GalleryFilter struct {
	EventOnly bool
	Tag       string
	Search    string
	Page      int
	PageSize  int
}
