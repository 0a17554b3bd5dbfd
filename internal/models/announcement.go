package models

import "time"

// AnnouncementType classifies an announcement record.
type AnnouncementType string

const (
	AnnouncementTypeEvent        AnnouncementType = "event"
	AnnouncementTypeAnnouncement AnnouncementType = "announcement"
	AnnouncementTypeOngoing      AnnouncementType = "ongoing"
)

// Announcement represents a persisted announcement row.
type Announcement struct {
	ID            int64            `db:"id" json:"id"`
	Title         string           `db:"title" json:"title"`
	Description   string           `db:"description" json:"description"`
	Type          AnnouncementType `db:"type" json:"type"`
	Category      string           `db:"category" json:"category"`
	Tag           string           `db:"tag" json:"tag,omitempty"`
	Superfeatured bool             `db:"superfeatured" json:"superfeatured"`
	Active        bool             `db:"active" json:"active"`
	FeaturedImage *string          `db:"featured_image" json:"featured_image,omitempty"`
	DateEntered   time.Time        `db:"date_entered" json:"date_entered"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter captures listing criteria for announcements.
type AnnouncementFilter struct {
	Type          string
	Category      string
	Active        *bool
	Superfeatured *bool
	Search        string
	Page          int
	PageSize      int
}
