package models

import "time"

// OngoingEvent represents a recurring church activity shown on the site.
type OngoingEvent struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Type        string    `db:"type" json:"type,omitempty"`
	Category    string    `db:"category" json:"category,omitempty"`
	Active      bool      `db:"active" json:"active"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	DateEntered time.Time `db:"date_entered" json:"date_entered"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// OngoingEventFilter captures listing criteria for ongoing events.
type OngoingEventFilter struct {
	Category string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
