package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ContentIDs hands out globally unique integer ids for all content types from
// the shared content_ids sequence. Every table draws from the same counter so
// an id never repeats across entity kinds.
type ContentIDs struct {
	db *sqlx.DB
}

// NewContentIDs creates the id allocator.
func NewContentIDs(db *sqlx.DB) *ContentIDs {
	return &ContentIDs{db: db}
}

// Next returns the next id from the shared counter.
func (r *ContentIDs) Next(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, "SELECT nextval('content_ids')"); err != nil {
		return 0, fmt.Errorf("next content id: %w", err)
	}
	return id, nil
}
