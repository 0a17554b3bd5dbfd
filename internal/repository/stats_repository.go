package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
)

// StatsRepository aggregates per-table counts for the admin dashboard and the
// content stats CLI.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// ContentStats gathers counts across every content table.
func (r *StatsRepository) ContentStats(ctx context.Context) (*models.ContentStats, error) {
	stats := &models.ContentStats{}

	if err := r.announcementStats(ctx, &stats.Announcements); err != nil {
		return nil, err
	}
	if err := r.sermonStats(ctx, &stats.Sermons); err != nil {
		return nil, err
	}
	if err := r.podcastStats(ctx, &stats.Podcasts); err != nil {
		return nil, err
	}
	if err := r.galleryStats(ctx, &stats.Gallery); err != nil {
		return nil, err
	}
	if err := r.eventStats(ctx, &stats.Events); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *StatsRepository) announcementStats(ctx context.Context, out *models.AnnouncementStats) error {
	const query = `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE active) AS active,
COUNT(*) FILTER (WHERE superfeatured) AS superfeatured
FROM announcements`
	row := struct {
		Total         int `db:"total"`
		Active        int `db:"active"`
		Superfeatured int `db:"superfeatured"`
	}{}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return fmt.Errorf("announcement stats: %w", err)
	}
	out.Total = row.Total
	out.Active = row.Active
	out.Superfeatured = row.Superfeatured

	byType, err := r.groupCounts(ctx, "SELECT type AS value, COUNT(*) AS count FROM announcements GROUP BY type ORDER BY count DESC")
	if err != nil {
		return err
	}
	out.ByType = byType

	byCategory, err := r.groupCounts(ctx, "SELECT category AS value, COUNT(*) AS count FROM announcements WHERE category <> '' GROUP BY category ORDER BY count DESC")
	if err != nil {
		return err
	}
	out.ByCategory = byCategory
	return nil
}

func (r *StatsRepository) sermonStats(ctx context.Context, out *models.SermonStats) error {
	const query = `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE date >= NOW() - INTERVAL '30 days') AS recent_month
FROM sermons`
	row := struct {
		Total       int `db:"total"`
		RecentMonth int `db:"recent_month"`
	}{}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return fmt.Errorf("sermon stats: %w", err)
	}
	out.Total = row.Total
	out.RecentMonth = row.RecentMonth

	bySpeaker, err := r.groupCounts(ctx, "SELECT speaker AS value, COUNT(*) AS count FROM sermons GROUP BY speaker ORDER BY count DESC LIMIT 10")
	if err != nil {
		return err
	}
	out.BySpeaker = bySpeaker
	return nil
}

func (r *StatsRepository) podcastStats(ctx context.Context, out *models.PodcastStats) error {
	if err := r.db.GetContext(ctx, &out.Series, "SELECT COUNT(*) FROM podcast_series"); err != nil {
		return fmt.Errorf("podcast series count: %w", err)
	}
	if err := r.db.GetContext(ctx, &out.Episodes, "SELECT COUNT(*) FROM podcast_episodes"); err != nil {
		return fmt.Errorf("podcast episode count: %w", err)
	}
	bySeries, err := r.groupCounts(ctx, `SELECT s.title AS value, COUNT(e.id) AS count
FROM podcast_series s LEFT JOIN podcast_episodes e ON e.series_id = s.id
GROUP BY s.title ORDER BY count DESC`)
	if err != nil {
		return err
	}
	out.BySeries = bySeries
	return nil
}

func (r *StatsRepository) galleryStats(ctx context.Context, out *models.GalleryStats) error {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE event) AS event_photos FROM gallery_images`
	row := struct {
		Total       int `db:"total"`
		EventPhotos int `db:"event_photos"`
	}{}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return fmt.Errorf("gallery stats: %w", err)
	}
	out.Total = row.Total
	out.EventPhotos = row.EventPhotos
	return nil
}

func (r *StatsRepository) eventStats(ctx context.Context, out *models.EventStats) error {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE active) AS active FROM ongoing_events`
	row := struct {
		Total  int `db:"total"`
		Active int `db:"active"`
	}{}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return fmt.Errorf("event stats: %w", err)
	}
	out.Total = row.Total
	out.Active = row.Active
	return nil
}

func (r *StatsRepository) groupCounts(ctx context.Context, query string) ([]models.TypeCount, error) {
	var counts []models.TypeCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("group counts: %w", err)
	}
	return counts, nil
}
