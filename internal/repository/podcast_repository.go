package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
)

const podcastSeriesColumns = "id, slug, title, description, active, created_at, updated_at"

const podcastEpisodeColumns = "id, series_id, number, title, link, listen_url, handout_url, guest, date_added, season, scripture, podcast_thumbnail_url, created_at, updated_at"

// PodcastRepository provides persistence for podcast series and episodes.
type PodcastRepository struct {
	db  *sqlx.DB
	ids *ContentIDs
}

// NewPodcastRepository creates the repository.
func NewPodcastRepository(db *sqlx.DB, ids *ContentIDs) *PodcastRepository {
	return &PodcastRepository{db: db, ids: ids}
}

// ListSeries returns every active podcast series without episodes.
func (r *PodcastRepository) ListSeries(ctx context.Context) ([]models.PodcastSeries, error) {
	query := fmt.Sprintf("SELECT %s FROM podcast_series WHERE active = TRUE ORDER BY title ASC", podcastSeriesColumns)
	var series []models.PodcastSeries
	if err := r.db.SelectContext(ctx, &series, query); err != nil {
		return nil, fmt.Errorf("list podcast series: %w", err)
	}
	return series, nil
}

// GetSeriesBySlug returns one series with its episodes, newest episode first.
func (r *PodcastRepository) GetSeriesBySlug(ctx context.Context, slug string) (*models.PodcastSeries, error) {
	query := fmt.Sprintf("SELECT %s FROM podcast_series WHERE slug = $1", podcastSeriesColumns)
	var series models.PodcastSeries
	if err := r.db.GetContext(ctx, &series, query, slug); err != nil {
		return nil, err
	}
	episodes, _, err := r.ListEpisodes(ctx, models.PodcastEpisodeFilter{SeriesID: series.ID, Page: 1, PageSize: maxPageSize})
	if err != nil {
		return nil, err
	}
	series.Episodes = episodes
	return &series, nil
}

// ListEpisodes returns episodes matching the filter, newest first.
func (r *PodcastRepository) ListEpisodes(ctx context.Context, filter models.PodcastEpisodeFilter) ([]models.PodcastEpisode, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.SeriesID > 0 {
		where = append(where, fmt.Sprintf("series_id = $%d", len(args)+1))
		args = append(args, filter.SeriesID)
	}
	if filter.Season > 0 {
		where = append(where, fmt.Sprintf("season = $%d", len(args)+1))
		args = append(args, filter.Season)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR scripture ILIKE $%d OR guest ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page, size := normalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM podcast_episodes WHERE %s
ORDER BY date_added DESC NULLS LAST, number DESC
LIMIT %d OFFSET %d`, podcastEpisodeColumns, whereClause, size, offset)
	var episodes []models.PodcastEpisode
	if err := r.db.SelectContext(ctx, &episodes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list podcast episodes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM podcast_episodes WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count podcast episodes: %w", err)
	}
	return episodes, total, nil
}

// GetEpisodeByID returns a single episode.
func (r *PodcastRepository) GetEpisodeByID(ctx context.Context, id int64) (*models.PodcastEpisode, error) {
	query := fmt.Sprintf("SELECT %s FROM podcast_episodes WHERE id = $1", podcastEpisodeColumns)
	var episode models.PodcastEpisode
	if err := r.db.GetContext(ctx, &episode, query, id); err != nil {
		return nil, err
	}
	return &episode, nil
}

// CreateEpisode inserts an episode, drawing its id from the shared counter.
func (r *PodcastRepository) CreateEpisode(ctx context.Context, episode *models.PodcastEpisode) error {
	if episode.ID == 0 {
		id, err := r.ids.Next(ctx)
		if err != nil {
			return err
		}
		episode.ID = id
	}
	now := time.Now().UTC()
	if episode.CreatedAt.IsZero() {
		episode.CreatedAt = now
	}
	episode.UpdatedAt = now
	query := `INSERT INTO podcast_episodes (id, series_id, number, title, link, listen_url, handout_url, guest, date_added, season, scripture, podcast_thumbnail_url, created_at, updated_at)
VALUES (:id, :series_id, :number, :title, :link, :listen_url, :handout_url, :guest, :date_added, :season, :scripture, :podcast_thumbnail_url, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, episode); err != nil {
		return fmt.Errorf("create podcast episode: %w", err)
	}
	return nil
}

// UpdateEpisode modifies an existing episode.
func (r *PodcastRepository) UpdateEpisode(ctx context.Context, episode *models.PodcastEpisode) error {
	episode.UpdatedAt = time.Now().UTC()
	query := `UPDATE podcast_episodes SET series_id = :series_id, number = :number, title = :title, link = :link,
listen_url = :listen_url, handout_url = :handout_url, guest = :guest, date_added = :date_added, season = :season,
scripture = :scripture, podcast_thumbnail_url = :podcast_thumbnail_url, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, episode); err != nil {
		return fmt.Errorf("update podcast episode: %w", err)
	}
	return nil
}

// DeleteEpisode removes an episode.
func (r *PodcastRepository) DeleteEpisode(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM podcast_episodes WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete podcast episode: %w", err)
	}
	return nil
}

// BulkDeleteEpisodes removes the given episode ids.
func (r *PodcastRepository) BulkDeleteEpisodes(ctx context.Context, ids []int64) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM podcast_episodes WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete podcast episodes: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// MaxEpisodeNumber returns the highest episode number in a series, zero when
// the series has no episodes yet.
func (r *PodcastRepository) MaxEpisodeNumber(ctx context.Context, seriesID int64) (int, error) {
	var max int
	err := r.db.GetContext(ctx, &max,
		"SELECT COALESCE(MAX(number), 0) FROM podcast_episodes WHERE series_id = $1", seriesID)
	if err != nil {
		return 0, fmt.Errorf("max episode number: %w", err)
	}
	return max, nil
}

// AllEpisodes returns every episode, for CSV export.
func (r *PodcastRepository) AllEpisodes(ctx context.Context) ([]models.PodcastEpisode, error) {
	query := fmt.Sprintf("SELECT %s FROM podcast_episodes ORDER BY series_id ASC, number DESC", podcastEpisodeColumns)
	var episodes []models.PodcastEpisode
	if err := r.db.SelectContext(ctx, &episodes, query); err != nil {
		return nil, fmt.Errorf("export podcast episodes: %w", err)
	}
	return episodes, nil
}
