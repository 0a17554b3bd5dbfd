package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
)

const sermonColumns = "id, title, speaker, scripture, date, series, episode_number, spotify_url, youtube_url, apple_podcasts_url, podcast_thumbnail_url, tags, active, archived, created_at, updated_at"

// SermonRepository provides persistence for sermons.
type SermonRepository struct {
	db  *sqlx.DB
	ids *ContentIDs
}

// NewSermonRepository creates the repository.
func NewSermonRepository(db *sqlx.DB, ids *ContentIDs) *SermonRepository {
	return &SermonRepository{db: db, ids: ids}
}

// List returns sermons matching the filter, newest first by default.
func (r *SermonRepository) List(ctx context.Context, filter models.SermonFilter) ([]models.Sermon, int, error) {
	where := []string{"active = TRUE"}
	if !filter.IncludeArchived {
		where = append(where, "archived = FALSE")
	}
	args := []interface{}{}

	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR scripture ILIKE $%d OR speaker ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Year > 0 {
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM date) = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Speaker != "" {
		where = append(where, fmt.Sprintf("speaker ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Speaker+"%")
	}
	if filter.Series != "" {
		where = append(where, fmt.Sprintf("series ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Series+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page, size := normalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM sermons WHERE %s
ORDER BY %s
LIMIT %d OFFSET %d`, sermonColumns, whereClause, sermonOrder(filter.SortBy, filter.SortOrder), size, offset)
	var sermons []models.Sermon
	if err := r.db.SelectContext(ctx, &sermons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sermons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM sermons WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sermons: %w", err)
	}
	return sermons, total, nil
}

// ListArchived returns sermons older than the cutoff, optionally narrowed to a
// single year. The cutoff classifies content as historical.
func (r *SermonRepository) ListArchived(ctx context.Context, cutoff time.Time, year int) ([]models.Sermon, error) {
	where := []string{"(archived = TRUE OR date < $1)"}
	args := []interface{}{cutoff}
	if year > 0 {
		where = append(where, fmt.Sprintf("EXTRACT(YEAR FROM date) = $%d", len(args)+1))
		args = append(args, year)
	}
	query := fmt.Sprintf("SELECT %s FROM sermons WHERE %s ORDER BY date DESC", sermonColumns, strings.Join(where, " AND "))
	var sermons []models.Sermon
	if err := r.db.SelectContext(ctx, &sermons, query, args...); err != nil {
		return nil, fmt.Errorf("list archived sermons: %w", err)
	}
	return sermons, nil
}

// GetByID returns a sermon by identifier.
func (r *SermonRepository) GetByID(ctx context.Context, id int64) (*models.Sermon, error) {
	query := fmt.Sprintf("SELECT %s FROM sermons WHERE id = $1", sermonColumns)
	var sermon models.Sermon
	if err := r.db.GetContext(ctx, &sermon, query, id); err != nil {
		return nil, err
	}
	return &sermon, nil
}

// ExistsByTitleAndDate reports whether a sermon with the same title on the
// same date already exists; feed sync uses it to avoid duplicates.
func (r *SermonRepository) ExistsByTitleAndDate(ctx context.Context, title string, date time.Time) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one,
		"SELECT 1 FROM sermons WHERE LOWER(title) = LOWER($1) AND date = $2 LIMIT 1", title, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create inserts a new sermon, drawing its id from the shared counter.
func (r *SermonRepository) Create(ctx context.Context, sermon *models.Sermon) error {
	if sermon.ID == 0 {
		id, err := r.ids.Next(ctx)
		if err != nil {
			return err
		}
		sermon.ID = id
	}
	now := time.Now().UTC()
	if sermon.CreatedAt.IsZero() {
		sermon.CreatedAt = now
	}
	sermon.UpdatedAt = now
	query := `INSERT INTO sermons (id, title, speaker, scripture, date, series, episode_number, spotify_url, youtube_url, apple_podcasts_url, podcast_thumbnail_url, tags, active, archived, created_at, updated_at)
VALUES (:id, :title, :speaker, :scripture, :date, :series, :episode_number, :spotify_url, :youtube_url, :apple_podcasts_url, :podcast_thumbnail_url, :tags, :active, :archived, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sermon); err != nil {
		return fmt.Errorf("create sermon: %w", err)
	}
	return nil
}

// Update modifies an existing sermon.
func (r *SermonRepository) Update(ctx context.Context, sermon *models.Sermon) error {
	sermon.UpdatedAt = time.Now().UTC()
	query := `UPDATE sermons SET title = :title, speaker = :speaker, scripture = :scripture, date = :date, series = :series,
episode_number = :episode_number, spotify_url = :spotify_url, youtube_url = :youtube_url, apple_podcasts_url = :apple_podcasts_url,
podcast_thumbnail_url = :podcast_thumbnail_url, tags = :tags, active = :active, archived = :archived, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, sermon); err != nil {
		return fmt.Errorf("update sermon: %w", err)
	}
	return nil
}

// Delete removes a sermon.
func (r *SermonRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sermons WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete sermon: %w", err)
	}
	return nil
}

// BulkSetArchived flips the archived flag across the given ids.
func (r *SermonRepository) BulkSetArchived(ctx context.Context, ids []int64, archived bool) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sermons SET archived = $1, updated_at = $2 WHERE id = ANY($3)",
		archived, time.Now().UTC(), pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk set archived: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// BulkDelete removes the given ids and returns the number of rows deleted.
func (r *SermonRepository) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sermons WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete sermons: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// All returns every sermon, for CSV export.
func (r *SermonRepository) All(ctx context.Context) ([]models.Sermon, error) {
	query := fmt.Sprintf("SELECT %s FROM sermons ORDER BY date DESC", sermonColumns)
	var sermons []models.Sermon
	if err := r.db.SelectContext(ctx, &sermons, query); err != nil {
		return nil, fmt.Errorf("export sermons: %w", err)
	}
	return sermons, nil
}

func sermonOrder(sortBy, sortOrder string) string {
	column := "date"
	switch sortBy {
	case "title":
		column = "title"
	case "speaker":
		column = "speaker"
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}
