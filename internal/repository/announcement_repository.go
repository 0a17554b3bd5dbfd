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

const announcementColumns = "id, title, description, type, category, tag, superfeatured, active, featured_image, date_entered, updated_at"

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db  *sqlx.DB
	ids *ContentIDs
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB, ids *ContentIDs) *AnnouncementRepository {
	return &AnnouncementRepository{db: db, ids: ids}
}

// List returns announcements matching the filter, newest first, superfeatured
// pinned to the top.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.Type != "" {
		where = append(where, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Superfeatured != nil {
		where = append(where, fmt.Sprintf("superfeatured = $%d", len(args)+1))
		args = append(args, *filter.Superfeatured)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR tag ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page, size := normalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM announcements WHERE %s
ORDER BY superfeatured DESC, date_entered DESC
LIMIT %d OFFSET %d`, announcementColumns, whereClause, size, offset)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM announcements WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	return announcements, total, nil
}

// Highlights returns up to superLimit superfeatured then up to regularLimit
// regular active announcements, newest first.
func (r *AnnouncementRepository) Highlights(ctx context.Context, superLimit, regularLimit int) ([]models.Announcement, error) {
	query := fmt.Sprintf(`(SELECT %s FROM announcements WHERE active = TRUE AND superfeatured = TRUE ORDER BY date_entered DESC LIMIT %d)
UNION ALL
(SELECT %s FROM announcements WHERE active = TRUE AND superfeatured = FALSE ORDER BY date_entered DESC LIMIT %d)`,
		announcementColumns, superLimit, announcementColumns, regularLimit)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query); err != nil {
		return nil, fmt.Errorf("list highlights: %w", err)
	}
	return announcements, nil
}

// GetByID returns an announcement by identifier.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	query := fmt.Sprintf("SELECT %s FROM announcements WHERE id = $1", announcementColumns)
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		return nil, err
	}
	return &announcement, nil
}

// Create inserts a new announcement, drawing its id from the shared counter.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == 0 {
		id, err := r.ids.Next(ctx)
		if err != nil {
			return err
		}
		announcement.ID = id
	}
	now := time.Now().UTC()
	if announcement.DateEntered.IsZero() {
		announcement.DateEntered = now
	}
	announcement.UpdatedAt = now
	query := `INSERT INTO announcements (id, title, description, type, category, tag, superfeatured, active, featured_image, date_entered, updated_at)
VALUES (:id, :title, :description, :type, :category, :tag, :superfeatured, :active, :featured_image, :date_entered, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update modifies an existing announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	announcement.UpdatedAt = time.Now().UTC()
	query := `UPDATE announcements SET title = :title, description = :description, type = :type, category = :category,
tag = :tag, superfeatured = :superfeatured, active = :active, featured_image = :featured_image, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return nil
}

// BulkSetActive flips the active flag across the given ids and returns the
// number of rows touched. Unknown ids are skipped.
func (r *AnnouncementRepository) BulkSetActive(ctx context.Context, ids []int64, active bool) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE announcements SET active = $1, updated_at = $2 WHERE id = ANY($3)",
		active, time.Now().UTC(), pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk set active: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// BulkSetSuperfeatured flips the superfeatured flag across the given ids.
func (r *AnnouncementRepository) BulkSetSuperfeatured(ctx context.Context, ids []int64, featured bool) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE announcements SET superfeatured = $1, updated_at = $2 WHERE id = ANY($3)",
		featured, time.Now().UTC(), pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk set superfeatured: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// BulkDelete removes the given ids and returns the number of rows deleted.
func (r *AnnouncementRepository) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete announcements: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// All returns every announcement, for CSV export.
func (r *AnnouncementRepository) All(ctx context.Context) ([]models.Announcement, error) {
	query := fmt.Sprintf("SELECT %s FROM announcements ORDER BY date_entered DESC", announcementColumns)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query); err != nil {
		return nil, fmt.Errorf("export announcements: %w", err)
	}
	return announcements, nil
}

const maxPageSize = 100

func normalisePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
