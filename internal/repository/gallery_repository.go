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

const galleryColumns = "id, name, url, size, type, tags, event, created"

// GalleryRepository provides persistence for gallery images.
type GalleryRepository struct {
	db  *sqlx.DB
	ids *ContentIDs
}

// NewGalleryRepository creates the repository.
func NewGalleryRepository(db *sqlx.DB, ids *ContentIDs) *GalleryRepository {
	return &GalleryRepository{db: db, ids: ids}
}

// List returns images matching the filter, newest first.
func (r *GalleryRepository) List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryImage, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if filter.EventOnly {
		where = append(where, "event = TRUE")
	}
	if filter.Tag != "" {
		where = append(where, fmt.Sprintf("$%d = ANY(tags)", len(args)+1))
		args = append(args, filter.Tag)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page, size := normalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM gallery_images WHERE %s
ORDER BY created DESC
LIMIT %d OFFSET %d`, galleryColumns, whereClause, size, offset)
	var images []models.GalleryImage
	if err := r.db.SelectContext(ctx, &images, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list gallery images: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM gallery_images WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count gallery images: %w", err)
	}
	return images, total, nil
}

// GetByID returns an image by identifier.
func (r *GalleryRepository) GetByID(ctx context.Context, id int64) (*models.GalleryImage, error) {
	query := fmt.Sprintf("SELECT %s FROM gallery_images WHERE id = $1", galleryColumns)
	var image models.GalleryImage
	if err := r.db.GetContext(ctx, &image, query, id); err != nil {
		return nil, err
	}
	return &image, nil
}

// Create inserts a new image record, drawing its id from the shared counter.
func (r *GalleryRepository) Create(ctx context.Context, image *models.GalleryImage) error {
	if image.ID == 0 {
		id, err := r.ids.Next(ctx)
		if err != nil {
			return err
		}
		image.ID = id
	}
	if image.Created.IsZero() {
		image.Created = time.Now().UTC()
	}
	query := `INSERT INTO gallery_images (id, name, url, size, type, tags, event, created)
VALUES (:id, :name, :url, :size, :type, :tags, :event, :created)`
	if _, err := r.db.NamedExecContext(ctx, query, image); err != nil {
		return fmt.Errorf("create gallery image: %w", err)
	}
	return nil
}

// Update modifies an existing image record.
func (r *GalleryRepository) Update(ctx context.Context, image *models.GalleryImage) error {
	query := `UPDATE gallery_images SET name = :name, url = :url, size = :size, type = :type, tags = :tags, event = :event
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, image); err != nil {
		return fmt.Errorf("update gallery image: %w", err)
	}
	return nil
}

// Delete removes an image record.
func (r *GalleryRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM gallery_images WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete gallery image: %w", err)
	}
	return nil
}

// BulkDelete removes the given image ids.
func (r *GalleryRepository) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM gallery_images WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete gallery images: %w", err)
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// Tags returns the distinct set of tags in use, alphabetically.
func (r *GalleryRepository) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	err := r.db.SelectContext(ctx, &tags,
		"SELECT DISTINCT unnest(tags) AS tag FROM gallery_images ORDER BY tag ASC")
	if err != nil {
		return nil, fmt.Errorf("list gallery tags: %w", err)
	}
	return tags, nil
}

// All returns every image, for CSV export.
func (r *GalleryRepository) All(ctx context.Context) ([]models.GalleryImage, error) {
	query := fmt.Sprintf("SELECT %s FROM gallery_images ORDER BY created DESC", galleryColumns)
	var images []models.GalleryImage
	if err := r.db.SelectContext(ctx, &images, query); err != nil {
		return nil, fmt.Errorf("export gallery images: %w", err)
	}
	return images, nil
}
