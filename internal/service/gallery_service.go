package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
)

type galleryRepository interface {
	List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryImage, int, error)
	GetByID(ctx context.Context, id int64) (*models.GalleryImage, error)
	Create(ctx context.Context, image *models.GalleryImage) error
	Update(ctx context.Context, image *models.GalleryImage) error
	Delete(ctx context.Context, id int64) error
	BulkDelete(ctx context.Context, ids []int64) (int, error)
	Tags(ctx context.Context) ([]string, error)
}

// GalleryImageRequest holds the payload for creating or updating an image.
type GalleryImageRequest struct {
	Name  string   `json:"name" validate:"required"`
	URL   string   `json:"url" validate:"required,url"`
	Size  string   `json:"size"`
	Type  string   `json:"type"`
	Tags  []string `json:"tags"`
	Event bool     `json:"event"`
}

// GalleryService handles photo gallery use-cases.
type GalleryService struct {
	repo      galleryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGalleryService constructs the gallery service.
func NewGalleryService(repo galleryRepository, validate *validator.Validate, logger *zap.Logger) *GalleryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GalleryService{repo: repo, validator: validate, logger: logger}
}

// List returns gallery images and pagination metadata.
func (s *GalleryService) List(ctx context.Context, filter models.GalleryFilter) ([]models.GalleryImage, *models.Pagination, error) {
	images, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list gallery images")
	}
	return images, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one image.
func (s *GalleryService) Get(ctx context.Context, id int64) (*models.GalleryImage, error) {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gallery image not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gallery image")
	}
	return image, nil
}

// Create stores a new image record.
func (s *GalleryService) Create(ctx context.Context, req GalleryImageRequest) (*models.GalleryImage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gallery payload")
	}
	image := &models.GalleryImage{
		Name:  req.Name,
		URL:   req.URL,
		Size:  req.Size,
		Type:  req.Type,
		Tags:  req.Tags,
		Event: req.Event,
	}
	if err := s.repo.Create(ctx, image); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create gallery image")
	}
	return image, nil
}

// Update modifies an existing image record.
func (s *GalleryService) Update(ctx context.Context, id int64, req GalleryImageRequest) (*models.GalleryImage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gallery payload")
	}
	image, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	image.Name = req.Name
	image.URL = req.URL
	image.Size = req.Size
	image.Type = req.Type
	image.Tags = req.Tags
	image.Event = req.Event
	if err := s.repo.Update(ctx, image); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update gallery image")
	}
	return image, nil
}

// Delete removes an image record.
func (s *GalleryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete gallery image")
	}
	return nil
}

// BulkDelete removes a set of image records.
func (s *GalleryService) BulkDelete(ctx context.Context, req BulkIDsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	affected, err := s.repo.BulkDelete(ctx, req.IDs)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete gallery images")
	}
	return affected, nil
}

// Tags returns the distinct tags in use.
func (s *GalleryService) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.repo.Tags(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list gallery tags")
	}
	return tags, nil
}
