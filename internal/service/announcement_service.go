package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
)

// Up to three superfeatured and seven regular announcements make the
// homepage highlights strip.
const (
	highlightSuperLimit   = 3
	highlightRegularLimit = 7
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	Highlights(ctx context.Context, superLimit, regularLimit int) ([]models.Announcement, error)
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id int64) error
	BulkSetActive(ctx context.Context, ids []int64, active bool) (int, error)
	BulkSetSuperfeatured(ctx context.Context, ids []int64, superfeatured bool) (int, error)
	BulkDelete(ctx context.Context, ids []int64) (int, error)
}

// listingCache backs the public listing endpoints with a read-through cache
// keyed under public:announcements:*. A nil cache is a no-op.
type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const announcementListingTTL = 5 * time.Minute

// cachedListing is the cache payload for a listing page.
type cachedListing struct {
	Announcements []models.Announcement `json:"announcements"`
	Pagination    *models.Pagination    `json:"pagination"`
}

// AnnouncementRequest holds the payload for creating or updating an
// announcement.
type AnnouncementRequest struct {
	Title         string  `json:"title" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	Type          string  `json:"type" validate:"required,oneof=event announcement ongoing"`
	Category      string  `json:"category"`
	Tag           string  `json:"tag"`
	Superfeatured bool    `json:"superfeatured"`
	Active        bool    `json:"active"`
	FeaturedImage *string `json:"featured_image"`
}

// BulkIDsRequest addresses a set of records for a bulk action.
type BulkIDsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// AnnouncementService handles announcement use-cases.
type AnnouncementService struct {
	repo      announcementRepository
	cache     listingCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the announcement service.
func NewAnnouncementService(repo announcementRepository, cache listingCache, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns announcements and pagination metadata. Pages are served from
// the listing cache when present; mutations invalidate the whole namespace.
func (s *AnnouncementService) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error) {
	key := listingCacheKey(filter)
	if s.cache != nil {
		var cached cachedListing
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Announcements, cached.Pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("announcement cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	announcements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	pagination := paginationFor(filter.Page, filter.PageSize, total)

	if s.cache != nil {
		payload := cachedListing{Announcements: announcements, Pagination: pagination}
		if err := s.cache.Set(ctx, key, payload, announcementListingTTL); err != nil {
			s.logger.Warn("announcement cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return announcements, pagination, nil
}

// Highlights returns the homepage strip: superfeatured first, then regular.
func (s *AnnouncementService) Highlights(ctx context.Context) ([]models.Announcement, error) {
	const key = "public:announcements:highlights"
	if s.cache != nil {
		var cached []models.Announcement
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("announcement cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	announcements, err := s.repo.Highlights(ctx, highlightSuperLimit, highlightRegularLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load highlights")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, announcements, announcementListingTTL); err != nil {
			s.logger.Warn("announcement cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return announcements, nil
}

// Get returns one announcement.
func (s *AnnouncementService) Get(ctx context.Context, id int64) (*models.Announcement, error) {
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	return announcement, nil
}

// Create stores a new announcement.
func (s *AnnouncementService) Create(ctx context.Context, req AnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	announcement := &models.Announcement{
		Title:         req.Title,
		Description:   req.Description,
		Type:          models.AnnouncementType(req.Type),
		Category:      req.Category,
		Tag:           req.Tag,
		Superfeatured: req.Superfeatured,
		Active:        req.Active,
		FeaturedImage: req.FeaturedImage,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	s.invalidate(ctx)
	return announcement, nil
}

// Update modifies an existing announcement.
func (s *AnnouncementService) Update(ctx context.Context, id int64, req AnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	announcement, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	announcement.Title = req.Title
	announcement.Description = req.Description
	announcement.Type = models.AnnouncementType(req.Type)
	announcement.Category = req.Category
	announcement.Tag = req.Tag
	announcement.Superfeatured = req.Superfeatured
	announcement.Active = req.Active
	announcement.FeaturedImage = req.FeaturedImage
	if err := s.repo.Update(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	s.invalidate(ctx)
	return announcement, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	s.invalidate(ctx)
	return nil
}

// BulkSetActive activates or deactivates a set of announcements and returns
// the affected count.
func (s *AnnouncementService) BulkSetActive(ctx context.Context, req BulkIDsRequest, active bool) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	affected, err := s.repo.BulkSetActive(ctx, req.IDs, active)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcements")
	}
	s.invalidate(ctx)
	return affected, nil
}

// BulkSetSuperfeatured promotes or demotes a set of announcements.
func (s *AnnouncementService) BulkSetSuperfeatured(ctx context.Context, req BulkIDsRequest, superfeatured bool) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	affected, err := s.repo.BulkSetSuperfeatured(ctx, req.IDs, superfeatured)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcements")
	}
	s.invalidate(ctx)
	return affected, nil
}

// BulkDelete removes a set of announcements.
func (s *AnnouncementService) BulkDelete(ctx context.Context, req BulkIDsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	affected, err := s.repo.BulkDelete(ctx, req.IDs)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcements")
	}
	s.invalidate(ctx)
	return affected, nil
}

// listingCacheKey folds every filter criterion into the cache key so distinct
// pages never collide.
func listingCacheKey(filter models.AnnouncementFilter) string {
	active, superfeatured := "any", "any"
	if filter.Active != nil {
		active = fmt.Sprintf("%t", *filter.Active)
	}
	if filter.Superfeatured != nil {
		superfeatured = fmt.Sprintf("%t", *filter.Superfeatured)
	}
	return fmt.Sprintf("public:announcements:list:%s:%s:%s:%s:%s:%d:%d",
		filter.Type, filter.Category, active, superfeatured, filter.Search, filter.Page, filter.PageSize)
}

func (s *AnnouncementService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "public:announcements:*"); err != nil {
		s.logger.Warn("failed to invalidate announcement cache", zap.Error(err))
	}
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
