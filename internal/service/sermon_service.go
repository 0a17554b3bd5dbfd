package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/archive"
	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
)

type sermonRepository interface {
	List(ctx context.Context, filter models.SermonFilter) ([]models.Sermon, int, error)
	ListArchived(ctx context.Context, cutoff time.Time, year int) ([]models.Sermon, error)
	GetByID(ctx context.Context, id int64) (*models.Sermon, error)
	Create(ctx context.Context, sermon *models.Sermon) error
	Update(ctx context.Context, sermon *models.Sermon) error
	Delete(ctx context.Context, id int64) error
	BulkSetArchived(ctx context.Context, ids []int64, archived bool) (int, error)
	BulkDelete(ctx context.Context, ids []int64) (int, error)
}

type archiveStore interface {
	ByYear(year string) ([]models.Sermon, error)
	YearCounts() (map[string]int, error)
	Years() ([]string, error)
	Metadata() (*archive.Metadata, error)
	LatestSeriesProgress(book string) (*archive.SeriesProgress, error)
}

// SermonRequest holds the payload for creating or updating a sermon.
type SermonRequest struct {
	Title           string    `json:"title" validate:"required"`
	Speaker         string    `json:"speaker" validate:"required"`
	Scripture       string    `json:"scripture"`
	Date            time.Time `json:"date" validate:"required"`
	Series          string    `json:"series"`
	EpisodeNumber   *int      `json:"episode_number"`
	SpotifyURL      *string   `json:"spotify_url"`
	YouTubeURL      *string   `json:"youtube_url"`
	ApplePodcastURL *string   `json:"apple_podcasts_url"`
	ThumbnailURL    *string   `json:"podcast_thumbnail_url"`
	Tags            []string  `json:"tags"`
	Active          bool      `json:"active"`
	Archived        bool      `json:"archived"`
}

// SermonService handles public and admin sermon use-cases. Listings come
// from the database; year views and metadata come from the archive file.
type SermonService struct {
	repo       sermonRepository
	store      archiveStore
	cutoffDays int
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSermonService constructs the sermon service.
func NewSermonService(repo sermonRepository, store archiveStore, cutoffDays int, validate *validator.Validate, logger *zap.Logger) *SermonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cutoffDays <= 0 {
		cutoffDays = 90
	}
	return &SermonService{repo: repo, store: store, cutoffDays: cutoffDays, validator: validate, logger: logger}
}

// List returns sermons and pagination metadata.
func (s *SermonService) List(ctx context.Context, filter models.SermonFilter) ([]models.Sermon, *models.Pagination, error) {
	sermons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sermons")
	}
	return sermons, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Archive returns sermons past the age cutoff, optionally narrowed to one
// year.
func (s *SermonService) Archive(ctx context.Context, year int) ([]models.Sermon, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cutoffDays)
	sermons, err := s.repo.ListArchived(ctx, cutoff, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archived sermons")
	}
	return sermons, nil
}

// Years returns the archive years with per-year sermon counts.
func (s *SermonService) Years(ctx context.Context) ([]string, map[string]int, error) {
	years, err := s.store.Years()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sermon archive")
	}
	counts, err := s.store.YearCounts()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sermon archive")
	}
	return years, counts, nil
}

// ByYear returns the archive sermons filed under one year.
func (s *SermonService) ByYear(ctx context.Context, year string) ([]models.Sermon, error) {
	sermons, err := s.store.ByYear(year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sermon archive")
	}
	return sermons, nil
}

// Metadata returns archive display metadata and totals.
func (s *SermonService) Metadata(ctx context.Context) (*archive.Metadata, error) {
	meta, err := s.store.Metadata()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sermon archive")
	}
	return meta, nil
}

// LatestSeriesProgress reports preaching progress through one book of
// scripture.
func (s *SermonService) LatestSeriesProgress(ctx context.Context, book string) (*archive.SeriesProgress, error) {
	if book == "" {
		book = "Luke"
	}
	progress, err := s.store.LatestSeriesProgress(book)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read sermon archive")
	}
	if progress == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no sermons reference that book")
	}
	return progress, nil
}

// Get returns one sermon.
func (s *SermonService) Get(ctx context.Context, id int64) (*models.Sermon, error) {
	sermon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sermon not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sermon")
	}
	return sermon, nil
}

// Create stores a new sermon.
func (s *SermonService) Create(ctx context.Context, req SermonRequest) (*models.Sermon, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sermon payload")
	}
	sermon := &models.Sermon{
		Title:           req.Title,
		Speaker:         req.Speaker,
		Scripture:       req.Scripture,
		Date:            req.Date,
		Series:          req.Series,
		EpisodeNumber:   req.EpisodeNumber,
		SpotifyURL:      req.SpotifyURL,
		YouTubeURL:      req.YouTubeURL,
		ApplePodcastURL: req.ApplePodcastURL,
		ThumbnailURL:    req.ThumbnailURL,
		Tags:            req.Tags,
		Active:          req.Active,
		Archived:        req.Archived,
	}
	if err := s.repo.Create(ctx, sermon); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sermon")
	}
	return sermon, nil
}

// Update modifies an existing sermon.
func (s *SermonService) Update(ctx context.Context, id int64, req SermonRequest) (*models.Sermon, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sermon payload")
	}
	sermon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sermon.Title = req.Title
	sermon.Speaker = req.Speaker
	sermon.Scripture = req.Scripture
	sermon.Date = req.Date
	sermon.Series = req.Series
	sermon.EpisodeNumber = req.EpisodeNumber
	sermon.SpotifyURL = req.SpotifyURL
	sermon.YouTubeURL = req.YouTubeURL
	sermon.ApplePodcastURL = req.ApplePodcastURL
	sermon.ThumbnailURL = req.ThumbnailURL
	sermon.Tags = req.Tags
	sermon.Active = req.Active
	sermon.Archived = req.Archived
	if err := s.repo.Update(ctx, sermon); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update sermon")
	}
	return sermon, nil
}

// Delete removes a sermon.
func (s *SermonService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sermon")
	}
	return nil
}

// BulkSetArchived archives or restores a set of sermons.
func (s *SermonService) BulkSetArchived(ctx context.Context, req BulkIDsRequest, archived bool) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	affected, err := s.repo.BulkSetArchived(ctx, req.IDs, archived)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update sermons")
	}
	return affected, nil
}

// BulkDelete removes a set of sermons.
func (s *SermonService) BulkDelete(ctx context.Context, req BulkIDsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	affected, err := s.repo.BulkDelete(ctx, req.IDs)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sermons")
	}
	return affected, nil
}
