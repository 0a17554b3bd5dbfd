package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
)

type podcastRepository interface {
	ListSeries(ctx context.Context) ([]models.PodcastSeries, error)
	GetSeriesBySlug(ctx context.Context, slug string) (*models.PodcastSeries, error)
	ListEpisodes(ctx context.Context, filter models.PodcastEpisodeFilter) ([]models.PodcastEpisode, int, error)
	GetEpisodeByID(ctx context.Context, id int64) (*models.PodcastEpisode, error)
	CreateEpisode(ctx context.Context, episode *models.PodcastEpisode) error
	UpdateEpisode(ctx context.Context, episode *models.PodcastEpisode) error
	DeleteEpisode(ctx context.Context, id int64) error
	BulkDeleteEpisodes(ctx context.Context, ids []int64) (int, error)
	MaxEpisodeNumber(ctx context.Context, seriesID int64) (int, error)
}

// EpisodeRequest holds the payload for creating or updating an episode.
type EpisodeRequest struct {
	SeriesID     int64      `json:"series_id" validate:"required,gt=0"`
	Number       int        `json:"number"`
	Title        string     `json:"title" validate:"required"`
	Link         *string    `json:"link"`
	ListenURL    *string    `json:"listen_url"`
	HandoutURL   *string    `json:"handout_url"`
	Guest        *string    `json:"guest"`
	DateAdded    *time.Time `json:"date_added"`
	Season       int        `json:"season"`
	Scripture    string     `json:"scripture"`
	ThumbnailURL *string    `json:"podcast_thumbnail_url"`
}

// PodcastService handles podcast series and episode use-cases.
type PodcastService struct {
	repo      podcastRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPodcastService constructs the podcast service.
func NewPodcastService(repo podcastRepository, validate *validator.Validate, logger *zap.Logger) *PodcastService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PodcastService{repo: repo, validator: validate, logger: logger}
}

// ListSeries returns every active series, episodes not included.
func (s *PodcastService) ListSeries(ctx context.Context) ([]models.PodcastSeries, error) {
	series, err := s.repo.ListSeries(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list podcast series")
	}
	return series, nil
}

// GetSeries returns one series with its episodes.
func (s *PodcastService) GetSeries(ctx context.Context, slug string) (*models.PodcastSeries, error) {
	series, err := s.repo.GetSeriesBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "podcast series not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load podcast series")
	}
	return series, nil
}

// ListEpisodes returns episodes and pagination metadata.
func (s *PodcastService) ListEpisodes(ctx context.Context, filter models.PodcastEpisodeFilter) ([]models.PodcastEpisode, *models.Pagination, error) {
	episodes, total, err := s.repo.ListEpisodes(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list podcast episodes")
	}
	return episodes, paginationFor(filter.Page, filter.PageSize, total), nil
}

// GetEpisode returns one episode.
func (s *PodcastService) GetEpisode(ctx context.Context, id int64) (*models.PodcastEpisode, error) {
	episode, err := s.repo.GetEpisodeByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "podcast episode not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load podcast episode")
	}
	return episode, nil
}

// CreateEpisode stores a new episode. A zero episode number continues from
// the highest number in the series.
func (s *PodcastService) CreateEpisode(ctx context.Context, req EpisodeRequest) (*models.PodcastEpisode, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid episode payload")
	}

	number := req.Number
	if number <= 0 {
		max, err := s.repo.MaxEpisodeNumber(ctx, req.SeriesID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to number episode")
		}
		number = max + 1
	}

	episode := &models.PodcastEpisode{
		SeriesID:     req.SeriesID,
		Number:       number,
		Title:        req.Title,
		Link:         req.Link,
		ListenURL:    req.ListenURL,
		HandoutURL:   req.HandoutURL,
		Guest:        req.Guest,
		DateAdded:    req.DateAdded,
		Season:       req.Season,
		Scripture:    req.Scripture,
		ThumbnailURL: req.ThumbnailURL,
	}
	if episode.DateAdded == nil {
		now := time.Now().UTC()
		episode.DateAdded = &now
	}
	if err := s.repo.CreateEpisode(ctx, episode); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create podcast episode")
	}
	return episode, nil
}

// UpdateEpisode modifies an existing episode.
func (s *PodcastService) UpdateEpisode(ctx context.Context, id int64, req EpisodeRequest) (*models.PodcastEpisode, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid episode payload")
	}
	episode, err := s.GetEpisode(ctx, id)
	if err != nil {
		return nil, err
	}
	episode.SeriesID = req.SeriesID
	if req.Number > 0 {
		episode.Number = req.Number
	}
	episode.Title = req.Title
	episode.Link = req.Link
	episode.ListenURL = req.ListenURL
	episode.HandoutURL = req.HandoutURL
	episode.Guest = req.Guest
	if req.DateAdded != nil {
		episode.DateAdded = req.DateAdded
	}
	episode.Season = req.Season
	episode.Scripture = req.Scripture
	episode.ThumbnailURL = req.ThumbnailURL
	if err := s.repo.UpdateEpisode(ctx, episode); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update podcast episode")
	}
	return episode, nil
}

// DeleteEpisode removes an episode.
func (s *PodcastService) DeleteEpisode(ctx context.Context, id int64) error {
	if _, err := s.GetEpisode(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEpisode(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete podcast episode")
	}
	return nil
}

// BulkDeleteEpisodes removes a set of episodes.
func (s *PodcastService) BulkDeleteEpisodes(ctx context.Context, req BulkIDsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	affected, err := s.repo.BulkDeleteEpisodes(ctx, req.IDs)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete podcast episodes")
	}
	return affected, nil
}
