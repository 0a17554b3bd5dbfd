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

type eventRepository interface {
	List(ctx context.Context, filter models.OngoingEventFilter) ([]models.OngoingEvent, int, error)
	GetByID(ctx context.Context, id int64) (*models.OngoingEvent, error)
	Create(ctx context.Context, event *models.OngoingEvent) error
	Update(ctx context.Context, event *models.OngoingEvent) error
	Delete(ctx context.Context, id int64) error
	BulkSetActive(ctx context.Context, ids []int64, active bool) (int, error)
	BulkDelete(ctx context.Context, ids []int64) (int, error)
}

// OngoingEventRequest holds the payload for creating or updating an event.
type OngoingEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Active      bool   `json:"active"`
	SortOrder   int    `json:"sort_order"`
}

// EventService handles ongoing event use-cases.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs the event service.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, validator: validate, logger: logger}
}

// List returns ongoing events and pagination metadata.
func (s *EventService) List(ctx context.Context, filter models.OngoingEventFilter) ([]models.OngoingEvent, *models.Pagination, error) {
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ongoing events")
	}
	return events, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id int64) (*models.OngoingEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// Create stores a new event.
func (s *EventService) Create(ctx context.Context, req OngoingEventRequest) (*models.OngoingEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	event := &models.OngoingEvent{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		Active:      req.Active,
		SortOrder:   req.SortOrder,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return event, nil
}

// Update modifies an existing event.
func (s *EventService) Update(ctx context.Context, id int64, req OngoingEventRequest) (*models.OngoingEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Title = req.Title
	event.Description = req.Description
	event.Type = req.Type
	event.Category = req.Category
	event.Active = req.Active
	event.SortOrder = req.SortOrder
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}

// BulkSetActive activates or deactivates a set of events.
func (s *EventService) BulkSetActive(ctx context.Context, req BulkIDsRequest, active bool) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	affected, err := s.repo.BulkSetActive(ctx, req.IDs, active)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update events")
	}
	return affected, nil
}

// BulkDelete removes a set of events.
func (s *EventService) BulkDelete(ctx context.Context, req BulkIDsRequest) (int, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	affected, err := s.repo.BulkDelete(ctx, req.IDs)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete events")
	}
	return affected, nil
}
