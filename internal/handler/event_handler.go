package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	"github.com/cpcnewhaven/cpc-web-app/internal/service"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
	"github.com/cpcnewhaven/cpc-web-app/pkg/response"
)

// EventHandler exposes ongoing event endpoints.
type EventHandler struct {
	events *service.EventService
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// List godoc
// @Summary List ongoing events
// @Tags Events
// @Produce json
// @Param category query string false "Filter by category"
// @Param active query bool false "Filter by active state"
// @Param search query string false "Substring search over titles"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	var filter models.OngoingEventFilter
	filter.Category = c.Query("category")
	filter.Active = boolQuery(c, "active")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageQuery(c)

	events, pagination, err := h.events.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Get one ongoing event
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.events.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create ongoing event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.OngoingEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req service.OngoingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.events.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update ongoing event
// @Tags Events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param payload body service.OngoingEventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.OngoingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	event, err := h.events.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete ongoing event
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.events.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkActivate godoc
// @Summary Activate or deactivate events in bulk
// @Tags Events
// @Accept json
// @Produce json
// @Param active query bool true "Target active state"
// @Param payload body service.BulkIDsRequest true "Event IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/bulk/active [post]
func (h *EventHandler) BulkActivate(c *gin.Context) {
	var req service.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	active := c.DefaultQuery("active", "true") == "true"
	affected, err := h.events.BulkSetActive(c.Request.Context(), req, active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"affected": affected}, nil)
}

// BulkDelete godoc
// @Summary Delete events in bulk
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.BulkIDsRequest true "Event IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/events/bulk/delete [post]
func (h *EventHandler) BulkDelete(c *gin.Context) {
	var req service.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	affected, err := h.events.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"affected": affected}, nil)
}
