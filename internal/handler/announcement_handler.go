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

// AnnouncementHandler exposes announcement endpoints.
type AnnouncementHandler struct {
	announcements *service.AnnouncementService
}

// NewAnnouncementHandler constructs AnnouncementHandler.
func NewAnnouncementHandler(announcements *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// List godoc
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Param type query string false "Filter by type"
// @Param category query string false "Filter by category"
// @Param active query bool false "Filter by active state"
// @Param superfeatured query bool false "Filter by superfeatured flag"
// @Param search query string false "Substring search over title and description"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	var filter models.AnnouncementFilter
	filter.Type = c.Query("type")
	filter.Category = c.Query("category")
	filter.Active = boolQuery(c, "active")
	filter.Superfeatured = boolQuery(c, "superfeatured")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageQuery(c)

	announcements, pagination, err := h.announcements.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcements, pagination)
}

// Highlights godoc
// @Summary Homepage highlights
// @Description Superfeatured announcements first, then the newest regular ones
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /announcements/highlights [get]
func (h *AnnouncementHandler) Highlights(c *gin.Context) {
	highlights, err := h.announcements.Highlights(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, highlights, nil)
}

// Get godoc
// @Summary Get one announcement
// @Tags Announcements
// @Produce json
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [get]
func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	announcement, err := h.announcements.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcement, nil)
}

// Create godoc
// @Summary Create announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body service.AnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req service.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	announcement, err := h.announcements.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

// Update godoc
// @Summary Update announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param id path int true "Announcement ID"
// @Param payload body service.AnnouncementRequest true "Announcement payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	announcement, err := h.announcements.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcement, nil)
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Produce json
// @Param id path int true "Announcement ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkActivate godoc
// @Summary Activate or deactivate announcements in bulk
// @Tags Announcements
// @Accept json
// @Produce json
// @Param active query bool true "Target active state"
// @Param payload body service.BulkIDsRequest true "Announcement IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/announcements/bulk/active [post]
func (h *AnnouncementHandler) BulkActivate(c *gin.Context) {
	var req service.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	active := c.DefaultQuery("active", "true") == "true"
	affected, err := h.announcements.BulkSetActive(c.Request.Context(), req, active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"affected": affected}, nil)
}

// BulkSuperfeature godoc
// @Summary Promote or demote announcements in bulk
// @Tags Announcements
// @Accept json
// @Produce json
// @Param superfeatured query bool true "Target superfeatured state"
// @Param payload body service.BulkIDsRequest true "Announcement IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/announcements/bulk/superfeatured [post]
func (h *AnnouncementHandler) BulkSuperfeature(c *gin.Context) {
	var req service.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	superfeatured := c.DefaultQuery("superfeatured", "true") == "true"
	affected, err := h.announcements.BulkSetSuperfeatured(c.Request.Context(), req, superfeatured)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"affected": affected}, nil)
}

// BulkDelete godoc
// @Summary Delete announcements in bulk
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body service.BulkIDsRequest true "Announcement IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/announcements/bulk/delete [post]
func (h *AnnouncementHandler) BulkDelete(c *gin.Context) {
	var req service.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	affected, err := h.announcements.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"affected": affected}, nil)
}
