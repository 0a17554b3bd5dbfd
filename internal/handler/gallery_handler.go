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

// GalleryHandler exposes gallery endpoints.
type GalleryHandler struct {
	gallery *service.GalleryService
}

// NewGalleryHandler constructs GalleryHandler.
func NewGalleryHandler(gallery *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// List godoc
// @Summary List gallery images
// @Tags Gallery
// @Produce json
// @Param event query bool false "Only event photos"
// @Param tag query string false "Filter by tag"
// @Param search query string false "Substring search over image names"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /gallery [get]
func (h *GalleryHandler) List(c *gin.Context) {
	var filter models.GalleryFilter
	filter.EventOnly = c.Query("event") == "true"
	filter.Tag = c.Query("tag")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageQuery(c)

	images, pagination, err := h.gallery.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, images, pagination)
}

// Tags godoc
// @Summary Distinct gallery tags
// @Tags Gallery
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /gallery/tags [get]
func (h *GalleryHandler) Tags(c *gin.Context) {
	tags, err := h.gallery.Tags(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tags, nil)
}

// Get godoc
// @Summary Get one gallery image
// @Tags Gallery
// @Produce json
// @Param id path int true "Image ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /gallery/{id} [get]
func (h *GalleryHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	image, err := h.gallery.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, image, nil)
}

// Create godoc
// @Summary Create gallery image
// @Tags Gallery
// @Accept json
// @Produce json
// @Param payload body service.GalleryImageRequest true "Image payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/gallery [post]
func (h *GalleryHandler) Create(c *gin.Context) {
	var req service.GalleryImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	image, err := h.gallery.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, image)
}

// Update godoc
// @Summary Update gallery image
// @Tags Gallery
// @Accept json
// @Produce json
// @Param id path int true "Image ID"
// @Param payload body service.GalleryImageRequest true "Image payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/gallery/{id} [put]
func (h *GalleryHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.GalleryImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	image, err := h.gallery.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, image, nil)
}

// Delete godoc
// @Summary Delete gallery image
// @Tags Gallery
// @Produce json
// @Param id path int true "Image ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/gallery/{id} [delete]
func (h *GalleryHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.gallery.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkDelete godoc
// @Summary Delete gallery images in bulk
// @Tags Gallery
// @Accept json
// @Produce json
// @Param payload body service.BulkIDsRequest true "Image IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/gallery/bulk/delete [post]
func (h *GalleryHandler) BulkDelete(c *gin.Context) {
	var req service.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	affected, err := h.gallery.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"affected": affected}, nil)
}
