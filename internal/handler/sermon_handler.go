package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	"github.com/cpcnewhaven/cpc-web-app/internal/service"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
	"github.com/cpcnewhaven/cpc-web-app/pkg/response"
)

// SermonHandler exposes sermon endpoints.
type SermonHandler struct {
	sermons *service.SermonService
}

// NewSermonHandler constructs SermonHandler.
func NewSermonHandler(sermons *service.SermonService) *SermonHandler {
	return &SermonHandler{sermons: sermons}
}

// List godoc
// @Summary List sermons
// @Tags Sermons
// @Produce json
// @Param search query string false "Substring search over title, scripture and speaker"
// @Param year query int false "Filter by year"
// @Param speaker query string false "Filter by speaker"
// @Param series query string false "Filter by series"
// @Param archived query bool false "Include archived sermons"
// @Param sort query string false "Sort field (date, title, speaker)"
// @Param order query string false "Sort order (asc, desc)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sermons [get]
func (h *SermonHandler) List(c *gin.Context) {
	var filter models.SermonFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	filter.Speaker = c.Query("speaker")
	filter.Series = c.Query("series")
	filter.IncludeArchived = c.Query("archived") == "true"
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	filter.Page, filter.PageSize = pageQuery(c)

	sermons, pagination, err := h.sermons.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sermons, pagination)
}

// Archive godoc
// @Summary Archived sermons
// @Description Sermons flagged archived or older than the archive cutoff
// @Tags Sermons
// @Produce json
// @Param year query int false "Narrow to one year"
// @Success 200 {object} response.Envelope
// @Router /sermons/archive [get]
func (h *SermonHandler) Archive(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	sermons, err := h.sermons.Archive(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sermons, nil)
}

// Years godoc
// @Summary Archive years with counts
// @Tags Sermons
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sermons/years [get]
func (h *SermonHandler) Years(c *gin.Context) {
	years, counts, err := h.sermons.Years(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"years": years, "counts": counts}, nil)
}

// ByYear godoc
// @Summary Archive sermons for one year
// @Tags Sermons
// @Produce json
// @Param year path string true "Year"
// @Success 200 {object} response.Envelope
// @Router /sermons/year/{year} [get]
func (h *SermonHandler) ByYear(c *gin.Context) {
	sermons, err := h.sermons.ByYear(c.Request.Context(), c.Param("year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sermons, nil)
}

// Metadata godoc
// @Summary Sermon archive metadata
// @Tags Sermons
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sermons/metadata [get]
func (h *SermonHandler) Metadata(c *gin.Context) {
	meta, err := h.sermons.Metadata(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meta, nil)
}

// LatestSeriesProgress godoc
// @Summary Preaching progress through a book of scripture
// @Tags Sermons
// @Produce json
// @Param book query string false "Book name (defaults to Luke)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sermons/latest-series [get]
func (h *SermonHandler) LatestSeriesProgress(c *gin.Context) {
	progress, err := h.sermons.LatestSeriesProgress(c.Request.Context(), c.Query("book"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// Get godoc
// @Summary Get one sermon
// @Tags Sermons
// @Produce json
// @Param id path int true "Sermon ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sermons/{id} [get]
func (h *SermonHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sermon, err := h.sermons.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sermon, nil)
}

// Create godoc
// @Summary Create sermon
// @Tags Sermons
// @Accept json
// @Produce json
// @Param payload body service.SermonRequest true "Sermon payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sermons [post]
func (h *SermonHandler) Create(c *gin.Context) {
	var req service.SermonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sermon, err := h.sermons.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sermon)
}

// Update godoc
// @Summary Update sermon
// @Tags Sermons
// @Accept json
// @Produce json
// @Param id path int true "Sermon ID"
// @Param payload body service.SermonRequest true "Sermon payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sermons/{id} [put]
func (h *SermonHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SermonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sermon, err := h.sermons.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sermon, nil)
}

// Delete godoc
// @Summary Delete sermon
// @Tags Sermons
// @Produce json
// @Param id path int true "Sermon ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/sermons/{id} [delete]
func (h *SermonHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.sermons.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkArchive godoc
// @Summary Archive or restore sermons in bulk
// @Tags Sermons
// @Accept json
// @Produce json
// @Param archived query bool true "Target archived state"
// @Param payload body service.BulkIDsRequest true "Sermon IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sermons/bulk/archive [post]
func (h *SermonHandler) BulkArchive(c *gin.Context) {
	var req service.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	archived := c.DefaultQuery("archived", "true") == "true"
	affected, err := h.sermons.BulkSetArchived(c.Request.Context(), req, archived)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"affected": affected}, nil)
}

// BulkDelete godoc
// @Summary Delete sermons in bulk
// @Tags Sermons
// @Accept json
// @Produce json
// @Param payload body service.BulkIDsRequest true "Sermon IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/sermons/bulk/delete [post]
func (h *SermonHandler) BulkDelete(c *gin.Context) {
	var req service.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	affected, err := h.sermons.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"affected": affected}, nil)
}
