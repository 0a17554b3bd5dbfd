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

// PodcastHandler exposes podcast series and episode endpoints.
type PodcastHandler struct {
	podcasts *service.PodcastService
}

// NewPodcastHandler constructs PodcastHandler.
func NewPodcastHandler(podcasts *service.PodcastService) *PodcastHandler {
	return &PodcastHandler{podcasts: podcasts}
}

// ListSeries godoc
// @Summary List podcast series
// @Tags Podcasts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /podcasts [get]
func (h *PodcastHandler) ListSeries(c *gin.Context) {
	series, err := h.podcasts.ListSeries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, series, nil)
}

// GetSeries godoc
// @Summary Get a podcast series with its episodes
// @Tags Podcasts
// @Produce json
// @Param slug path string true "Series slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /podcasts/{slug} [get]
func (h *PodcastHandler) GetSeries(c *gin.Context) {
	series, err := h.podcasts.GetSeries(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, series, nil)
}

// ListEpisodes godoc
// @Summary List podcast episodes
// @Tags Podcasts
// @Produce json
// @Param series query int false "Filter by series ID"
// @Param season query int false "Filter by season"
// @Param search query string false "Substring search over title, scripture and guest"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /podcasts/episodes [get]
func (h *PodcastHandler) ListEpisodes(c *gin.Context) {
	var filter models.PodcastEpisodeFilter
	if seriesID, err := strconv.ParseInt(c.Query("series"), 10, 64); err == nil {
		filter.SeriesID = seriesID
	}
	if season, err := strconv.Atoi(c.Query("season")); err == nil {
		filter.Season = season
	}
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page, filter.PageSize = pageQuery(c)

	episodes, pagination, err := h.podcasts.ListEpisodes(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, episodes, pagination)
}

// GetEpisode godoc
// @Summary Get one podcast episode
// @Tags Podcasts
// @Produce json
// @Param id path int true "Episode ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /podcasts/episodes/{id} [get]
func (h *PodcastHandler) GetEpisode(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	episode, err := h.podcasts.GetEpisode(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, episode, nil)
}

// CreateEpisode godoc
// @Summary Create podcast episode
// @Description Episode numbers are assigned automatically when omitted
// @Tags Podcasts
// @Accept json
// @Produce json
// @Param payload body service.EpisodeRequest true "Episode payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/podcasts/episodes [post]
func (h *PodcastHandler) CreateEpisode(c *gin.Context) {
	var req service.EpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	episode, err := h.podcasts.CreateEpisode(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, episode)
}

// UpdateEpisode godoc
// @Summary Update podcast episode
// @Tags Podcasts
// @Accept json
// @Produce json
// @Param id path int true "Episode ID"
// @Param payload body service.EpisodeRequest true "Episode payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/podcasts/episodes/{id} [put]
func (h *PodcastHandler) UpdateEpisode(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.EpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	episode, err := h.podcasts.UpdateEpisode(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, episode, nil)
}

// DeleteEpisode godoc
// @Summary Delete podcast episode
// @Tags Podcasts
// @Produce json
// @Param id path int true "Episode ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/podcasts/episodes/{id} [delete]
func (h *PodcastHandler) DeleteEpisode(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.podcasts.DeleteEpisode(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BulkDeleteEpisodes godoc
// @Summary Delete podcast episodes in bulk
// @Tags Podcasts
// @Accept json
// @Produce json
// @Param payload body service.BulkIDsRequest true "Episode IDs"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/podcasts/episodes/bulk/delete [post]
func (h *PodcastHandler) BulkDeleteEpisodes(c *gin.Context) {
	var req service.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	affected, err := h.podcasts.BulkDeleteEpisodes(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"affected": affected}, nil)
}
