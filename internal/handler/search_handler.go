package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cpcnewhaven/cpc-web-app/internal/service"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
	"github.com/cpcnewhaven/cpc-web-app/pkg/response"
)

// SearchHandler exposes advanced sermon search endpoints.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler constructs SearchHandler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search godoc
// @Summary Advanced sermon search
// @Description Combines keyword, scripture reference, speaker, series and date criteria
// @Tags Search
// @Accept json
// @Produce json
// @Param payload body service.SearchQuery true "Search criteria"
// @Success 200 {object} response.Envelope
// @Router /search/sermons [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var query service.SearchQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid search payload"))
		return
	}
	results, err := h.search.Search(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Quick godoc
// @Summary Quick keyword search
// @Tags Search
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} response.Envelope
// @Router /search/sermons [get]
func (h *SearchHandler) Quick(c *gin.Context) {
	results, err := h.search.Search(c.Request.Context(), service.SearchQuery{Query: c.Query("q")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Suggestions godoc
// @Summary Search completions
// @Tags Search
// @Produce json
// @Param q query string true "Partial term"
// @Success 200 {object} response.Envelope
// @Router /search/suggestions [get]
func (h *SearchHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.search.Suggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// Filters godoc
// @Summary Available search filters
// @Tags Search
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /search/filters [get]
func (h *SearchHandler) Filters(c *gin.Context) {
	filters, err := h.search.Filters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, filters, nil)
}
