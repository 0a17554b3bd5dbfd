package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cpcnewhaven/cpc-web-app/internal/service"
	"github.com/cpcnewhaven/cpc-web-app/pkg/response"
)

// IngestHandler exposes cached external feed snapshots.
type IngestHandler struct {
	ingest *service.IngestService
}

// NewIngestHandler constructs IngestHandler.
func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

// Sources godoc
// @Summary Registered feed sources
// @Tags Feeds
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /feeds [get]
func (h *IngestHandler) Sources(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.ingest.Sources(), nil)
}

// Snapshot godoc
// @Summary Cached snapshot of one feed
// @Description Serves the cached copy, fetching upstream on a miss; a stale copy is served when upstream is down
// @Tags Feeds
// @Produce json
// @Param source path string true "Source name"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /feeds/{source} [get]
func (h *IngestHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.ingest.Snapshot(c.Request.Context(), c.Param("source"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Refresh godoc
// @Summary Force-refresh one feed
// @Tags Feeds
// @Produce json
// @Param source path string true "Source name"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/feeds/{source}/refresh [post]
func (h *IngestHandler) Refresh(c *gin.Context) {
	snapshot, err := h.ingest.Refresh(c.Request.Context(), c.Param("source"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// RefreshAll godoc
// @Summary Queue a background refresh of every feed
// @Tags Feeds
// @Produce json
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/feeds/refresh [post]
func (h *IngestHandler) RefreshAll(c *gin.Context) {
	h.ingest.EnqueueRefresh()
	response.Accepted(c, gin.H{"queued": h.ingest.Sources()})
}

// SyncSermons godoc
// @Summary Merge podcast episodes into the sermons table
// @Tags Feeds
// @Produce json
// @Param source path string true "Source name"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/feeds/{source}/sync-sermons [post]
func (h *IngestHandler) SyncSermons(c *gin.Context) {
	created, err := h.ingest.SyncSermons(c.Request.Context(), c.Param("source"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"created": created}, nil)
}
