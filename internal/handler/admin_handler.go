package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cpcnewhaven/cpc-web-app/internal/service"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
	"github.com/cpcnewhaven/cpc-web-app/pkg/response"
	"github.com/cpcnewhaven/cpc-web-app/pkg/storage"
)

// AdminHandler exposes the dashboard: stats, exports and the audit trail.
type AdminHandler struct {
	admin   *service.AdminService
	metrics *service.MetricsService
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *service.AdminService, metrics *service.MetricsService, store *storage.LocalStorage, signer *storage.SignedURLSigner) *AdminHandler {
	return &AdminHandler{admin: admin, metrics: metrics, storage: store, signer: signer}
}

// Stats godoc
// @Summary Content statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.ContentStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// SystemMetrics godoc
// @Summary Runtime metrics snapshot
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/metrics [get]
func (h *AdminHandler) SystemMetrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// AuditLogs godoc
// @Summary Recent audit log entries
// @Tags Admin
// @Produce json
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/audit-logs [get]
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.admin.RecentAuditLogs(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Export godoc
// @Summary Export a content table
// @Description Renders csv or pdf and returns a signed download token
// @Tags Admin
// @Produce json
// @Param entity path string true "Entity (announcements, sermons, podcasts, gallery, events)"
// @Param format query string true "Format (csv, pdf)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/export/{entity} [post]
func (h *AdminHandler) Export(c *gin.Context) {
	result, err := h.admin.Export(c.Request.Context(), c.Param("entity"), c.DefaultQuery("format", "csv"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a generated export
// @Tags Admin
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /admin/export/download [get]
func (h *AdminHandler) Download(c *gin.Context) {
	if h.signer == nil || h.storage == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	_, relPath, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token"))
		return
	}

	file, err := h.storage.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close()

	filename := filepath.Base(relPath)
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
