package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
	"github.com/cpcnewhaven/cpc-web-app/pkg/export"
)

type statsRepository interface {
	ContentStats(ctx context.Context) (*models.ContentStats, error)
}

type auditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	RecentAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type exportSources interface {
	AllAnnouncements(ctx context.Context) ([]models.Announcement, error)
	AllSermons(ctx context.Context) ([]models.Sermon, error)
	AllEpisodes(ctx context.Context) ([]models.PodcastEpisode, error)
	AllGalleryImages(ctx context.Context) ([]models.GalleryImage, error)
	AllEvents(ctx context.Context) ([]models.OngoingEvent, error)
}

// ContentExportSources adapts the per-entity repositories to the export
// source interface.
type ContentExportSources struct {
	Announcements interface {
		All(ctx context.Context) ([]models.Announcement, error)
	}
	Sermons interface {
		All(ctx context.Context) ([]models.Sermon, error)
	}
	Podcasts interface {
		AllEpisodes(ctx context.Context) ([]models.PodcastEpisode, error)
	}
	Gallery interface {
		All(ctx context.Context) ([]models.GalleryImage, error)
	}
	Events interface {
		All(ctx context.Context) ([]models.OngoingEvent, error)
	}
}

func (s ContentExportSources) AllAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	return s.Announcements.All(ctx)
}

func (s ContentExportSources) AllSermons(ctx context.Context) ([]models.Sermon, error) {
	return s.Sermons.All(ctx)
}

func (s ContentExportSources) AllEpisodes(ctx context.Context) ([]models.PodcastEpisode, error) {
	return s.Podcasts.AllEpisodes(ctx)
}

func (s ContentExportSources) AllGalleryImages(ctx context.Context) ([]models.GalleryImage, error) {
	return s.Gallery.All(ctx)
}

func (s ContentExportSources) AllEvents(ctx context.Context) ([]models.OngoingEvent, error) {
	return s.Events.All(ctx)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
}

type urlSigner interface {
	Generate(exportID, relPath string) (string, time.Time, error)
}

// ExportResult describes a generated export file and its signed download
// token.
type ExportResult struct {
	ExportID  string    `json:"export_id"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	Rows      int       `json:"rows"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Dashboard stat counts go stale on any content mutation, so the cache TTL
// stays short instead of wiring invalidation through every service.
const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = time.Minute
)

// AdminService provides the dashboard: content statistics, CSV and PDF
// exports, and the recent audit trail.
type AdminService struct {
	stats   statsRepository
	audit   auditRepository
	sources exportSources
	cache   listingCache
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	storage exportStorage
	signer  urlSigner
	logger  *zap.Logger
}

// NewAdminService constructs the admin service.
func NewAdminService(stats statsRepository, audit auditRepository, sources exportSources, cache listingCache, storage exportStorage, signer urlSigner, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		stats:   stats,
		audit:   audit,
		sources: sources,
		cache:   cache,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		storage: storage,
		signer:  signer,
		logger:  logger,
	}
}

// ContentStats returns counts across every content table, cached briefly to
// keep dashboard refreshes off the database.
func (s *AdminService) ContentStats(ctx context.Context) (*models.ContentStats, error) {
	if s.cache != nil {
		var cached models.ContentStats
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	stats, err := s.stats.ContentStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to gather content stats")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// RecentAuditLogs returns the newest audit entries.
func (s *AdminService) RecentAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	logs, err := s.audit.RecentAuditLogs(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	return logs, nil
}

// Export renders one content table to csv or pdf, stores the file and
// returns a signed download token.
func (s *AdminService) Export(ctx context.Context, entity, format, userID string) (*ExportResult, error) {
	if s.storage == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	dataset, title, err := s.dataset(ctx, entity)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if format == "csv" {
		payload, err = s.csv.Render(*dataset)
	} else {
		payload, err = s.pdf.Render(*dataset, title)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("%s-%s.%s", entity, time.Now().UTC().Format("20060102-150405"), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export url")
	}

	detail, _ := json.Marshal(map[string]string{"entity": entity, "format": format, "file": filename})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionExport,
		Resource:   entity,
		ResourceID: &exportID,
		NewValues:  detail,
	}); err != nil {
		s.logger.Warn("failed to record export audit log", zap.Error(err))
	}

	return &ExportResult{
		ExportID:  exportID,
		Filename:  filename,
		Format:    format,
		Rows:      len(dataset.Rows),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AdminService) dataset(ctx context.Context, entity string) (*export.Dataset, string, error) {
	switch entity {
	case "announcements":
		announcements, err := s.sources.AllAnnouncements(ctx)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
		}
		return announcementDataset(announcements), "Announcements", nil
	case "sermons":
		sermons, err := s.sources.AllSermons(ctx)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sermons")
		}
		return sermonDataset(sermons), "Sermons", nil
	case "podcasts":
		episodes, err := s.sources.AllEpisodes(ctx)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load podcast episodes")
		}
		return episodeDataset(episodes), "Podcast Episodes", nil
	case "gallery":
		images, err := s.sources.AllGalleryImages(ctx)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gallery images")
		}
		return galleryDataset(images), "Gallery", nil
	case "events":
		events, err := s.sources.AllEvents(ctx)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events")
		}
		return eventDataset(events), "Ongoing Events", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unknown export entity")
	}
}

func announcementDataset(announcements []models.Announcement) *export.Dataset {
	dataset := &export.Dataset{Headers: []string{"id", "title", "type", "category", "tag", "superfeatured", "active", "date_entered"}}
	for _, a := range announcements {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":            strconv.FormatInt(a.ID, 10),
			"title":         a.Title,
			"type":          string(a.Type),
			"category":      a.Category,
			"tag":           a.Tag,
			"superfeatured": strconv.FormatBool(a.Superfeatured),
			"active":        strconv.FormatBool(a.Active),
			"date_entered":  a.DateEntered.Format("2006-01-02"),
		})
	}
	return dataset
}

func sermonDataset(sermons []models.Sermon) *export.Dataset {
	dataset := &export.Dataset{Headers: []string{"id", "title", "speaker", "scripture", "date", "series", "tags", "active", "archived"}}
	for _, sermon := range sermons {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":        strconv.FormatInt(sermon.ID, 10),
			"title":     sermon.Title,
			"speaker":   sermon.Speaker,
			"scripture": sermon.Scripture,
			"date":      sermon.Date.Format("2006-01-02"),
			"series":    sermon.Series,
			"tags":      strings.Join(sermon.Tags, ", "),
			"active":    strconv.FormatBool(sermon.Active),
			"archived":  strconv.FormatBool(sermon.Archived),
		})
	}
	return dataset
}

func episodeDataset(episodes []models.PodcastEpisode) *export.Dataset {
	dataset := &export.Dataset{Headers: []string{"id", "series_id", "number", "title", "season", "scripture", "date_added"}}
	for _, episode := range episodes {
		dateAdded := ""
		if episode.DateAdded != nil {
			dateAdded = episode.DateAdded.Format("2006-01-02")
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":         strconv.FormatInt(episode.ID, 10),
			"series_id":  strconv.FormatInt(episode.SeriesID, 10),
			"number":     strconv.Itoa(episode.Number),
			"title":      episode.Title,
			"season":     strconv.Itoa(episode.Season),
			"scripture":  episode.Scripture,
			"date_added": dateAdded,
		})
	}
	return dataset
}

func galleryDataset(images []models.GalleryImage) *export.Dataset {
	dataset := &export.Dataset{Headers: []string{"id", "name", "url", "tags", "event", "created"}}
	for _, image := range images {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":      strconv.FormatInt(image.ID, 10),
			"name":    image.Name,
			"url":     image.URL,
			"tags":    strings.Join(image.Tags, ","),
			"event":   strconv.FormatBool(image.Event),
			"created": image.Created.Format("2006-01-02"),
		})
	}
	return dataset
}

func eventDataset(events []models.OngoingEvent) *export.Dataset {
	dataset := &export.Dataset{Headers: []string{"id", "title", "category", "active", "sort_order", "date_entered"}}
	for _, event := range events {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"id":           strconv.FormatInt(event.ID, 10),
			"title":        event.Title,
			"category":     event.Category,
			"active":       strconv.FormatBool(event.Active),
			"sort_order":   strconv.Itoa(event.SortOrder),
			"date_entered": event.DateEntered.Format("2006-01-02"),
		})
	}
	return dataset
}
