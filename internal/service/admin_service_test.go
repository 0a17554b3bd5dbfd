package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
)

type mockStatsRepo struct {
	stats models.ContentStats
	calls int
}

func (m *mockStatsRepo) ContentStats(ctx context.Context) (*models.ContentStats, error) {
	m.calls++
	return &m.stats, nil
}

type mockAuditRepo struct {
	logs []models.AuditLog
}

func (m *mockAuditRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditRepo) RecentAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	return m.logs, nil
}

type mockExportSources struct {
	announcements []models.Announcement
	sermons       []models.Sermon
}

func (m *mockExportSources) AllAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	return m.announcements, nil
}

func (m *mockExportSources) AllSermons(ctx context.Context) ([]models.Sermon, error) {
	return m.sermons, nil
}

func (m *mockExportSources) AllEpisodes(ctx context.Context) ([]models.PodcastEpisode, error) {
	return nil, nil
}

func (m *mockExportSources) AllGalleryImages(ctx context.Context) ([]models.GalleryImage, error) {
	return nil, nil
}

func (m *mockExportSources) AllEvents(ctx context.Context) ([]models.OngoingEvent, error) {
	return nil, nil
}

type mockExportStorage struct {
	saved map[string][]byte
}

func (m *mockExportStorage) Save(filename string, data []byte) (string, error) {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[filename] = data
	return "exports/" + filename, nil
}

type mockSigner struct{}

func (m *mockSigner) Generate(exportID, relPath string) (string, time.Time, error) {
	return "signed-" + exportID, time.Now().UTC().Add(time.Hour), nil
}

func newAdminService(audit *mockAuditRepo, sources *mockExportSources, storage *mockExportStorage) *AdminService {
	return NewAdminService(&mockStatsRepo{}, audit, sources, nil, storage, &mockSigner{}, zap.NewNop())
}

func TestAdminServiceContentStatsCached(t *testing.T) {
	stats := &mockStatsRepo{stats: models.ContentStats{
		Announcements: models.AnnouncementStats{Total: 12},
		Sermons:       models.SermonStats{Total: 340},
	}}
	svc := NewAdminService(stats, &mockAuditRepo{}, &mockExportSources{}, newMockListingCache(), nil, nil, zap.NewNop())

	first, err := svc.ContentStats(context.Background())
	require.NoError(t, err)
	second, err := svc.ContentStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.calls)
	assert.Equal(t, first.Sermons.Total, second.Sermons.Total)
}

func TestAdminServiceContentStatsWithoutCache(t *testing.T) {
	stats := &mockStatsRepo{}
	svc := NewAdminService(stats, &mockAuditRepo{}, &mockExportSources{}, nil, nil, nil, zap.NewNop())

	_, err := svc.ContentStats(context.Background())
	require.NoError(t, err)
	_, err = svc.ContentStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.calls)
}

func TestAdminServiceExportAnnouncementsCSV(t *testing.T) {
	audit := &mockAuditRepo{}
	storage := &mockExportStorage{}
	sources := &mockExportSources{announcements: []models.Announcement{
		{ID: 11, Title: "Fall Retreat", Type: "event", Active: true, DateEntered: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)},
	}}
	svc := newAdminService(audit, sources, storage)

	result, err := svc.Export(context.Background(), "announcements", "csv", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, "signed-"+result.ExportID, result.Token)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	payload := string(storage.saved[result.Filename])
	assert.Contains(t, payload, "id,title,type")
	assert.Contains(t, payload, "Fall Retreat")

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionExport, audit.logs[0].Action)
	assert.Equal(t, "announcements", audit.logs[0].Resource)
}

func TestAdminServiceExportSermonsPDF(t *testing.T) {
	storage := &mockExportStorage{}
	sources := &mockExportSources{sermons: []models.Sermon{
		{ID: 21, Title: "The Good Samaritan", Speaker: "Rev. Smith", Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)},
	}}
	svc := newAdminService(&mockAuditRepo{}, sources, storage)

	result, err := svc.Export(context.Background(), "sermons", "pdf", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.NotEmpty(t, storage.saved[result.Filename])
}

func TestAdminServiceExportRejectsFormat(t *testing.T) {
	svc := newAdminService(&mockAuditRepo{}, &mockExportSources{}, &mockExportStorage{})

	_, err := svc.Export(context.Background(), "announcements", "xlsx", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAdminServiceExportRejectsEntity(t *testing.T) {
	svc := newAdminService(&mockAuditRepo{}, &mockExportSources{}, &mockExportStorage{})

	_, err := svc.Export(context.Background(), "users", "csv", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
