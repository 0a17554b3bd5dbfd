package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/archive"
	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	"github.com/cpcnewhaven/cpc-web-app/internal/service"
)

type stubSermonRepo struct {
	items      []models.Sermon
	lastCutoff time.Time
	lastYear   int
}

func (r *stubSermonRepo) List(_ context.Context, _ models.SermonFilter) ([]models.Sermon, int, error) {
	return r.items, len(r.items), nil
}

func (r *stubSermonRepo) ListArchived(_ context.Context, cutoff time.Time, year int) ([]models.Sermon, error) {
	r.lastCutoff = cutoff
	r.lastYear = year
	return r.items, nil
}

func (r *stubSermonRepo) GetByID(_ context.Context, _ int64) (*models.Sermon, error) {
	return nil, sql.ErrNoRows
}

func (r *stubSermonRepo) Create(_ context.Context, _ *models.Sermon) error { return nil }

func (r *stubSermonRepo) Update(_ context.Context, _ *models.Sermon) error { return nil }

func (r *stubSermonRepo) Delete(_ context.Context, _ int64) error { return nil }

func (r *stubSermonRepo) BulkSetArchived(_ context.Context, ids []int64, _ bool) (int, error) {
	return len(ids), nil
}

func (r *stubSermonRepo) BulkDelete(_ context.Context, ids []int64) (int, error) {
	return len(ids), nil
}

func writeArchiveFile(t *testing.T) string {
	t.Helper()
	payload := map[string]interface{}{
		"title":       "Sunday Sermons",
		"description": "Weekly sermons",
		"sermons_by_year": map[string][]map[string]interface{}{
			"2024": {
				{"id": 1, "title": "The Good Samaritan", "speaker": "Rev. Smith", "scripture": "Luke 10:25-37", "date": "2024-06-02T00:00:00Z", "series": "Luke", "active": true},
				{"id": 2, "title": "The Prodigal Son", "speaker": "Rev. Smith", "scripture": "Luke 15:11-32", "date": "2024-06-09T00:00:00Z", "series": "Luke", "active": true},
			},
			"2023": {
				{"id": 3, "title": "In the Beginning", "speaker": "Rev. Jones", "scripture": "Genesis 1:1", "date": "2023-01-08T00:00:00Z", "series": "Genesis", "active": true},
			},
		},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sermons.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func sermonRouter(t *testing.T, repo *stubSermonRepo) *gin.Engine {
	t.Helper()
	store := archive.NewStore(writeArchiveFile(t), zap.NewNop())
	svc := service.NewSermonService(repo, store, 90, nil, zap.NewNop())
	h := NewSermonHandler(svc)

	r := gin.New()
	r.GET("/sermons", h.List)
	r.GET("/sermons/archive", h.Archive)
	r.GET("/sermons/years", h.Years)
	r.GET("/sermons/year/:year", h.ByYear)
	r.GET("/sermons/metadata", h.Metadata)
	r.GET("/sermons/latest-series", h.LatestSeriesProgress)
	return r
}

func TestSermonHandlerYears(t *testing.T) {
	r := sermonRouter(t, &stubSermonRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sermons/years", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Years  []string       `json:"years"`
			Counts map[string]int `json:"counts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"2024", "2023"}, envelope.Data.Years)
	assert.Equal(t, 2, envelope.Data.Counts["2024"])
	assert.Equal(t, 1, envelope.Data.Counts["2023"])
}

func TestSermonHandlerByYear(t *testing.T) {
	r := sermonRouter(t, &stubSermonRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sermons/year/2023", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "In the Beginning")
	assert.NotContains(t, w.Body.String(), "Prodigal")
}

func TestSermonHandlerMetadata(t *testing.T) {
	r := sermonRouter(t, &stubSermonRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sermons/metadata", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data archive.Metadata `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "Sunday Sermons", envelope.Data.Title)
	assert.Equal(t, 3, envelope.Data.TotalSermons)
}

func TestSermonHandlerLatestSeriesProgress(t *testing.T) {
	r := sermonRouter(t, &stubSermonRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sermons/latest-series?book=Luke", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data archive.SeriesProgress `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "Luke", envelope.Data.Book)
	assert.Equal(t, 15, envelope.Data.LatestByChapter.Chapter)
	assert.Equal(t, 2, envelope.Data.TotalSermons)
}

func TestSermonHandlerLatestSeriesProgressUnknownBook(t *testing.T) {
	r := sermonRouter(t, &stubSermonRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sermons/latest-series?book=Obadiah", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSermonHandlerArchiveAppliesCutoff(t *testing.T) {
	repo := &stubSermonRepo{}
	r := sermonRouter(t, repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sermons/archive?year=2023", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2023, repo.lastYear)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -90), repo.lastCutoff, 5*time.Second)
}
