package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/archive"
	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
)

type mockSermonRepo struct {
	sermons    map[int64]models.Sermon
	archived   []models.Sermon
	lastCutoff time.Time
	lastYear   int
	listTotal  int
	bulkIDs    []int64
}

func (m *mockSermonRepo) List(ctx context.Context, filter models.SermonFilter) ([]models.Sermon, int, error) {
	list := make([]models.Sermon, 0, len(m.sermons))
	for _, s := range m.sermons {
		list = append(list, s)
	}
	return list, m.listTotal, nil
}

func (m *mockSermonRepo) ListArchived(ctx context.Context, cutoff time.Time, year int) ([]models.Sermon, error) {
	m.lastCutoff = cutoff
	m.lastYear = year
	return m.archived, nil
}

func (m *mockSermonRepo) GetByID(ctx context.Context, id int64) (*models.Sermon, error) {
	if s, ok := m.sermons[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSermonRepo) Create(ctx context.Context, sermon *models.Sermon) error {
	if m.sermons == nil {
		m.sermons = make(map[int64]models.Sermon)
	}
	if sermon.ID == 0 {
		sermon.ID = int64(len(m.sermons) + 1)
	}
	m.sermons[sermon.ID] = *sermon
	return nil
}

func (m *mockSermonRepo) Update(ctx context.Context, sermon *models.Sermon) error {
	m.sermons[sermon.ID] = *sermon
	return nil
}

func (m *mockSermonRepo) Delete(ctx context.Context, id int64) error {
	delete(m.sermons, id)
	return nil
}

func (m *mockSermonRepo) BulkSetArchived(ctx context.Context, ids []int64, archived bool) (int, error) {
	m.bulkIDs = ids
	return len(ids), nil
}

func (m *mockSermonRepo) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	m.bulkIDs = ids
	return len(ids), nil
}

type mockArchiveStore struct {
	byYear   map[string][]models.Sermon
	counts   map[string]int
	progress *archive.SeriesProgress
	lastBook string
}

func (m *mockArchiveStore) ByYear(year string) ([]models.Sermon, error) {
	return m.byYear[year], nil
}

func (m *mockArchiveStore) YearCounts() (map[string]int, error) {
	return m.counts, nil
}

func (m *mockArchiveStore) Years() ([]string, error) {
	years := make([]string, 0, len(m.counts))
	for year := range m.counts {
		years = append(years, year)
	}
	return years, nil
}

func (m *mockArchiveStore) Metadata() (*archive.Metadata, error) {
	return &archive.Metadata{Title: "Sunday Sermons", YearCounts: m.counts}, nil
}

func (m *mockArchiveStore) LatestSeriesProgress(book string) (*archive.SeriesProgress, error) {
	m.lastBook = book
	return m.progress, nil
}

func TestSermonServiceArchiveCutoff(t *testing.T) {
	repo := &mockSermonRepo{archived: []models.Sermon{{ID: 1, Title: "Old"}}}
	svc := NewSermonService(repo, &mockArchiveStore{}, 90, validator.New(), zap.NewNop())

	sermons, err := svc.Archive(context.Background(), 2023)
	require.NoError(t, err)
	assert.Len(t, sermons, 1)
	assert.Equal(t, 2023, repo.lastYear)

	expected := time.Now().UTC().AddDate(0, 0, -90)
	assert.WithinDuration(t, expected, repo.lastCutoff, 5*time.Second)
}

func TestSermonServiceYears(t *testing.T) {
	store := &mockArchiveStore{counts: map[string]int{"2024": 52, "2023": 50}}
	svc := NewSermonService(&mockSermonRepo{}, store, 0, validator.New(), zap.NewNop())

	years, counts, err := svc.Years(context.Background())
	require.NoError(t, err)
	assert.Len(t, years, 2)
	assert.Equal(t, 52, counts["2024"])
}

func TestSermonServiceLatestSeriesProgressDefaultsBook(t *testing.T) {
	store := &mockArchiveStore{progress: &archive.SeriesProgress{Book: "Luke", TotalSermons: 12}}
	svc := NewSermonService(&mockSermonRepo{}, store, 0, validator.New(), zap.NewNop())

	progress, err := svc.LatestSeriesProgress(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Luke", store.lastBook)
	assert.Equal(t, 12, progress.TotalSermons)
}

func TestSermonServiceLatestSeriesProgressNotFound(t *testing.T) {
	svc := NewSermonService(&mockSermonRepo{}, &mockArchiveStore{}, 0, validator.New(), zap.NewNop())

	_, err := svc.LatestSeriesProgress(context.Background(), "Revelation")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSermonServiceCreate(t *testing.T) {
	repo := &mockSermonRepo{}
	svc := NewSermonService(repo, &mockArchiveStore{}, 0, validator.New(), zap.NewNop())

	sermon, err := svc.Create(context.Background(), SermonRequest{
		Title:   "The Good Samaritan",
		Speaker: "Rev. Smith",
		Date:    time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		Active:  true,
	})
	require.NoError(t, err)
	assert.NotZero(t, sermon.ID)
	assert.True(t, sermon.Active)
}

func TestSermonServiceCreateMissingSpeaker(t *testing.T) {
	svc := NewSermonService(&mockSermonRepo{}, &mockArchiveStore{}, 0, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), SermonRequest{Title: "Untitled", Date: time.Now()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSermonServiceBulkSetArchived(t *testing.T) {
	repo := &mockSermonRepo{}
	svc := NewSermonService(repo, &mockArchiveStore{}, 0, validator.New(), zap.NewNop())

	affected, err := svc.BulkSetArchived(context.Background(), BulkIDsRequest{IDs: []int64{7, 8}}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, affected)
	assert.Equal(t, []int64{7, 8}, repo.bulkIDs)
}
