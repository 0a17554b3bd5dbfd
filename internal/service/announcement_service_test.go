package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
)

type mockAnnouncementRepo struct {
	announcements map[int64]models.Announcement
	highlights    []models.Announcement
	lastFilter    models.AnnouncementFilter
	listTotal     int
	listCalls     int
	bulkIDs       []int64
	err           error
}

func (m *mockAnnouncementRepo) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	m.lastFilter = filter
	m.listCalls++
	if m.err != nil {
		return nil, 0, m.err
	}
	list := make([]models.Announcement, 0, len(m.announcements))
	for _, a := range m.announcements {
		list = append(list, a)
	}
	return list, m.listTotal, nil
}

func (m *mockAnnouncementRepo) Highlights(ctx context.Context, superLimit, regularLimit int) ([]models.Announcement, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.highlights, nil
}

func (m *mockAnnouncementRepo) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	if a, ok := m.announcements[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAnnouncementRepo) Create(ctx context.Context, announcement *models.Announcement) error {
	if m.announcements == nil {
		m.announcements = make(map[int64]models.Announcement)
	}
	if announcement.ID == 0 {
		announcement.ID = int64(len(m.announcements) + 1)
	}
	m.announcements[announcement.ID] = *announcement
	return nil
}

func (m *mockAnnouncementRepo) Update(ctx context.Context, announcement *models.Announcement) error {
	m.announcements[announcement.ID] = *announcement
	return nil
}

func (m *mockAnnouncementRepo) Delete(ctx context.Context, id int64) error {
	delete(m.announcements, id)
	return nil
}

func (m *mockAnnouncementRepo) BulkSetActive(ctx context.Context, ids []int64, active bool) (int, error) {
	m.bulkIDs = ids
	return len(ids), nil
}

func (m *mockAnnouncementRepo) BulkSetSuperfeatured(ctx context.Context, ids []int64, superfeatured bool) (int, error) {
	m.bulkIDs = ids
	return len(ids), nil
}

func (m *mockAnnouncementRepo) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	m.bulkIDs = ids
	return len(ids), nil
}

type mockListingCache struct {
	entries  map[string][]byte
	patterns []string
}

func newMockListingCache() *mockListingCache {
	return &mockListingCache{entries: map[string][]byte{}}
}

func (m *mockListingCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockListingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *mockListingCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	m.entries = map[string][]byte{}
	return nil
}

func TestAnnouncementServiceList(t *testing.T) {
	repo := &mockAnnouncementRepo{
		announcements: map[int64]models.Announcement{1: {ID: 1, Title: "Fall Retreat"}},
		listTotal:     41,
	}
	svc := NewAnnouncementService(repo, nil, validator.New(), zap.NewNop())

	list, pagination, err := svc.List(context.Background(), models.AnnouncementFilter{Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 41, pagination.TotalCount)
}

func TestAnnouncementServiceListServedFromCache(t *testing.T) {
	repo := &mockAnnouncementRepo{
		announcements: map[int64]models.Announcement{1: {ID: 1, Title: "Fall Retreat"}},
		listTotal:     1,
	}
	cache := newMockListingCache()
	svc := NewAnnouncementService(repo, cache, validator.New(), zap.NewNop())

	filter := models.AnnouncementFilter{Page: 1, PageSize: 20}
	first, _, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	second, pagination, err := svc.List(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestAnnouncementServiceListCacheKeyVariesByFilter(t *testing.T) {
	repo := &mockAnnouncementRepo{listTotal: 0}
	cache := newMockListingCache()
	svc := NewAnnouncementService(repo, cache, validator.New(), zap.NewNop())

	_, _, err := svc.List(context.Background(), models.AnnouncementFilter{Type: "event"})
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), models.AnnouncementFilter{Type: "ongoing"})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
	assert.Len(t, cache.entries, 2)
}

func TestAnnouncementServiceMutationInvalidatesListing(t *testing.T) {
	repo := &mockAnnouncementRepo{listTotal: 1}
	cache := newMockListingCache()
	svc := NewAnnouncementService(repo, cache, validator.New(), zap.NewNop())

	_, _, err := svc.List(context.Background(), models.AnnouncementFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	_, err = svc.Create(context.Background(), AnnouncementRequest{
		Title:       "Fall Retreat",
		Description: "Sign up by Sunday",
		Type:        "event",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"public:announcements:*"}, cache.patterns)

	_, _, err = svc.List(context.Background(), models.AnnouncementFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestAnnouncementServiceHighlightsServedFromCache(t *testing.T) {
	repo := &mockAnnouncementRepo{highlights: []models.Announcement{{ID: 1, Superfeatured: true}}}
	cache := newMockListingCache()
	svc := NewAnnouncementService(repo, cache, validator.New(), zap.NewNop())

	_, err := svc.Highlights(context.Background())
	require.NoError(t, err)

	repo.err = sql.ErrConnDone
	highlights, err := svc.Highlights(context.Background())
	require.NoError(t, err)
	require.Len(t, highlights, 1)
	assert.True(t, highlights[0].Superfeatured)
}

func TestAnnouncementServiceCreate(t *testing.T) {
	repo := &mockAnnouncementRepo{}
	cache := newMockListingCache()
	svc := NewAnnouncementService(repo, cache, validator.New(), zap.NewNop())

	created, err := svc.Create(context.Background(), AnnouncementRequest{
		Title:       "Fall Retreat",
		Description: "Sign up by Sunday",
		Type:        "event",
		Active:      true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, models.AnnouncementType("event"), created.Type)
	assert.Equal(t, []string{"public:announcements:*"}, cache.patterns)
}

func TestAnnouncementServiceCreateInvalidType(t *testing.T) {
	svc := NewAnnouncementService(&mockAnnouncementRepo{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), AnnouncementRequest{
		Title:       "Fall Retreat",
		Description: "Sign up by Sunday",
		Type:        "banner",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAnnouncementServiceGetNotFound(t *testing.T) {
	svc := NewAnnouncementService(&mockAnnouncementRepo{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAnnouncementServiceHighlights(t *testing.T) {
	repo := &mockAnnouncementRepo{highlights: []models.Announcement{
		{ID: 1, Superfeatured: true},
		{ID: 2},
	}}
	svc := NewAnnouncementService(repo, nil, validator.New(), zap.NewNop())

	highlights, err := svc.Highlights(context.Background())
	require.NoError(t, err)
	require.Len(t, highlights, 2)
	assert.True(t, highlights[0].Superfeatured)
}

func TestAnnouncementServiceBulkSetActive(t *testing.T) {
	repo := &mockAnnouncementRepo{}
	cache := newMockListingCache()
	svc := NewAnnouncementService(repo, cache, validator.New(), zap.NewNop())

	affected, err := svc.BulkSetActive(context.Background(), BulkIDsRequest{IDs: []int64{3, 4, 5}}, false)
	require.NoError(t, err)
	assert.Equal(t, 3, affected)
	assert.Equal(t, []int64{3, 4, 5}, repo.bulkIDs)
	assert.NotEmpty(t, cache.patterns)
}

func TestAnnouncementServiceBulkRequiresIDs(t *testing.T) {
	svc := NewAnnouncementService(&mockAnnouncementRepo{}, nil, validator.New(), zap.NewNop())

	_, err := svc.BulkDelete(context.Background(), BulkIDsRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
