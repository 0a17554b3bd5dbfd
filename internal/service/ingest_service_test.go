package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/ingest"
	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
	"github.com/cpcnewhaven/cpc-web-app/pkg/jobs"
)

type mockSnapshotCache struct {
	entries map[string]ingest.Snapshot
	ttls    map[string]time.Duration
}

func newMockSnapshotCache() *mockSnapshotCache {
	return &mockSnapshotCache{
		entries: make(map[string]ingest.Snapshot),
		ttls:    make(map[string]time.Duration),
	}
}

func (m *mockSnapshotCache) Get(ctx context.Context, key string, dest interface{}) error {
	snapshot, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*ingest.Snapshot) = snapshot
	return nil
}

func (m *mockSnapshotCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.entries[key] = *value.(*ingest.Snapshot)
	m.ttls[key] = ttl
	return nil
}

type mockFetcher struct {
	snapshot *ingest.Snapshot
	err      error
	calls    int
}

func (m *mockFetcher) Fetch(ctx context.Context) (*ingest.Snapshot, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

type mockSermonSync struct {
	existing map[string]bool
	created  []models.Sermon
}

func (m *mockSermonSync) ExistsByTitleAndDate(ctx context.Context, title string, date time.Time) (bool, error) {
	return m.existing[title], nil
}

func (m *mockSermonSync) Create(ctx context.Context, sermon *models.Sermon) error {
	m.created = append(m.created, *sermon)
	return nil
}

type mockIngestMetrics struct {
	sources  []string
	failures int
}

func (m *mockIngestMetrics) RecordIngestFetch(source string, err error) {
	m.sources = append(m.sources, source)
	if err != nil {
		m.failures++
	}
}

func podcastSnapshot(episodes []ingest.Episode) *ingest.Snapshot {
	return &ingest.Snapshot{
		Type:      "podcast",
		Source:    "https://example.org/feed.rss",
		Count:     len(episodes),
		Items:     episodes,
		FetchedAt: time.Now().UTC(),
	}
}

func TestIngestServiceSnapshotCachesResult(t *testing.T) {
	cache := newMockSnapshotCache()
	fetcher := &mockFetcher{snapshot: podcastSnapshot(nil)}
	svc := NewIngestService(cache, nil, time.Minute, zap.NewNop())
	svc.Register("podcast", fetcher)

	_, err := svc.Snapshot(context.Background(), "podcast")
	require.NoError(t, err)
	_, err = svc.Snapshot(context.Background(), "podcast")
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, time.Minute, cache.ttls["ingest:podcast"])
	assert.Equal(t, 24*time.Hour, cache.ttls["ingest:podcast:stale"])
}

func TestIngestServiceSnapshotServesStaleOnFailure(t *testing.T) {
	cache := newMockSnapshotCache()
	cache.entries["ingest:podcast:stale"] = *podcastSnapshot([]ingest.Episode{{ID: "ep-1", Title: "Last Good"}})
	fetcher := &mockFetcher{err: errors.New("upstream down")}
	svc := NewIngestService(cache, nil, time.Minute, zap.NewNop())
	svc.Register("podcast", fetcher)

	snapshot, err := svc.Snapshot(context.Background(), "podcast")
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Count)
}

func TestIngestServiceSnapshotUpstreamUnavailable(t *testing.T) {
	svc := NewIngestService(newMockSnapshotCache(), nil, time.Minute, zap.NewNop())
	svc.Register("podcast", &mockFetcher{err: errors.New("upstream down")})

	_, err := svc.Snapshot(context.Background(), "podcast")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErrors.FromError(err).Code)
}

func TestIngestServiceSnapshotUnknownSource(t *testing.T) {
	svc := NewIngestService(newMockSnapshotCache(), nil, time.Minute, zap.NewNop())

	_, err := svc.Snapshot(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestIngestServiceRecordsFetchOutcomes(t *testing.T) {
	cache := newMockSnapshotCache()
	metrics := &mockIngestMetrics{}
	svc := NewIngestService(cache, nil, time.Minute, zap.NewNop())
	svc.AttachMetrics(metrics)
	svc.Register("podcast", &mockFetcher{snapshot: podcastSnapshot(nil)})
	svc.Register("newsletter", &mockFetcher{err: errors.New("upstream down")})

	_, err := svc.Snapshot(context.Background(), "podcast")
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), "newsletter")
	require.Error(t, err)

	// The cached second read must not count as a fetch.
	_, err = svc.Snapshot(context.Background(), "podcast")
	require.NoError(t, err)

	assert.Equal(t, []string{"podcast", "newsletter"}, metrics.sources)
	assert.Equal(t, 1, metrics.failures)
}

func TestIngestServiceRefreshOverwritesCache(t *testing.T) {
	cache := newMockSnapshotCache()
	cache.entries["ingest:podcast"] = *podcastSnapshot(nil)
	fetcher := &mockFetcher{snapshot: podcastSnapshot([]ingest.Episode{{ID: "ep-1"}})}
	svc := NewIngestService(cache, nil, time.Minute, zap.NewNop())
	svc.Register("podcast", fetcher)

	snapshot, err := svc.Refresh(context.Background(), "podcast")
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Count)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1, cache.entries["ingest:podcast"].Count)
}

func TestIngestServiceHandleRefreshJob(t *testing.T) {
	cache := newMockSnapshotCache()
	fetcher := &mockFetcher{snapshot: podcastSnapshot(nil)}
	svc := NewIngestService(cache, nil, time.Minute, zap.NewNop())
	svc.Register("podcast", fetcher)

	err := svc.HandleRefreshJob(context.Background(), jobs.Job{ID: "1", Type: "refresh", Payload: "podcast"})
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)

	err = svc.HandleRefreshJob(context.Background(), jobs.Job{ID: "2", Type: "refresh", Payload: 42})
	require.Error(t, err)
}

func TestIngestServiceSyncSermonsSkipsExisting(t *testing.T) {
	published := time.Date(2024, 6, 2, 14, 30, 0, 0, time.UTC)
	episodes := []ingest.Episode{
		{ID: "ep-1", Title: "The Good Samaritan", Author: "Rev. Smith", Published: &published, Link: "https://open.spotify.com/episode/abc"},
		{ID: "ep-2", Title: "Already There", Published: &published},
		{ID: "ep-3", Title: "No Date"},
	}
	cache := newMockSnapshotCache()
	sermons := &mockSermonSync{existing: map[string]bool{"Already There": true}}
	svc := NewIngestService(cache, sermons, time.Minute, zap.NewNop())
	svc.Register("podcast", &mockFetcher{snapshot: podcastSnapshot(episodes)})

	created, err := svc.SyncSermons(context.Background(), "podcast")
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, sermons.created, 1)

	sermon := sermons.created[0]
	assert.Equal(t, "The Good Samaritan", sermon.Title)
	assert.Equal(t, "Rev. Smith", sermon.Speaker)
	assert.True(t, sermon.Active)
	require.NotNil(t, sermon.SpotifyURL)
	assert.Equal(t, "https://open.spotify.com/episode/abc", *sermon.SpotifyURL)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), sermon.Date)
}

func TestIngestServiceSyncSermonsWrongSourceType(t *testing.T) {
	cache := newMockSnapshotCache()
	svc := NewIngestService(cache, &mockSermonSync{}, time.Minute, zap.NewNop())
	svc.Register("youtube", &mockFetcher{snapshot: &ingest.Snapshot{Type: "youtube"}})

	_, err := svc.SyncSermons(context.Background(), "youtube")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
