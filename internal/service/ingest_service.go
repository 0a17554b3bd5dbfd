package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/ingest"
	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	appErrors "github.com/cpcnewhaven/cpc-web-app/pkg/errors"
	"github.com/cpcnewhaven/cpc-web-app/pkg/jobs"
)

// Cache keys follow ingest:<source>; stale copies live under
// ingest:<source>:stale with a much longer TTL so a broken upstream can
// degrade to the last good snapshot.
const (
	staleSnapshotTTL = 24 * time.Hour
	snapshotKeyFmt   = "ingest:%s"
	staleKeyFmt      = "ingest:%s:stale"
)

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type snapshotFetcher interface {
	Fetch(ctx context.Context) (*ingest.Snapshot, error)
}

type sermonSyncRepository interface {
	ExistsByTitleAndDate(ctx context.Context, title string, date time.Time) (bool, error)
	Create(ctx context.Context, sermon *models.Sermon) error
}

// ingestMetrics counts upstream fetch outcomes per source.
type ingestMetrics interface {
	RecordIngestFetch(source string, err error)
}

// IngestService serves cached external-feed snapshots and keeps them fresh
// through the background queue. Episode snapshots can also be merged into
// the sermons table.
type IngestService struct {
	fetchers map[string]snapshotFetcher
	cache    snapshotCache
	sermons  sermonSyncRepository
	queue    *jobs.Queue
	metrics  ingestMetrics
	ttl      time.Duration
	logger   *zap.Logger
}

// NewIngestService constructs the ingest service. The queue is wired after
// construction because its handler closes over the service.
func NewIngestService(cache snapshotCache, sermons sermonSyncRepository, ttl time.Duration, logger *zap.Logger) *IngestService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{
		fetchers: map[string]snapshotFetcher{},
		cache:    cache,
		sermons:  sermons,
		ttl:      ttl,
		logger:   logger,
	}
}

// Register adds a fetcher under a source name.
func (s *IngestService) Register(source string, fetcher snapshotFetcher) {
	s.fetchers[source] = fetcher
}

// Sources lists the registered source names.
func (s *IngestService) Sources() []string {
	sources := make([]string, 0, len(s.fetchers))
	for source := range s.fetchers {
		sources = append(sources, source)
	}
	return sources
}

// AttachQueue wires the background refresh queue.
func (s *IngestService) AttachQueue(queue *jobs.Queue) {
	s.queue = queue
}

// AttachMetrics wires fetch instrumentation.
func (s *IngestService) AttachMetrics(metrics ingestMetrics) {
	s.metrics = metrics
}

// Snapshot returns the cached snapshot for a source, fetching on a cache
// miss. When the upstream fails, the last good snapshot is served instead;
// only when both are gone does the caller see an upstream error.
func (s *IngestService) Snapshot(ctx context.Context, source string) (*ingest.Snapshot, error) {
	fetcher, ok := s.fetchers[source]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown ingest source")
	}

	var cached ingest.Snapshot
	if err := s.cache.Get(ctx, fmt.Sprintf(snapshotKeyFmt, source), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("snapshot cache read failed", zap.String("source", source), zap.Error(err))
	}

	snapshot, err := fetcher.Fetch(ctx)
	s.recordFetch(source, err)
	if err != nil {
		s.logger.Warn("feed fetch failed, trying stale snapshot", zap.String("source", source), zap.Error(err))
		var stale ingest.Snapshot
		if cacheErr := s.cache.Get(ctx, fmt.Sprintf(staleKeyFmt, source), &stale); cacheErr == nil {
			return &stale, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "external source unavailable")
	}

	s.store(ctx, source, snapshot)
	return snapshot, nil
}

// Refresh fetches a source unconditionally and updates the cache.
func (s *IngestService) Refresh(ctx context.Context, source string) (*ingest.Snapshot, error) {
	fetcher, ok := s.fetchers[source]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown ingest source")
	}
	snapshot, err := fetcher.Fetch(ctx)
	s.recordFetch(source, err)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "external source unavailable")
	}
	s.store(ctx, source, snapshot)
	return snapshot, nil
}

// EnqueueRefresh schedules a background refresh for every registered source.
func (s *IngestService) EnqueueRefresh() {
	if s.queue == nil {
		return
	}
	for source := range s.fetchers {
		job := jobs.Job{ID: uuid.NewString(), Type: "refresh", Payload: source}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue feed refresh", zap.String("source", source), zap.Error(err))
		}
	}
}

// HandleRefreshJob is the queue handler: it refreshes the source named in
// the job payload.
func (s *IngestService) HandleRefreshJob(ctx context.Context, job jobs.Job) error {
	source, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("refresh job payload is not a source name")
	}
	if _, err := s.Refresh(ctx, source); err != nil {
		return err
	}
	s.logger.Info("feed snapshot refreshed", zap.String("source", source))
	return nil
}

// SyncSermons merges a podcast snapshot into the sermons table, creating a
// sermon row for every episode not already present. Returns the number of
// rows created.
func (s *IngestService) SyncSermons(ctx context.Context, source string) (int, error) {
	if s.sermons == nil {
		return 0, appErrors.Clone(appErrors.ErrInternal, "sermon sync not configured")
	}
	snapshot, err := s.Snapshot(ctx, source)
	if err != nil {
		return 0, err
	}
	episodes, ok := snapshotEpisodes(snapshot)
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrValidation, "source does not produce podcast episodes")
	}

	created := 0
	for _, episode := range episodes {
		if episode.Title == "" || episode.Published == nil {
			continue
		}
		date := episode.Published.UTC().Truncate(24 * time.Hour)
		exists, err := s.sermons.ExistsByTitleAndDate(ctx, episode.Title, date)
		if err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for existing sermon")
		}
		if exists {
			continue
		}

		sermon := &models.Sermon{
			Title:   episode.Title,
			Speaker: episode.Author,
			Date:    date,
			Active:  true,
		}
		if episode.Link != "" {
			link := episode.Link
			sermon.SpotifyURL = &link
		}
		if episode.Thumbnail != "" {
			thumb := episode.Thumbnail
			sermon.ThumbnailURL = &thumb
		}
		if err := s.sermons.Create(ctx, sermon); err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sermon from episode")
		}
		created++
	}
	s.logger.Info("sermon sync complete", zap.String("source", source), zap.Int("created", created))
	return created, nil
}

func (s *IngestService) recordFetch(source string, err error) {
	if s.metrics != nil {
		s.metrics.RecordIngestFetch(source, err)
	}
}

func (s *IngestService) store(ctx context.Context, source string, snapshot *ingest.Snapshot) {
	if err := s.cache.Set(ctx, fmt.Sprintf(snapshotKeyFmt, source), snapshot, s.ttl); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.String("source", source), zap.Error(err))
	}
	if err := s.cache.Set(ctx, fmt.Sprintf(staleKeyFmt, source), snapshot, staleSnapshotTTL); err != nil {
		s.logger.Warn("stale snapshot cache write failed", zap.String("source", source), zap.Error(err))
	}
}

// snapshotEpisodes recovers typed episodes from a snapshot. Items arrive as
// []ingest.Episode from a live fetch or as decoded JSON from the cache.
func snapshotEpisodes(snapshot *ingest.Snapshot) ([]ingest.Episode, bool) {
	if snapshot.Type != "podcast" {
		return nil, false
	}
	switch items := snapshot.Items.(type) {
	case []ingest.Episode:
		return items, true
	case []interface{}:
		episodes := make([]ingest.Episode, 0, len(items))
		for _, raw := range items {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			episode := ingest.Episode{}
			if v, ok := entry["id"].(string); ok {
				episode.ID = v
			}
			if v, ok := entry["title"].(string); ok {
				episode.Title = v
			}
			if v, ok := entry["link"].(string); ok {
				episode.Link = v
			}
			if v, ok := entry["author"].(string); ok {
				episode.Author = v
			}
			if v, ok := entry["thumbnail"].(string); ok {
				episode.Thumbnail = v
			}
			if v, ok := entry["published"].(string); ok {
				if ts, err := time.Parse(time.RFC3339, v); err == nil {
					episode.Published = &ts
				}
			}
			episodes = append(episodes, episode)
		}
		return episodes, true
	default:
		return nil, false
	}
}
