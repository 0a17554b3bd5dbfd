package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/cpcnewhaven/cpc-web-app/internal/ingest"
	"github.com/cpcnewhaven/cpc-web-app/internal/repository"
	"github.com/cpcnewhaven/cpc-web-app/internal/service"
	"github.com/cpcnewhaven/cpc-web-app/pkg/cache"
	"github.com/cpcnewhaven/cpc-web-app/pkg/config"
	"github.com/cpcnewhaven/cpc-web-app/pkg/database"
	"github.com/cpcnewhaven/cpc-web-app/pkg/logger"
)

// feed-sync pulls a podcast feed and merges new episodes into the sermons
// table. Meant for cron or a one-off backfill; the API server does the same
// thing through POST /admin/feeds/:source/sync-sermons.
func main() {
	source := flag.String("source", "podcast", "ingest source to sync")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, fetching without cache", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	ids := repository.NewContentIDs(db)
	sermonRepo := repository.NewSermonRepository(db, ids)

	client := ingest.NewClient(cfg.Ingest.FetchTimeout)
	svc := service.NewIngestService(cacheRepo, sermonRepo, cfg.Ingest.SnapshotTTL, logr)
	if cfg.Ingest.SpotifyClientID != "" && cfg.Ingest.SpotifyShowID != "" {
		spotify := ingest.NewSpotifyClient(client, cfg.Ingest.SpotifyClientID, cfg.Ingest.SpotifyClientSecret)
		svc.Register("podcast", spotify.ShowFetcher(cfg.Ingest.SpotifyShowID))
	} else {
		svc.Register("podcast", ingest.NewPodcastFetcher(client, cfg.Ingest.PodcastRSSURL))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	created, err := svc.SyncSermons(ctx, *source)
	if err != nil {
		logr.Sugar().Fatalw("sync failed", "source", *source, "error", err)
	}
	logr.Sugar().Infow("sync complete", "source", *source, "created", created)
}
