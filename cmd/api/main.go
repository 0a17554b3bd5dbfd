package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/cpcnewhaven/cpc-web-app/api/swagger"
	"github.com/cpcnewhaven/cpc-web-app/internal/archive"
	"github.com/cpcnewhaven/cpc-web-app/internal/handler"
	"github.com/cpcnewhaven/cpc-web-app/internal/ingest"
	"github.com/cpcnewhaven/cpc-web-app/internal/repository"
	"github.com/cpcnewhaven/cpc-web-app/internal/router"
	"github.com/cpcnewhaven/cpc-web-app/internal/service"
	"github.com/cpcnewhaven/cpc-web-app/pkg/cache"
	"github.com/cpcnewhaven/cpc-web-app/pkg/config"
	"github.com/cpcnewhaven/cpc-web-app/pkg/database"
	"github.com/cpcnewhaven/cpc-web-app/pkg/jobs"
	"github.com/cpcnewhaven/cpc-web-app/pkg/logger"
	"github.com/cpcnewhaven/cpc-web-app/pkg/ports"
	"github.com/cpcnewhaven/cpc-web-app/pkg/storage"
)

// @title CPC Web App API
// @version 1.0.0
// @description Church content API: announcements, sermons, podcasts, gallery, events and external feeds
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
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
		logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	ids := repository.NewContentIDs(db)
	announcementRepo := repository.NewAnnouncementRepository(db, ids)
	sermonRepo := repository.NewSermonRepository(db, ids)
	podcastRepo := repository.NewPodcastRepository(db, ids)
	galleryRepo := repository.NewGalleryRepository(db, ids)
	eventRepo := repository.NewEventRepository(db, ids)
	userRepo := repository.NewUserRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	archiveStore := archive.NewStore(cfg.Archive.SermonsFile, logr)
	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheRepo.AttachMetrics(metricsSvc)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:             cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "cpc-web-app",
	})
	announcementSvc := service.NewAnnouncementService(announcementRepo, cacheRepo, validate, logr)
	sermonSvc := service.NewSermonService(sermonRepo, archiveStore, cfg.Archive.CutoffDays, validate, logr)
	searchSvc := service.NewSearchService(archiveStore, archiveStore.Years, logr)
	podcastSvc := service.NewPodcastService(podcastRepo, validate, logr)
	gallerySvc := service.NewGalleryService(galleryRepo, validate, logr)
	eventSvc := service.NewEventService(eventRepo, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ingestSvc := service.NewIngestService(cacheRepo, sermonRepo, cfg.Ingest.SnapshotTTL, logr)
	ingestSvc.AttachMetrics(metricsSvc)
	if cfg.Ingest.Enabled {
		client := ingest.NewClient(cfg.Ingest.FetchTimeout)
		ingestSvc.Register("newsletter", ingest.NewNewsletterFetcher(client, cfg.Ingest.NewsletterFeedURL))
		ingestSvc.Register("youtube", ingest.NewYouTubeFetcher(client, cfg.Ingest.YouTubeChannelID))
		ingestSvc.Register("events", ingest.NewCalendarFetcher(client, cfg.Ingest.EventsICSURL))
		if cfg.Ingest.SpotifyClientID != "" && cfg.Ingest.SpotifyShowID != "" {
			spotify := ingest.NewSpotifyClient(client, cfg.Ingest.SpotifyClientID, cfg.Ingest.SpotifyClientSecret)
			ingestSvc.Register("podcast", spotify.ShowFetcher(cfg.Ingest.SpotifyShowID))
		} else {
			ingestSvc.Register("podcast", ingest.NewPodcastFetcher(client, cfg.Ingest.PodcastRSSURL))
		}

		queue := jobs.NewQueue("ingest-refresh", ingestSvc.HandleRefreshJob, jobs.QueueConfig{
			Workers:    cfg.Ingest.Workers,
			BufferSize: 64,
			MaxRetries: 3,
			RetryDelay: 30 * time.Second,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		ingestSvc.AttachQueue(queue)

		go func() {
			ticker := time.NewTicker(cfg.Ingest.RefreshInterval)
			defer ticker.Stop()
			ingestSvc.EnqueueRefresh()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					ingestSvc.EnqueueRefresh()
				}
			}
		}()
	}

	sources := service.ContentExportSources{
		Announcements: announcementRepo,
		Sermons:       sermonRepo,
		Podcasts:      podcastRepo,
		Gallery:       galleryRepo,
		Events:        eventRepo,
	}

	var adminHandler *handler.AdminHandler
	if cfg.Exports.Enabled {
		exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		adminSvc := service.NewAdminService(statsRepo, userRepo, sources, cacheRepo, exportStore, signer, logr)
		adminHandler = handler.NewAdminHandler(adminSvc, metricsSvc, exportStore, signer)
	} else {
		adminSvc := service.NewAdminService(statsRepo, userRepo, sources, cacheRepo, nil, nil, logr)
		adminHandler = handler.NewAdminHandler(adminSvc, metricsSvc, nil, nil)
	}

	r := router.New(router.Dependencies{
		Config:        cfg,
		Logger:        logr,
		Metrics:       metricsSvc,
		Users:         userRepo,
		Auth:          authSvc,
		Announcements: announcementSvc,
		Sermons:       sermonSvc,
		Search:        searchSvc,
		Podcasts:      podcastSvc,
		Gallery:       gallerySvc,
		Events:        eventSvc,
		Admin:         adminHandler,
		Ingest:        ingestSvc,
	})

	port := cfg.Port
	if port == 0 {
		finder := ports.NewFinder(cfg.Ports.Preferred, cfg.Ports.MaxAttempts)
		port, err = finder.Find()
		if err != nil {
			logr.Sugar().Fatalw("no listen port available", "error", err)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
