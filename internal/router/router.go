package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/cpcnewhaven/cpc-web-app/internal/handler"
	"github.com/cpcnewhaven/cpc-web-app/internal/middleware"
	"github.com/cpcnewhaven/cpc-web-app/internal/models"
	"github.com/cpcnewhaven/cpc-web-app/internal/repository"
	"github.com/cpcnewhaven/cpc-web-app/internal/service"
	"github.com/cpcnewhaven/cpc-web-app/pkg/config"
	"github.com/cpcnewhaven/cpc-web-app/pkg/logger"
	corsmiddleware "github.com/cpcnewhaven/cpc-web-app/pkg/middleware/cors"
	reqidmiddleware "github.com/cpcnewhaven/cpc-web-app/pkg/middleware/requestid"
)

// Dependencies bundles everything the router needs to assemble routes.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *service.MetricsService
	Users   *repository.UserRepository

	Auth          *service.AuthService
	Announcements *service.AnnouncementService
	Sermons       *service.SermonService
	Search        *service.SearchService
	Podcasts      *service.PodcastService
	Gallery       *service.GalleryService
	Events        *service.EventService
	Admin         *handler.AdminHandler
	Ingest        *service.IngestService
}

// New assembles the gin engine with every route and middleware chain.
func New(deps Dependencies) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	metricsHandler := handler.NewMetricsHandler(deps.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(deps.Auth)
	announcementHandler := handler.NewAnnouncementHandler(deps.Announcements)
	sermonHandler := handler.NewSermonHandler(deps.Sermons)
	searchHandler := handler.NewSearchHandler(deps.Search)
	podcastHandler := handler.NewPodcastHandler(deps.Podcasts)
	galleryHandler := handler.NewGalleryHandler(deps.Gallery)
	eventHandler := handler.NewEventHandler(deps.Events)
	ingestHandler := handler.NewIngestHandler(deps.Ingest)

	api := r.Group(deps.Config.APIPrefix)

	// Public content surface.
	api.GET("/announcements", announcementHandler.List)
	api.GET("/announcements/highlights", announcementHandler.Highlights)
	api.GET("/announcements/:id", announcementHandler.Get)
	// The homepage calls the short form.
	api.GET("/highlights", announcementHandler.Highlights)

	api.GET("/sermons", sermonHandler.List)
	api.GET("/sermons/archive", sermonHandler.Archive)
	api.GET("/sermons/years", sermonHandler.Years)
	api.GET("/sermons/year/:year", sermonHandler.ByYear)
	api.GET("/sermons/metadata", sermonHandler.Metadata)
	api.GET("/sermons/latest-series", sermonHandler.LatestSeriesProgress)
	api.GET("/sermons/search", searchHandler.Quick)
	api.GET("/sermons/:id", sermonHandler.Get)

	api.POST("/search/sermons", searchHandler.Search)
	api.GET("/search/sermons", searchHandler.Quick)
	api.GET("/search/suggestions", searchHandler.Suggestions)
	api.GET("/search/filters", searchHandler.Filters)

	api.GET("/podcasts", podcastHandler.ListSeries)
	api.GET("/podcasts/episodes", podcastHandler.ListEpisodes)
	api.GET("/podcasts/episodes/:id", podcastHandler.GetEpisode)
	api.GET("/podcasts/:slug", podcastHandler.GetSeries)

	api.GET("/gallery", galleryHandler.List)
	api.GET("/gallery/tags", galleryHandler.Tags)
	api.GET("/gallery/:id", galleryHandler.Get)

	api.GET("/events", eventHandler.List)
	api.GET("/events/:id", eventHandler.Get)

	api.GET("/feeds", ingestHandler.Sources)
	api.GET("/feeds/:source", ingestHandler.Snapshot)

	// Auth.
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	authed := auth.Group("", middleware.JWT(deps.Auth))
	authed.POST("/logout", authHandler.Logout)
	authed.PUT("/password", authHandler.ChangePassword)
	authed.GET("/me", authHandler.Me)

	// Admin surface. Editors manage content; exports, feeds and the audit
	// trail are admin-only.
	admin := api.Group("/admin", middleware.JWT(deps.Auth), middleware.RequireRoles(models.RoleAdmin, models.RoleEditor))

	admin.POST("/announcements", announcementHandler.Create)
	admin.PUT("/announcements/:id", announcementHandler.Update)
	admin.DELETE("/announcements/:id", announcementHandler.Delete)
	admin.POST("/announcements/bulk/active", announcementHandler.BulkActivate)
	admin.POST("/announcements/bulk/superfeatured", announcementHandler.BulkSuperfeature)
	admin.POST("/announcements/bulk/delete", announcementHandler.BulkDelete)

	admin.POST("/sermons", sermonHandler.Create)
	admin.PUT("/sermons/:id", sermonHandler.Update)
	admin.DELETE("/sermons/:id", sermonHandler.Delete)
	admin.POST("/sermons/bulk/archive", sermonHandler.BulkArchive)
	admin.POST("/sermons/bulk/delete", sermonHandler.BulkDelete)

	admin.POST("/podcasts/episodes", podcastHandler.CreateEpisode)
	admin.PUT("/podcasts/episodes/:id", podcastHandler.UpdateEpisode)
	admin.DELETE("/podcasts/episodes/:id", podcastHandler.DeleteEpisode)
	admin.POST("/podcasts/episodes/bulk/delete", podcastHandler.BulkDeleteEpisodes)

	admin.POST("/gallery", galleryHandler.Create)
	admin.PUT("/gallery/:id", galleryHandler.Update)
	admin.DELETE("/gallery/:id", galleryHandler.Delete)
	admin.POST("/gallery/bulk/delete", galleryHandler.BulkDelete)

	admin.POST("/events", eventHandler.Create)
	admin.PUT("/events/:id", eventHandler.Update)
	admin.DELETE("/events/:id", eventHandler.Delete)
	admin.POST("/events/bulk/active", eventHandler.BulkActivate)
	admin.POST("/events/bulk/delete", eventHandler.BulkDelete)

	adminOnly := admin.Group("", middleware.RequireRoles(models.RoleAdmin))
	adminOnly.GET("/stats", deps.Admin.Stats)
	adminOnly.GET("/metrics", deps.Admin.SystemMetrics)
	adminOnly.GET("/audit-logs", deps.Admin.AuditLogs)
	adminOnly.POST("/export/:entity", deps.Admin.Export)
	adminOnly.POST("/feeds/refresh", ingestHandler.RefreshAll)
	adminOnly.POST("/feeds/:source/refresh", middleware.Audit(deps.Users, models.AuditActionContentUpdate, "feeds"), ingestHandler.Refresh)
	adminOnly.POST("/feeds/:source/sync-sermons", middleware.Audit(deps.Users, models.AuditActionContentCreate, "sermons"), ingestHandler.SyncSermons)

	// Download validates its own signed token, so it stays outside the JWT
	// chain for use in plain anchor tags.
	api.GET("/admin/export/download", deps.Admin.Download)

	return r
}
