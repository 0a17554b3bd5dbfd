package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Archive  ArchiveConfig
	Exports  ExportsConfig
	Ingest   IngestConfig
	Ports    PortsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ArchiveConfig locates the year-keyed sermon archive file and tunes the
// historical cutoff applied to content listings.
type ArchiveConfig struct {
	SermonsFile string
	CutoffDays  int
}

// ExportsConfig controls generated report storage and signed download links.
type ExportsConfig struct {
	Enabled         bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// IngestConfig carries external feed locations and refresh behaviour.
type IngestConfig struct {
	Enabled             bool
	NewsletterFeedURL   string
	YouTubeChannelID    string
	EventsICSURL        string
	PodcastRSSURL       string
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyShowID       string
	FetchTimeout        time.Duration
	SnapshotTTL         time.Duration
	RefreshInterval     time.Duration
	Workers             int
}

// PortsConfig tunes the startup port probe used when PORT=0.
type PortsConfig struct {
	Preferred   []int
	MaxAttempts int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// A missing .env surfaces as *fs.PathError, not ConfigFileNotFoundError,
	// because the file is named explicitly. Env-var-only deployments have no
	// .env at all, so both cases fall back to defaults and the environment.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Archive = ArchiveConfig{
		SermonsFile: v.GetString("SERMONS_FILE"),
		CutoffDays:  v.GetInt("ARCHIVE_CUTOFF_DAYS"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:         v.GetBool("ENABLE_EXPORTS"),
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
	}

	cfg.Ingest = IngestConfig{
		Enabled:             v.GetBool("ENABLE_INGEST"),
		NewsletterFeedURL:   v.GetString("NEWSLETTER_FEED_URL"),
		YouTubeChannelID:    v.GetString("YOUTUBE_CHANNEL_ID"),
		EventsICSURL:        v.GetString("EVENTS_ICS_URL"),
		PodcastRSSURL:       v.GetString("PODCAST_RSS_URL"),
		SpotifyClientID:     v.GetString("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: v.GetString("SPOTIFY_CLIENT_SECRET"),
		SpotifyShowID:       v.GetString("SPOTIFY_SHOW_ID"),
		FetchTimeout:        parseDuration(v.GetString("INGEST_FETCH_TIMEOUT"), 10*time.Second),
		SnapshotTTL:         parseDuration(v.GetString("INGEST_SNAPSHOT_TTL"), 15*time.Minute),
		RefreshInterval:     parseDuration(v.GetString("INGEST_REFRESH_INTERVAL"), time.Hour),
		Workers:             v.GetInt("INGEST_WORKERS"),
	}

	cfg.Ports = PortsConfig{
		Preferred:   splitPorts(v.GetString("PREFERRED_PORTS")),
		MaxAttempts: v.GetInt("PORT_MAX_ATTEMPTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cpc_newhaven")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SERMONS_FILE", "./data/sermons.json")
	v.SetDefault("ARCHIVE_CUTOFF_DAYS", 90)

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")

	v.SetDefault("ENABLE_INGEST", false)
	v.SetDefault("NEWSLETTER_FEED_URL", "")
	v.SetDefault("YOUTUBE_CHANNEL_ID", "")
	v.SetDefault("EVENTS_ICS_URL", "")
	v.SetDefault("PODCAST_RSS_URL", "")
	v.SetDefault("SPOTIFY_CLIENT_ID", "")
	v.SetDefault("SPOTIFY_CLIENT_SECRET", "")
	v.SetDefault("SPOTIFY_SHOW_ID", "")
	v.SetDefault("INGEST_FETCH_TIMEOUT", "10s")
	v.SetDefault("INGEST_SNAPSHOT_TTL", "15m")
	v.SetDefault("INGEST_REFRESH_INTERVAL", "1h")
	v.SetDefault("INGEST_WORKERS", 2)

	v.SetDefault("PREFERRED_PORTS", "8080,8000,5000,5001,3000")
	v.SetDefault("PORT_MAX_ATTEMPTS", 20)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func splitPorts(raw string) []int {
	var ports []int
	for _, part := range splitAndTrim(raw) {
		if n, err := strconv.Atoi(part); err == nil && n > 0 && n < 65536 {
			ports = append(ports, n)
		}
	}
	return ports
}
