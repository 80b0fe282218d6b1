package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	DB       DBConfig
	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	Auth    AuthConfig
	Media   MediaConfig
	Content ContentConfig
	Scoring ScoringConfig
	Limits  LimitConfig
	Jobs    JobConfig
	Seed    SeedConfig
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
	Debug    bool
}

type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type MediaConfig struct {
	StorageMode      string // local, cloudinary, inline
	UploadDir        string
	PublicPath       string
	MaxUploadBytes   int64
	CloudinaryURL    string
	CloudinaryCloud  string
	CloudinaryFolder string
}

// ContentConfig replaces the old in-process moderation toggles.
type ContentConfig struct {
	AutoApprove bool
	MaxTags     int
	MaxTagLen   int
}

type ScoringConfig struct {
	CorrectVoteReward int
}

type LimitConfig struct {
	GlobalRequests  int
	GlobalWindow    time.Duration
	UploadCooldown  time.Duration
	CommentCooldown time.Duration
}

type JobConfig struct {
	RecycleSchedule string
	RecycleAfter    time.Duration
	CleanupSchedule string
	OrphanAge       time.Duration

	// ViewSyncSchedule flushes buffered view counts into the database.
	ViewSyncSchedule string
	ViewDedupWindow  time.Duration

	NotificationPruneSchedule string
	NotificationRetention     time.Duration
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASS"),
			Name:     getEnv("DB_NAME", "realorai"),
			Port:     getEnv("DB_PORT", "5432"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", "change-me"),
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},

		Media: MediaConfig{
			StorageMode:      getEnv("MEDIA_STORAGE", "local"),
			UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
			PublicPath:       getEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
			CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
			CloudinaryCloud:  os.Getenv("CLOUDINARY_CLOUD_NAME"),
			CloudinaryFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "realorai"),
		},

		Content: ContentConfig{
			MaxTags:   10,
			MaxTagLen: 20,
		},

		Jobs: JobConfig{
			RecycleSchedule:  getEnv("RECYCLE_SCHEDULE", "@every 1h"),
			CleanupSchedule:  getEnv("MEDIA_CLEANUP_SCHEDULE", "@every 12h"),
			ViewSyncSchedule: getEnv("VIEW_SYNC_SCHEDULE", "@every 1m"),

			NotificationPruneSchedule: getEnv("NOTIFICATION_PRUNE_SCHEDULE", "@daily"),
		},

		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@realorai.local"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		},
	}

	var err error
	if cfg.DB.Debug, err = parseBool(getEnv("DB_DEBUG", "false")); err != nil {
		return nil, fmt.Errorf("invalid DB_DEBUG: %w", err)
	}
	if cfg.Auth.TokenTTL, err = time.ParseDuration(getEnv("JWT_TTL", "2h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Media.MaxUploadBytes, err = strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "52428800"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}
	if cfg.Content.AutoApprove, err = parseBool(getEnv("AUTO_APPROVE_CONTENT", "false")); err != nil {
		return nil, fmt.Errorf("invalid AUTO_APPROVE_CONTENT: %w", err)
	}
	if cfg.Scoring.CorrectVoteReward, err = strconv.Atoi(getEnv("CORRECT_VOTE_REWARD", "10")); err != nil {
		return nil, fmt.Errorf("invalid CORRECT_VOTE_REWARD: %w", err)
	}
	if cfg.Limits.GlobalRequests, err = strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "120")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}
	if cfg.Limits.GlobalWindow, err = time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	if cfg.Limits.UploadCooldown, err = time.ParseDuration(getEnv("RATE_LIMIT_UPLOAD", "30s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_UPLOAD: %w", err)
	}
	if cfg.Limits.CommentCooldown, err = time.ParseDuration(getEnv("RATE_LIMIT_COMMENT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_COMMENT: %w", err)
	}
	if cfg.Jobs.RecycleAfter, err = time.ParseDuration(getEnv("RECYCLE_AFTER", "720h")); err != nil {
		return nil, fmt.Errorf("invalid RECYCLE_AFTER: %w", err)
	}
	if cfg.Jobs.OrphanAge, err = time.ParseDuration(getEnv("MEDIA_ORPHAN_AGE", "24h")); err != nil {
		return nil, fmt.Errorf("invalid MEDIA_ORPHAN_AGE: %w", err)
	}
	if cfg.Jobs.ViewDedupWindow, err = time.ParseDuration(getEnv("VIEW_DEDUP_WINDOW", "1h")); err != nil {
		return nil, fmt.Errorf("invalid VIEW_DEDUP_WINDOW: %w", err)
	}
	if cfg.Jobs.NotificationRetention, err = time.ParseDuration(getEnv("NOTIFICATION_RETENTION", "720h")); err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_RETENTION: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
