package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/realorai/internal/bootstrap"
	"anoa.com/realorai/internal/config"
	"anoa.com/realorai/internal/server"
	"anoa.com/realorai/pkg/database"
	"anoa.com/realorai/pkg/logger"
	"anoa.com/realorai/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.IsDevelopment()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Connect(database.Options{
		Host:     cfg.DB.Host,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Name:     cfg.DB.Name,
		Port:     cfg.DB.Port,
		SSLMode:  cfg.DB.SSLMode,
		Debug:    cfg.DB.Debug,
	})
	if err != nil {
		logger.Log.Fatal("failed to connect database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Log.Warn("failed to close database", zap.Error(err))
		}
	}()

	if err := bootstrap.Migrate(db); err != nil {
		logger.Log.Fatal("migration failed", zap.Error(err))
	}
	if err := bootstrap.Seed(db, cfg); err != nil {
		logger.Log.Fatal("seeding failed", zap.Error(err))
	}

	redisClient := connectRedis(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		meiliClient = meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		if _, err := meiliClient.Health(); err != nil {
			logger.Log.Warn("meilisearch unreachable, falling back to database search", zap.Error(err))
			meiliClient = nil
		}
	}

	mediaStorage, err := storage.New(storage.Options{
		Mode:             cfg.Media.StorageMode,
		LocalDir:         cfg.Media.UploadDir,
		PublicPath:       cfg.Media.PublicPath,
		CloudinaryURL:    cfg.Media.CloudinaryURL,
		CloudinaryCloud:  cfg.Media.CloudinaryCloud,
		CloudinaryFolder: cfg.Media.CloudinaryFolder,
	})
	if err != nil {
		logger.Log.Fatal("failed to initialize media storage", zap.Error(err))
	}

	srv, err := server.NewServer(cfg, db, redisClient, meiliClient, mediaStorage)
	if err != nil {
		logger.Log.Fatal("failed to build server", zap.Error(err))
	}

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("server exited with error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; rate
// limiting, cooldowns and live notifications are then disabled.
func connectRedis(url string) *redis.Client {
	if url == "" {
		logger.Log.Warn("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Log.Warn("invalid REDIS_URL, running without redis", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.Warn("redis unreachable, running without redis", zap.Error(err))
		_ = client.Close()
		return nil
	}

	return client
}
