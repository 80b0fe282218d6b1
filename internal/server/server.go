package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"anoa.com/realorai/internal/config"
	"anoa.com/realorai/internal/middleware"
	"anoa.com/realorai/internal/scheduler"
	"anoa.com/realorai/pkg/apperror"
	"anoa.com/realorai/pkg/logger"
	"anoa.com/realorai/pkg/ratelimiter"
	"anoa.com/realorai/pkg/storage"
	"anoa.com/realorai/pkg/validator"

	adminHttp "anoa.com/realorai/internal/modules/admin/delivery/http"
	adminService "anoa.com/realorai/internal/modules/admin/service"

	badgeHttp "anoa.com/realorai/internal/modules/badge/delivery/http"
	badgeRepo "anoa.com/realorai/internal/modules/badge/repository"
	badgeService "anoa.com/realorai/internal/modules/badge/service"

	categoryHttp "anoa.com/realorai/internal/modules/category/delivery/http"
	categoryRepo "anoa.com/realorai/internal/modules/category/repository"
	categoryService "anoa.com/realorai/internal/modules/category/service"

	commentHttp "anoa.com/realorai/internal/modules/comment/delivery/http"
	commentRepo "anoa.com/realorai/internal/modules/comment/repository"
	commentService "anoa.com/realorai/internal/modules/comment/service"

	contentHttp "anoa.com/realorai/internal/modules/content/delivery/http"
	contentRepo "anoa.com/realorai/internal/modules/content/repository"
	contentService "anoa.com/realorai/internal/modules/content/service"

	leaderboardHttp "anoa.com/realorai/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "anoa.com/realorai/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/realorai/internal/modules/leaderboard/service"

	notiHttp "anoa.com/realorai/internal/modules/notification/delivery/http"
	notifRepo "anoa.com/realorai/internal/modules/notification/repository"
	notifService "anoa.com/realorai/internal/modules/notification/service"

	profileHttp "anoa.com/realorai/internal/modules/profile/delivery/http"
	profileService "anoa.com/realorai/internal/modules/profile/service"

	reportHttp "anoa.com/realorai/internal/modules/report/delivery/http"
	reportRepo "anoa.com/realorai/internal/modules/report/repository"
	reportService "anoa.com/realorai/internal/modules/report/service"

	searchService "anoa.com/realorai/internal/modules/search/service"

	statHttp "anoa.com/realorai/internal/modules/stat/delivery/http"
	statService "anoa.com/realorai/internal/modules/stat/service"

	userHttp "anoa.com/realorai/internal/modules/user/delivery/http"
	userRepo "anoa.com/realorai/internal/modules/user/repository"
	userService "anoa.com/realorai/internal/modules/user/service"

	viewService "anoa.com/realorai/internal/modules/view/service"

	voteHttp "anoa.com/realorai/internal/modules/vote/delivery/http"
	voteRepo "anoa.com/realorai/internal/modules/vote/repository"
	voteService "anoa.com/realorai/internal/modules/vote/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	httpServer  *http.Server
	scheduler   *scheduler.Scheduler
	db          *gorm.DB
	redisClient *redis.Client
}

// NewServer wires every module. redisClient and meiliClient may be nil; the
// features behind them then degrade (no rate limiting, no websocket fan-out,
// database search).
func NewServer(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	meiliClient meilisearch.ServiceManager,
	mediaStorage storage.MediaStorage,
) (*Server, error) {
	validator.RegisterGin()

	userRepository := userRepo.NewUserRepository(db)
	followRepository := userRepo.NewFollowRepository(db)
	cooldown := ratelimiter.NewCooldown(redisClient)

	var searchSvc searchService.SearchService
	if meiliClient != nil {
		searchSvc = searchService.NewMeiliSearchService(meiliClient)
	}

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, cfg.Jobs.NotificationRetention)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins)

	authSvc := userService.NewAuthService(userRepository, cfg.Auth)
	authHandler := userHttp.NewAuthHandler(authSvc)

	followSvc := userService.NewFollowService(followRepository, userRepository, notificationSvc)
	followHandler := userHttp.NewFollowHandler(followSvc)

	leaderboardRepository := leaderboardRepo.NewLeaderboardRepository(db)
	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepository, notificationSvc)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	badgeRepository := badgeRepo.NewBadgeRepository(db)
	badgeSvc := badgeService.NewBadgeService(badgeRepository, userRepository, leaderboardSvc, notificationSvc)
	badgeHandler := badgeHttp.NewBadgeHandler(badgeSvc)

	categoryRepository := categoryRepo.NewCategoryRepository(db)
	categorySvc := categoryService.NewCategoryService(categoryRepository)
	categoryHandler := categoryHttp.NewCategoryHandler(categorySvc)

	contentRepository := contentRepo.NewContentRepository(db)
	mediaRepository := contentRepo.NewMediaRepository(db)
	contentSvc := contentService.NewContentService(
		contentRepository, mediaRepository, userRepository, categorySvc, badgeSvc, searchSvc, notificationSvc,
		mediaStorage, cooldown,
		contentService.Settings{
			AutoApprove:    cfg.Content.AutoApprove,
			MaxTags:        cfg.Content.MaxTags,
			MaxTagLen:      cfg.Content.MaxTagLen,
			MaxUploadBytes: cfg.Media.MaxUploadBytes,
			UploadCooldown: cfg.Limits.UploadCooldown,
			RecycleAfter:   cfg.Jobs.RecycleAfter,
			OrphanAge:      cfg.Jobs.OrphanAge,
		},
	)
	viewSvc := viewService.NewViewService(redisClient, contentRepository, cfg.Jobs.ViewDedupWindow)
	contentHandler := contentHttp.NewContentHandler(contentSvc, viewSvc)

	voteRepository := voteRepo.NewVoteRepository(db)
	voteSvc := voteService.NewVoteService(voteRepository, contentRepository)
	voteHandler := voteHttp.NewVoteHandler(voteSvc)

	commentRepository := commentRepo.NewCommentRepository(db)
	commentSvc := commentService.NewCommentService(commentRepository, contentRepository, notificationSvc, cooldown, cfg.Limits.CommentCooldown)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	reportRepository := reportRepo.NewReportRepository(db)
	reportSvc := reportService.NewReportService(reportRepository, contentRepository, contentSvc)
	reportHandler := reportHttp.NewReportHandler(reportSvc)

	profileSvc := profileService.NewProfileService(userRepository, followRepository, badgeSvc, leaderboardSvc, mediaStorage)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	statSvc := statService.NewStatService(userRepository, contentRepository, voteRepository, reportRepository)
	statHandler := statHttp.NewStatHandler(statSvc)

	adminSvc := adminService.NewAdminService(contentRepository, contentSvc, userRepository, leaderboardSvc, badgeSvc, notificationSvc, cfg.Scoring.CorrectVoteReward)
	adminHandler := adminHttp.NewAdminHandler(adminSvc, contentSvc)

	jobs := scheduler.NewScheduler()
	if err := jobs.Register(scheduler.NewRecycleJob(contentSvc, cfg.Jobs.RecycleSchedule)); err != nil {
		return nil, err
	}
	if err := jobs.Register(scheduler.NewMediaCleanupJob(contentSvc, cfg.Jobs.CleanupSchedule)); err != nil {
		return nil, err
	}
	if err := jobs.Register(scheduler.NewViewSyncJob(viewSvc, cfg.Jobs.ViewSyncSchedule)); err != nil {
		return nil, err
	}
	if err := jobs.Register(scheduler.NewNotificationPruneJob(notificationSvc, cfg.Jobs.NotificationPruneSchedule)); err != nil {
		return nil, err
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(recovery())
	router.Use(middleware.RequestLogger("/health", "/api/notifications/ws"))
	router.Use(middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
		MaxRequests: cfg.Limits.GlobalRequests,
		Window:      cfg.Limits.GlobalWindow,
	}).Middleware())

	if cfg.Media.StorageMode == "" || cfg.Media.StorageMode == storage.ModeLocal {
		router.Static(cfg.Media.PublicPath, cfg.Media.UploadDir)
	}

	router.GET("/health", healthHandler(db, redisClient))

	authMiddleware := middleware.NewAuthMiddleware(userRepository, cfg.Auth.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}

	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/content", contentHandler.GetAll)
		public.GET("/content/search", contentHandler.Search)
		public.GET("/content/:id", contentHandler.GetByID)
		public.GET("/content/:id/tally", contentHandler.GetTally)
		public.GET("/content/:id/comments", commentHandler.GetComments)

		public.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		public.GET("/badges", badgeHandler.ListBadges)
		public.GET("/categories", categoryHandler.GetAllCategories)
		public.GET("/stats", statHandler.GetPublicStats)
		public.GET("/users/count", statHandler.GetTotalUsers)

		public.GET("/profile/:username", profileHandler.GetProfileByUsername)
		public.GET("/users/:id/followers", followHandler.Followers)
		public.GET("/users/:id/following", followHandler.Following)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.DELETE("/auth/me", authHandler.DeleteMe)

		// Content routes
		protected.POST("/content", contentHandler.Create)
		protected.GET("/content/my", contentHandler.GetMine)
		protected.PUT("/content/:id", contentHandler.Update)
		protected.DELETE("/content/:id", contentHandler.Delete)
		protected.POST("/content/:id/comments", commentHandler.CreateComment)

		// Vote routes
		protected.POST("/votes", voteHandler.SubmitVote)
		protected.GET("/votes/my", voteHandler.GetMyVotes)

		// Comment routes
		protected.DELETE("/comments/:id", commentHandler.DeleteComment)
		protected.POST("/comments/:id/like", commentHandler.ToggleLike)

		protected.POST("/reports", reportHandler.CreateReport)

		// Profile routes
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		protected.POST("/users/:id/follow", followHandler.Follow)
		protected.DELETE("/users/:id/follow", followHandler.Unfollow)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.PATCH("/content/:id/reveal", adminHandler.RevealAnswer)
			adminGroup.PATCH("/content/:id/status", adminHandler.SetContentStatus)
			adminGroup.GET("/content/pending", adminHandler.ListPendingContent)

			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.PATCH("/user/:id/points", adminHandler.SetUserPoints)
			adminGroup.PATCH("/user/:id/active", adminHandler.SetUserActive)
			adminGroup.PATCH("/user/:id/role", adminHandler.SetUserRole)
			adminGroup.GET("/ranking", adminHandler.GetRanking)

			adminGroup.GET("/reports", reportHandler.ListReports)
			adminGroup.PATCH("/reports/:id", reportHandler.ResolveReport)

			adminGroup.GET("/badges", badgeHandler.ListAllBadges)
			adminGroup.POST("/badges", badgeHandler.CreateBadge)
			adminGroup.PUT("/badges/:id", badgeHandler.UpdateBadge)

			adminGroup.POST("/categories", categoryHandler.CreateCategory)
			adminGroup.PUT("/categories/:id", categoryHandler.UpdateCategory)
			adminGroup.DELETE("/categories/:id", categoryHandler.DeleteCategory)

			adminGroup.GET("/stats", statHandler.GetPlatformStats)
		}
	}

	return &Server{
		engine: router,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		scheduler:   jobs,
		db:          db,
		redisClient: redisClient,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the background jobs and serves until Shutdown is called.
func (s *Server) Run() error {
	s.scheduler.Start()
	logger.Log.Info("http server listening", zap.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.scheduler.Stop(ctx)
	return s.httpServer.Shutdown(ctx)
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": apperror.ErrInternal.Error(),
			"code":  apperror.CodeInternal,
		})
	})
}

func healthHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "ok", "database": "ok"}
		code := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["status"], status["database"] = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			status["redis"] = "ok"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				status["redis"] = "unreachable"
			}
		}

		c.JSON(code, status)
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
