package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/raptorhall/tutoring-api/api/swagger"
	"github.com/raptorhall/tutoring-api/internal/calendar"
	"github.com/raptorhall/tutoring-api/internal/handler"
	"github.com/raptorhall/tutoring-api/internal/middleware"
	"github.com/raptorhall/tutoring-api/internal/repository"
	"github.com/raptorhall/tutoring-api/internal/resolver"
	"github.com/raptorhall/tutoring-api/internal/service"
	"github.com/raptorhall/tutoring-api/pkg/cache"
	"github.com/raptorhall/tutoring-api/pkg/config"
	"github.com/raptorhall/tutoring-api/pkg/database"
	"github.com/raptorhall/tutoring-api/pkg/logger"
	corsmiddleware "github.com/raptorhall/tutoring-api/pkg/middleware/cors"
	reqidmiddleware "github.com/raptorhall/tutoring-api/pkg/middleware/requestid"
)

// @title Tutoring Priority API
// @version 1.0.0
// @description Priority-based tutoring assignment and conflict resolution
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
		// The engine runs without Redis; caches degrade to misses.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	bookingRepo := repository.NewBookingRepository(db)
	sponsorRepo := repository.NewSponsorRepository(db)
	learnerRepo := repository.NewLearnerRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	rule := calendar.New(calendar.DefaultSchedule())

	authSvc := service.NewAuthService(sponsorRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	assignmentSvc := service.NewAssignmentService(
		bookingRepo, sponsorRepo, learnerRepo,
		rule, resolver.New(rule),
		cacheRepo, metricsSvc, validate, logr,
		cfg.Tutoring.PriorityCacheTTL,
	)
	directorySvc := service.NewDirectoryService(sponsorRepo, learnerRepo, logr)
	rosterSvc := service.NewRosterService(bookingRepo, cacheRepo, metricsSvc, logr, cfg.Tutoring.RosterCacheTTL)

	authHandler := handler.NewAuthHandler(authSvc)
	tutoringHandler := handler.NewTutoringHandler(assignmentSvc)
	directoryHandler := handler.NewDirectoryHandler(directorySvc, assignmentSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)

	tutoring := api.Group("/tutoring")
	tutoring.GET("", tutoringHandler.List)
	tutoring.GET("/priority/:date", tutoringHandler.Priority)
	tutoring.GET("/:id", tutoringHandler.Get)
	tutoring.POST("", middleware.JWT(authSvc), tutoringHandler.Submit)
	tutoring.PUT("/cancel/:id", middleware.JWT(authSvc), tutoringHandler.Cancel)

	api.GET("/sponsors", directoryHandler.ListSponsors)
	api.GET("/sponsors/:id", directoryHandler.GetSponsor)
	api.GET("/learners", directoryHandler.ListLearners)
	api.GET("/learners/:id", directoryHandler.GetLearner)
	api.GET("/learners/:id/bookings", directoryHandler.LearnerBookings)

	roster := api.Group("/roster", middleware.JWT(authSvc))
	roster.GET("/:date", rosterHandler.Daily)
	if cfg.Tutoring.ExportEnabled {
		roster.GET("/:date/export", rosterHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
