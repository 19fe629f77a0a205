package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/repaso-app/repaso-api/api/swagger"
	"github.com/repaso-app/repaso-api/internal/handler"
	"github.com/repaso-app/repaso-api/internal/middleware"
	"github.com/repaso-app/repaso-api/internal/models"
	"github.com/repaso-app/repaso-api/internal/repository"
	"github.com/repaso-app/repaso-api/internal/service"
	"github.com/repaso-app/repaso-api/pkg/cache"
	"github.com/repaso-app/repaso-api/pkg/config"
	"github.com/repaso-app/repaso-api/pkg/database"
	"github.com/repaso-app/repaso-api/pkg/export"
	"github.com/repaso-app/repaso-api/pkg/logger"
	corsmiddleware "github.com/repaso-app/repaso-api/pkg/middleware/cors"
	reqidmiddleware "github.com/repaso-app/repaso-api/pkg/middleware/requestid"
)

// @title Repaso API
// @version 1.0.0
// @description Flashcard backend: cards, per-user archive state, teacher class rosters
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

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, cache disabled", "error", err)
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	userRepo := repository.NewUserRepository(db)
	cardRepo := repository.NewCardRepository(db)
	rosterRepo := repository.NewRosterRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	cardSvc := service.NewCardService(cardRepo, cacheSvc, validate, logr)
	rosterSvc := service.NewRosterService(rosterRepo, cacheSvc, validate, logr)
	exportSvc := service.NewExportService(cardRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	authHandler := handler.NewAuthHandler(authSvc)
	cardHandler := handler.NewCardHandler(cardSvc, exportSvc)
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
		var one int
		if err := db.GetContext(c.Request.Context(), &one, "SELECT 1"); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "connected"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	authed := api.Group("", middleware.JWT(authSvc))

	cards := authed.Group("/cards")
	cards.GET("", cardHandler.List)
	cards.POST("", cardHandler.Create)
	cards.PUT("/archive", cardHandler.BatchToggleArchive)
	cards.PUT("/:id", cardHandler.Update)
	cards.PUT("/:id/archive", cardHandler.ToggleArchive)
	if cfg.Export.Enabled {
		cards.GET("/export", middleware.RequireRoles(models.RoleTeacher), cardHandler.Export)
	}

	teacher := authed.Group("", middleware.RequireRoles(models.RoleTeacher))
	teacher.GET("/classes", rosterHandler.ListClasses)
	teacher.GET("/classes/:name/students", rosterHandler.ListStudents)
	teacher.POST("/classes/:name/students", rosterHandler.AssignStudents)
	teacher.DELETE("/classes/students/:id", rosterHandler.RemoveStudent)
	teacher.GET("/students/search", rosterHandler.SearchStudents)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
