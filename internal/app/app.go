package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/config"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/controller"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/repository"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/service"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/database"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/logger"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/monitoring"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/security"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user     *repository.UserRepository
	course   *repository.CourseRepository
	skill    *repository.SkillRepository
	task     *repository.TaskRepository
	progress *repository.ProgressRepository
	badge    *repository.BadgeRepository
	group    *repository.GroupRepository
}

type services struct {
	storage  *service.StorageService
	mail     *service.MailService
	auth     *service.AuthService
	user     *service.UserService
	catalog  *service.CatalogService
	badge    *service.BadgeService
	progress *service.ProgressService
	group    *service.GroupService
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	course   *controller.CourseController
	progress *controller.ProgressController
	badge    *controller.BadgeController
	group    *controller.GroupController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		course:   repository.NewCourseRepository(db),
		skill:    repository.NewSkillRepository(db),
		task:     repository.NewTaskRepository(db),
		progress: repository.NewProgressRepository(db),
		badge:    repository.NewBadgeRepository(db),
		group:    repository.NewGroupRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.mail = service.NewMailService(cfg)
	s.auth = service.NewAuthService(repos.user, s.mail, rdb, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.catalog = service.NewCatalogService(repos.course, repos.skill, repos.task, repos.progress, db)
	s.badge = service.NewBadgeService(repos.badge, repos.progress)
	s.progress = service.NewProgressService(repos.progress, repos.course, repos.task, s.badge, s.storage, cfg, db)
	s.group = service.NewGroupService(repos.group, repos.user, s.storage, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		user:     controller.NewUserController(s.user),
		course:   controller.NewCourseController(s.catalog),
		progress: controller.NewProgressController(s.progress),
		badge:    controller.NewBadgeController(s.badge),
		group:    controller.NewGroupController(s.group),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.MigrateOnly {
		logger.Log.Info("Migration finished, exiting")
		os.Exit(0)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("ping-gamify", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
