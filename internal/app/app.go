package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"learnhub_backend/internal/cache"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/controller"
	"learnhub_backend/internal/events"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"
	"learnhub_backend/internal/validator"
	"learnhub_backend/pkg/configwatcher"
	"learnhub_backend/pkg/database"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/monitoring"
	"learnhub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Events          events.Publisher
	tracer          *sdktrace.TracerProvider
	hub             *service.NotificationHub
	configCallbacks []func(*config.Config)

	// ctx bounds background work such as the rate limiter janitor.
	ctx    context.Context
	cancel context.CancelFunc
}

type repositories struct {
	user        *repository.UserRepository
	course      *repository.CourseRepository
	enrollment  *repository.EnrollmentRepository
	progress    *repository.ProgressRepository
	quiz        *repository.QuizRepository
	attempt     *repository.AttemptRepository
	certificate *repository.CertificateRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	user        *service.UserService
	course      *service.CourseService
	progress    *service.ProgressService
	quiz        *service.QuizService
	certificate *service.CertificateService
	export      *service.ExportService
	hub         *service.NotificationHub
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	course       *controller.CourseController
	progress     *controller.ProgressController
	quiz         *controller.QuizController
	certificate  *controller.CertificateController
	manage       *controller.ManageController
	report       *controller.ReportController
	admin        *controller.AdminController
	health       *controller.HealthController
	notification *controller.NotificationController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		course:      repository.NewCourseRepository(db),
		enrollment:  repository.NewEnrollmentRepository(db),
		progress:    repository.NewProgressRepository(db),
		quiz:        repository.NewQuizRepository(db),
		attempt:     repository.NewAttemptRepository(db),
		certificate: repository.NewCertificateRepository(db),
	}
}

// initServices falls back to an in-process lock and no cache when Redis is
// not configured, which is only safe for a single instance.
func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	var (
		locker       service.SubmissionLocker
		cacheService cache.CacheService
	)
	if a.Redis != nil {
		locker = service.NewRedisLocker(a.Redis, cfg.Learning.SubmissionLockTTL)
		cacheService = cache.NewRedisCache(a.Redis, logger.Log)
	} else {
		logger.Log.Warn("Redis not configured, using in-process submission lock and no cache")
		locker = service.NewLocalLocker()
		cacheService = cache.Noop{}
	}

	s := &services{}
	s.hub = service.NewNotificationHub(a.Redis, cfg.CORS.AllowedOrigins)
	publisher := service.NewNotifyingPublisher(a.Events, s.hub)
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.course = service.NewCourseService(repos.course, repos.enrollment, s.storage, filepath.Join(os.TempDir(), "learnhub"))
	s.progress = service.NewProgressService(repos.progress, repos.course, repos.enrollment)
	s.quiz = service.NewQuizService(repos.quiz, repos.attempt, repos.course, locker, cacheService, publisher, cfg.Learning)
	s.certificate = service.NewCertificateService(repos.certificate, repos.course, repos.quiz, repos.attempt, repos.progress,
		cacheService, publisher, cfg.Learning.CertificateCacheTTL)
	s.export = service.NewExportService(repos.quiz, repos.attempt, repos.certificate)
	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		course:       controller.NewCourseController(s.course),
		progress:     controller.NewProgressController(s.progress),
		quiz:         controller.NewQuizController(s.quiz),
		certificate:  controller.NewCertificateController(s.certificate),
		manage:       controller.NewManageController(s.course, s.quiz),
		report:       controller.NewReportController(s.export, s.certificate),
		admin:        controller.NewAdminController(s.user),
		health:       controller.NewHealthController(a.DB, a.Redis),
		notification: controller.NewNotificationController(s.hub),
	}
}

func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.Redis.Host == "" {
		return nil
	}
	rdb, err := database.InitRedis(context.Background(), &cfg.Redis)
	if err != nil {
		logger.Log.Warn("Failed to connect to Redis, continuing without it", zap.Error(err))
		return nil
	}
	return rdb
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		return nil, err
	}

	publisher, err := events.NewPublisher(cfg.Events, logger.Log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  connectRedis(cfg),
		Events: publisher,
		ctx:    ctx,
		cancel: cancel,
	}

	repos := app.initRepositories(db)
	svcs := app.initServices(repos, cfg)
	ctrls := app.initControllers(svcs)
	app.hub = svcs.hub
	go app.hub.Run(app.ctx)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.RegisterGinValidators()
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg, repos.user)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(logger.Reload)
	return app, nil
}

// Migrate creates or updates the schema.
func (a *App) Migrate() error {
	return database.Migrate(a.DB)
}

func (a *App) watchConfig() {
	if a.Config.File == "" {
		return
	}
	go func() {
		err := configwatcher.Watch(a.ctx, a.Config.File, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.watchConfig()

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		a.Close()
		return err
	}
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(ctx)
	a.Close()
	logger.Log.Info("Server exiting")
	return err
}

// Close releases background workers and connections.
func (a *App) Close() {
	a.hub.Stop()
	a.cancel()
	if err := a.Events.Close(); err != nil {
		logger.Log.Warn("Failed to close event publisher", zap.Error(err))
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Log.Sync()
}
