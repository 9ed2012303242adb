package app

import (
	"context"
	"formation_backend/internal/config"
	"formation_backend/internal/controller"
	"formation_backend/internal/repository"
	"formation_backend/internal/service"
	"formation_backend/pkg/configwatcher"
	"formation_backend/pkg/database"
	"formation_backend/pkg/logger"
	"formation_backend/pkg/monitoring"
	"formation_backend/pkg/security"
	"formation_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user        *repository.UserRepository
	universe    *repository.UniverseRepository
	formation   *repository.FormationRepository
	lesson      *repository.LessonRepository
	progress    *repository.ProgressRepository
	quiz        *repository.QuizRepository
	quizAttempt *repository.QuizAttemptRepository
}

type services struct {
	auth      *service.AuthService
	storage   service.Storage
	content   *service.ContentService
	progress  *service.ProgressService
	quiz      *service.QuizService
	formation *service.FormationService
}

type controllers struct {
	auth      *controller.AuthController
	formation *controller.FormationController
	content   *controller.ContentController
	progress  *controller.ProgressController
	quiz      *controller.QuizController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		universe:    repository.NewUniverseRepository(db),
		formation:   repository.NewFormationRepository(db),
		lesson:      repository.NewLessonRepository(db),
		progress:    repository.NewProgressRepository(db),
		quiz:        repository.NewQuizRepository(db),
		quizAttempt: repository.NewQuizAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorage(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.auth = service.NewAuthService(repos.user, cfg)
	s.content = service.NewContentService(repos.lesson, s.storage)
	s.progress = service.NewProgressService(repos.progress, repos.lesson, rdb, cfg)
	s.quiz = service.NewQuizService(repos.quiz, repos.quizAttempt)
	s.formation = service.NewFormationService(repos.universe, repos.formation, repos.lesson, s.progress, s.quiz)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		formation: controller.NewFormationController(s.formation),
		content:   controller.NewContentController(s.content),
		progress:  controller.NewProgressController(s.progress),
		quiz:      controller.NewQuizController(s.quiz),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		// The progress observation endpoint alone fires every ~2s per
		// open lesson, so keep headroom.
		maxRequests = 10000
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

func (a *App) startBackgroundTasks(s *services) {
	s.progress.Run()

	// Sweep timed quiz attempts whose deadline passed while no client
	// was polling them.
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if err := s.quiz.ProcessExpiredAttempts(); err != nil {
				logger.Log.Error("expired attempt sweep failed", zap.Error(err))
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
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
	services, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("formation-portal", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	// Hot-reload the config file so a secret rotation does not need a
	// restart. Only scalar fields picked up through the shared pointer
	// (JWT secret, flush tuning) change; middleware wiring does not.
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		if updated, ok := newCfg.(*config.Config); ok {
			*app.Config = *updated
			logger.Log.Info("configuration reloaded")
		}
	})

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

	// Final progress flush: the write-back cache must not lose the
	// last debounce window.
	if a.services != nil && a.services.progress != nil {
		a.services.progress.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
