package app

import (
	"baitapvui_backend/internal/builder/snapshot"
	"baitapvui_backend/internal/config"
	"baitapvui_backend/internal/controller"
	"baitapvui_backend/internal/repository"
	"baitapvui_backend/internal/service"
	"baitapvui_backend/internal/util"
	"baitapvui_backend/pkg/database"
	"baitapvui_backend/pkg/logger"
	"baitapvui_backend/pkg/monitoring"
	"baitapvui_backend/pkg/security"
	"baitapvui_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services        *services
	tracer          *sdktrace.TracerProvider
	sweeper         *cron.Cron
	stopEviction    func()
	done            chan struct{}
	closeOnce       sync.Once
	configMu        sync.RWMutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	assignment *repository.AssignmentRepository
	question   *repository.QuestionRepository
	media      *repository.MediaRepository
}

type services struct {
	storage    *service.StorageService
	assignment *service.AssignmentService
	question   *service.QuestionService
	media      *service.MediaService
	builder    *service.BuilderService
}

type controllers struct {
	assignment *controller.AssignmentController
	question   *controller.QuestionController
	media      *controller.MediaController
	builder    *controller.BuilderController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configMu.Lock()
	defer a.configMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，依次执行已注册的回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.configMu.Lock()
	a.Config = cfg
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.configMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) defaultLanguage() string {
	a.configMu.RLock()
	defer a.configMu.RUnlock()
	return a.Config.I18n.DefaultLanguage
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		assignment: repository.NewAssignmentRepository(db),
		question:   repository.NewQuestionRepository(db),
		media:      repository.NewMediaRepository(db),
	}
}

func (a *App) snapshotStore(cfg *config.Config, rdb *redis.Client) snapshot.Store {
	if cfg.Builder.SnapshotStore == util.SnapshotStoreRedis && rdb != nil {
		return snapshot.NewRedisStore(rdb, cfg.Builder.SessionTTL())
	}
	logger.Log.Warn("Builder snapshots kept in memory", zap.String("snapshot_store", cfg.Builder.SnapshotStore))
	return snapshot.NewMemoryStore()
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.assignment = service.NewAssignmentService(repos.assignment)
	s.question = service.NewQuestionService(repos.assignment, repos.question)
	s.media = service.NewMediaService(repos.media, s.storage, cfg.Media, logger.Log.Named("media"))
	s.builder = service.NewBuilderService(cfg.Builder, repos.assignment, a.snapshotStore(cfg, rdb), logger.Log.Named("builder"))

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		assignment: controller.NewAssignmentController(s.assignment),
		question:   controller.NewQuestionController(s.question),
		media:      controller.NewMediaController(s.media),
		builder:    controller.NewBuilderController(s.builder),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if cfg.RateLimit.MaxRequests > 0 && window > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window, a.done))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerConfigCallbacks 可热更新的配置项
func (a *App) registerConfigCallbacks(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetMode(cfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.builder.SetDebounce(cfg.Builder.Debounce())
	})
}

func (a *App) startBackgroundTasks(s *services) {
	sweeper, err := s.media.StartSweeper(a.Config.Media.SweepCron)
	if err != nil {
		logger.Log.Error("Failed to schedule media sweep", zap.String("spec", a.Config.Media.SweepCron), zap.Error(err))
	} else {
		a.sweeper = sweeper
	}

	a.stopEviction = s.builder.StartEviction(time.Minute)
}

// New 组装路由与服务，数据库和 Redis 由调用方提供
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		done:   make(chan struct{}),
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)
	app.registerConfigCallbacks(services)

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// release 模式下仅在显式要求时迁移
	if cfg.Server.Mode != "release" || cfg.ForceMigrate || cfg.MigrateOnly {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	var rdb *redis.Client
	if cfg.Builder.SnapshotStore == util.SnapshotStoreRedis {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
			log.Fatalf("Failed to initialize redis: %v", err)
		}
	}

	// 监控初始化
	monitoring.Init()

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("baitapvui-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.startBackgroundTasks(app.services)

	return app
}

// Close 停止后台任务并 flush 编辑器会话，可重复调用
func (a *App) Close() {
	a.closeOnce.Do(a.shutdownBackground)
}

func (a *App) shutdownBackground() {
	if a.done != nil {
		close(a.done)
	}
	if a.stopEviction != nil {
		a.stopEviction()
	}
	if a.sweeper != nil {
		<-a.sweeper.Stop().Done()
	}
	if a.services != nil {
		// 把未写入的编辑写进快照
		a.services.builder.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.Close()
	log.Println("Server exiting")
}
