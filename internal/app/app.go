package app

import (
	"context"
	"grader_web/internal/config"
	"grader_web/internal/controller"
	"grader_web/internal/grading"
	"grader_web/internal/middleware"
	"grader_web/internal/repository"
	"grader_web/internal/service"
	"grader_web/internal/util"
	"grader_web/pkg/database"
	"grader_web/pkg/logger"
	"grader_web/pkg/monitoring"
	"grader_web/pkg/security"
	"grader_web/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services       *services
	tracerProvider *sdktrace.TracerProvider

	mu              sync.Mutex
	configCallbacks []func(*config.Config)

	stopBackground context.CancelFunc
}

type repositories struct {
	gradeExport *repository.GradeExportRepository
}

type services struct {
	backend    service.BackendClient
	storage    *service.StorageService
	sessions   service.SessionStore
	memory     *service.MemorySessionStore
	export     *service.ExportService
	assignment *service.AssignmentService
	grading    *service.GradingService
}

type controllers struct {
	assignment *controller.AssignmentController
	grading    *controller.GradingController
	export     *controller.ExportController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 配置文件变化后由 configwatcher 调用
func (a *App) ReloadConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func paletteFromConfig(cfg *config.Config) grading.Palette {
	return grading.Palette{
		Colors:  cfg.Grading.Palette,
		Default: cfg.Grading.DefaultColor,
	}
}

// 数据库未启用时 db 为 nil，此时没有导出历史
func (a *App) initRepositories(db *gorm.DB) *repositories {
	repos := &repositories{}
	if db != nil {
		repos.gradeExport = repository.NewGradeExportRepository(db)
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config, backend service.BackendClient, rdb *redis.Client) *services {
	s := &services{backend: backend}

	s.storage = service.NewStorageService(cfg)

	if cfg.Session.Store == util.SessionStoreRedis && rdb != nil {
		s.sessions = service.NewRedisSessionStore(rdb, cfg.Session.ExpireTime)
	} else {
		s.memory = service.NewMemorySessionStore(cfg.Session.ExpireTime)
		s.sessions = s.memory
	}

	var archive service.StorageProvider
	if cfg.Export.Archive {
		archive = s.storage
	}
	var history service.GradeExportStore
	if repos.gradeExport != nil {
		history = repos.gradeExport
	}
	s.export = service.NewExportService(archive, history)

	s.assignment = service.NewAssignmentService(backend, cfg.Upload)
	s.grading = service.NewGradingService(backend, s.sessions, s.export, paletteFromConfig(cfg), cfg.Grading.SimilarityThreshold)

	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.grading.UpdateSettings(paletteFromConfig(newCfg), newCfg.Grading.SimilarityThreshold)
	})

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	var local *service.LocalStorageProvider
	if cfg.Export.Archive {
		local, _ = s.storage.Local()
	}
	return &controllers{
		assignment: controller.NewAssignmentController(s.assignment),
		grading:    controller.NewGradingController(s.grading),
		export:     controller.NewExportController(s.export, local),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) loadTemplates(router *gin.Engine, cfg *config.Config) {
	router.SetFuncMap(controller.TemplateFuncs)
	router.LoadHTMLGlob(filepath.Join(cfg.Server.TemplatesDir, "*.html"))
}

// startBackgroundTasks 内存会话存储需要定期清理过期会话
func (a *App) startBackgroundTasks(s *services) {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopBackground = cancel

	if s.memory == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.memory.Sweep(); n > 0 {
					logger.Log.Debug("Expired grading sessions removed", zap.Int("count", n))
				}
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	backend := service.NewHTTPBackendClient(cfg.Backend)
	return newApp(cfg, backend)
}

func newApp(cfg *config.Config, backend service.BackendClient) *App {
	gin.SetMode(cfg.Server.Mode)

	if cfg.Session.Secret == "" {
		// 仅 debug 模式允许，重启后已有会话失效
		cfg.Session.Secret = uuid.New().String() + uuid.New().String()
		logger.Log.Warn("No session secret configured, using a random one")
	}

	var db *gorm.DB
	if cfg.Database.Enabled {
		var err error
		db, err = database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Session.Store == util.SessionStoreRedis {
		var err error
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, backend, rdb)
	app.services = services
	controllers := app.initControllers(services, cfg, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("grader-web", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.loadTemplates(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close 停止后台任务并释放外部连接
func (a *App) Close(ctx context.Context) {
	if a.stopBackground != nil {
		a.stopBackground()
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

// sessionMiddleware 页面和 API 共用的评分者识别
func (a *App) sessionMiddleware() gin.HandlerFunc {
	return middleware.GraderSession(a.Config.Session)
}
