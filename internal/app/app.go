// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haierkeys/fast-note-ai-service/internal/dao"
	"github.com/haierkeys/fast-note-ai-service/internal/domain"
	"github.com/haierkeys/fast-note-ai-service/internal/importer"
	"github.com/haierkeys/fast-note-ai-service/internal/service"
	"github.com/haierkeys/fast-note-ai-service/pkg/ai"
	pkgapp "github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/storage"
	"github.com/haierkeys/fast-note-ai-service/pkg/workerpool"
	"github.com/haierkeys/fast-note-ai-service/pkg/writequeue"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// StartTime 容器创建时间，用于计算运行时长
	StartTime time.Time

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	NoteRepo      domain.NoteRepository
	UserRepo      domain.UserRepository
	ImportRunRepo domain.ImportRunRepository

	// Service 层
	NoteService    service.NoteService
	UserService    service.UserService
	GrammarService service.GrammarService
	ImportService  service.ImportService
	ExportService  service.ExportService

	// 基础设施组件
	TokenManager pkgapp.TokenManager
	Validator    *pkgapp.Validator
	// AI nil when no API key is configured
	AI *ai.Client
	// Storage nil when the export backend could not be created
	Storage storage.Storager

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	a.Dao = dao.New(db, context.Background(),
		dao.WithConfig(cfg.Database.DaoConfig(cfg.Server.RunMode)),
		dao.WithLogger(logger),
	)

	validator, err := pkgapp.NewValidator()
	if err != nil {
		return nil, err
	}
	a.Validator = validator

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    pkgapp.DefaultTokenIssuer,
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 初始化 Repository 层
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.UserRepo = dao.NewUserRepository(a.Dao)
	a.ImportRunRepo = dao.NewImportRunRepository(a.Dao)

	svcConfig := &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable: cfg.User.RegisterIsEnable,
		},
		Grammar: service.GrammarServiceConfig{
			Model: cfg.Gemini.GrammarModel,
		},
		Import: service.ImportServiceConfig{
			RunRetention: cfg.GetImportRunRetention(),
		},
	}

	a.initAI()
	a.initStorage()

	// 初始化 Service 层（依赖注入）
	a.NoteService = service.NewNoteService(a.NoteRepo, a.writeQueueMgr, logger)
	a.UserService = service.NewUserService(a.UserRepo, a.TokenManager, logger, svcConfig)

	// a nil *ai.Client must not reach the services as a non-nil interface
	var generator importer.Generator
	if a.AI != nil {
		generator = a.AI
	}
	a.GrammarService = service.NewGrammarService(generator, svcConfig, logger)
	a.ImportService = service.NewImportService(a.newPipeline(generator), a.workerPool, a.ImportRunRepo, a.NoteService, logger, svcConfig)
	a.ExportService = service.NewExportService(a.Storage, cfg.Export.Storage.Type, a.NoteService, a.UserService, logger)

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity),
		zap.Bool("aiEnabled", a.AI != nil),
		zap.Bool("storageEnabled", a.Storage != nil))

	return a, nil
}

func (a *App) initAI() {
	client, err := ai.New(context.Background(), ai.Config{
		APIKey:    a.config.Gemini.APIKey,
		BaseURL:   a.config.Gemini.BaseURL,
		RateLimit: a.config.Gemini.RateLimit,
		Burst:     a.config.Gemini.Burst,
	}, a.logger)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			a.logger.Warn("gemini api key is empty, grammar check and import are disabled",
				zap.String("env", EnvGeminiAPIKey))
		} else {
			a.logger.Error("gemini client init failed", zap.Error(err))
		}
		return
	}
	a.AI = client
}

func (a *App) initStorage() {
	store, err := storage.NewClient(&a.config.Export.Storage)
	if err != nil {
		a.logger.Warn("export storage unavailable", zap.String("type", a.config.Export.Storage.Type), zap.Error(err))
		return
	}
	a.Storage = store
}

// newPipeline nil when the generative service or the transcript source is missing
func (a *App) newPipeline(generator importer.Generator) *importer.Pipeline {
	if generator == nil || a.config.Transcript.BaseURL == "" {
		return nil
	}
	fetcher := importer.NewHTTPFetcher(importer.TranscriptConfig{
		BaseURL:      a.config.Transcript.BaseURL,
		APIKey:       a.config.Transcript.APIKey,
		APIKeyHeader: a.config.Transcript.APIKeyHeader,
	})
	requester := importer.NewRequester(generator, a.config.Gemini.Model, a.config.Importer.MaxTranscriptChars)
	return importer.New(fetcher, requester, importer.NewWriter(a.NoteService),
		importer.WithLogger(a.logger),
		importer.WithObserver(importer.MetricsObserver()),
	)
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SubmitTaskAsync 异步提交任务到 Worker Pool（不等待结果）
// 返回错误如果池已满或已关闭
func (a *App) SubmitTaskAsync(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.SubmitAsync(ctx, task)
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsReturnSuccess 是否返回成功响应
func (a *App) IsReturnSuccess() bool {
	return a.config.App.IsReturnSussess
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager（用于高级操作）
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue Manager -> Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Worker Pool（停止接受新任务，等待进行中的导入完成）
	if a.workerPool != nil {
		a.logger.Info("Shutting down worker pool...")
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
	}

	// 2. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}
	}

	// 3. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 4. 关闭数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors: %w", len(errs), errors.Join(errs...))
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
