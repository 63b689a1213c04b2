package routers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"

	"github.com/haierkeys/fast-note-ai-service/internal/app"
	"github.com/haierkeys/fast-note-ai-service/internal/middleware"
	"github.com/haierkeys/fast-note-ai-service/internal/routers/api_router"
	"github.com/haierkeys/fast-note-ai-service/internal/routers/websocket_router"
	pkgapp "github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/limiter"
)

// newMethodLimiters 按路径前缀限流，导入与登录接口按精确路径单独限制
func newMethodLimiters(cfg *app.AppConfig) limiter.Face {
	l := limiter.NewMethodLimiter()
	fill := cfg.GetRateLimitFill()
	if cfg.App.RateLimitCapacity > 0 {
		l.AddBuckets(limiter.BucketRule{
			Key:          "/api",
			FillInterval: fill,
			Capacity:     cfg.App.RateLimitCapacity,
			Quantum:      cfg.App.RateLimitCapacity,
		})
	}
	if cfg.App.ImportRateLimitCapacity > 0 {
		l.AddBuckets(limiter.BucketRule{
			Key:          "/api/note/import",
			Method:       http.MethodPost,
			Exact:        true,
			FillInterval: fill,
			Capacity:     cfg.App.ImportRateLimitCapacity,
			Quantum:      cfg.App.ImportRateLimitCapacity,
		})
	}
	l.AddBuckets(limiter.BucketRule{
		Key:          "/api/user/login",
		Method:       http.MethodPost,
		Exact:        true,
		FillInterval: fill,
		Capacity:     10,
		Quantum:      10,
	})
	return l
}

// NewRouter 创建公开 API 路由
func NewRouter(appContainer *app.App) *gin.Engine {
	cfg := appContainer.Config()

	if cfg.App.DefaultPageSize > 0 && cfg.App.MaxPageSize >= cfg.App.DefaultPageSize {
		pkgapp.DefaultPaginationConfig = pkgapp.PaginationConfig{
			DefaultPageSize: cfg.App.DefaultPageSize,
			MaxPageSize:     cfg.App.MaxPageSize,
		}
	}

	wss := pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:  true,
			ParallelEnabled:   true,                                 // 开启并行消息处理
			Recovery:          gws.Recovery,                         // 开启异常恢复
			PermessageDeflate: gws.PermessageDeflate{Enabled: true}, // 开启压缩
			ParallelGolimit:   8,
			// 只接收小文本帧
			ReadMaxPayloadSize: 1024 * 64,
		},
		Tokens: appContainer.TokenManager,
		Logger: appContainer.Logger(),
	})
	websocket_router.NewNoteWSHandler(appContainer, wss).Register()

	r := gin.New()

	api := r.Group("/api")
	api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
	api.Use(middleware.TraceMiddleware(middleware.TraceConfig{Enabled: cfg.Tracer.Enabled, Header: cfg.Tracer.Header}))
	api.Use(middleware.RateLimiter(newMethodLimiters(cfg)))
	api.Use(middleware.Cors())
	api.Use(middleware.LangWithTranslator(appContainer.Validator))
	api.Use(middleware.AccessLog(appContainer.Logger()))
	api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

	userHandler := api_router.NewUserHandler(appContainer)
	noteHandler := api_router.NewNoteHandler(appContainer)
	importHandler := api_router.NewImportHandler(appContainer)
	healthHandler := api_router.NewHealthHandler(appContainer)

	auth := middleware.UserAuthTokenWithConfig(appContainer.TokenManager)

	// Import waits for the whole pipeline and the feed is long lived; neither gets the default timeout
	// 导入接口同步等待流水线，推送为长连接，均不设置默认超时
	{
		api.POST("/note/import", auth, importHandler.Import)
		api.GET("/note/feed", wss.Run())
	}

	timed := api.Group("", middleware.ContextTimeout(cfg.GetContextTimeout()))
	{
		timed.GET("/health", healthHandler.Check)
		timed.GET("/version", healthHandler.Version)

		timed.POST("/user/register", userHandler.Register)
		timed.POST("/user/login", userHandler.Login)
		timed.GET("/user/info", auth, userHandler.UserInfo)

		timed.GET("/note", auth, noteHandler.Get)
		timed.POST("/note", auth, noteHandler.Save)
		timed.DELETE("/note", auth, noteHandler.Delete)
		timed.GET("/notes", auth, noteHandler.List)
		timed.POST("/note/grammar", auth, noteHandler.GrammarCheck)
		timed.POST("/note/export", auth, noteHandler.Export)

		timed.GET("/note/imports", auth, importHandler.Runs)
		timed.GET("/note/import/status", auth, importHandler.Status)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
