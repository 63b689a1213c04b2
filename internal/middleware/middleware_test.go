package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/limiter"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(TraceConfig{Enabled: true}))
	var fromCtx string
	r.GET("/t", func(c *gin.Context) {
		fromCtx = GetTraceID(c.Request.Context())
		c.String(http.StatusOK, GetTraceIDFromGin(c))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/t", nil))
	id := w.Header().Get(DefaultTraceIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, id, fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	req.Header.Set(DefaultTraceIDHeader, "given-id")
	w = serve(r, req)
	assert.Equal(t, "given-id", w.Header().Get(DefaultTraceIDHeader))
}

func TestTraceMiddleware_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(TraceConfig{Enabled: false}))
	r.GET("/t", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/t", nil))
	assert.Empty(t, w.Header().Get(DefaultTraceIDHeader))
}

func TestUserAuthToken(t *testing.T) {
	tokens := app.NewTokenManager(app.TokenConfig{SecretKey: "k"})
	r := gin.New()
	r.Use(UserAuthTokenWithConfig(tokens))
	r.GET("/me", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"uid": app.GetUID(c)}) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Contains(t, w.Body.String(), `"code":401`)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bad")
	w = serve(r, req)
	assert.Contains(t, w.Body.String(), `"code":402`)

	token, err := tokens.Generate(5, "u", "")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(r, req)
	assert.JSONEq(t, `{"uid":5}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
	assert.JSONEq(t, `{"uid":5}`, w.Body.String())
}

func TestSimpleAuthToken(t *testing.T) {
	r := gin.New()
	r.Use(SimpleAuthTokenWithConfig("static"))
	r.GET("/metrics", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics?token=wrong", nil))
	assert.Contains(t, w.Body.String(), `"code":402`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics?token=static", nil))
	assert.Equal(t, "ok", w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	l := limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{
		Key:          "/api/note/import",
		FillInterval: time.Hour,
		Capacity:     1,
		Quantum:      1,
	})
	r := gin.New()
	r.Use(RateLimiter(l))
	r.POST("/api/note/import", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/notes", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	assert.Equal(t, "ok", serve(r, httptest.NewRequest(http.MethodPost, "/api/note/import", nil)).Body.String())
	assert.Contains(t, serve(r, httptest.NewRequest(http.MethodPost, "/api/note/import", nil)).Body.String(), `"code":429`)
	assert.Equal(t, "ok", serve(r, httptest.NewRequest(http.MethodGet, "/api/notes", nil)).Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryWithLogger(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, w.Body.String(), `"code":500`)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestContextTimeout(t *testing.T) {
	r := gin.New()
	r.GET("/bounded", ContextTimeout(time.Minute), func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})
	r.GET("/unbounded", ContextTimeout(0), func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	assert.JSONEq(t, `{"deadline":true}`, serve(r, httptest.NewRequest(http.MethodGet, "/bounded", nil)).Body.String())
	assert.JSONEq(t, `{"deadline":false}`, serve(r, httptest.NewRequest(http.MethodGet, "/unbounded", nil)).Body.String())
}

func TestLangAndCors(t *testing.T) {
	v, err := app.NewValidator()
	require.NoError(t, err)

	r := gin.New()
	r.Use(Cors(), LangWithTranslator(v))
	r.NoRoute(NoFound())

	req := httptest.NewRequest(http.MethodGet, "/missing?lang=zh-CN", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(r, req)
	assert.Contains(t, w.Body.String(), "接口不存在")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/note", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}
