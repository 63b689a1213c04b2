// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/fast-note-ai-service/internal/dao"
	"github.com/haierkeys/fast-note-ai-service/pkg/storage"
	"github.com/haierkeys/fast-note-ai-service/pkg/util"
	"github.com/haierkeys/fast-note-ai-service/pkg/workerpool"
	"github.com/haierkeys/fast-note-ai-service/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override empty secrets in the YAML file
// 覆盖 YAML 中空密钥的环境变量
const (
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvTranscriptAPIKey = "TRANSCRIPT_API_KEY"
)

// AppConfig 应用配置
type AppConfig struct {
	File       string           `yaml:"-"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	App        AppSettings      `yaml:"app"`
	User       UserConfig       `yaml:"user"`
	Security   SecurityConfig   `yaml:"security"`
	Tracer     TracerConfig     `yaml:"tracer"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Importer   ImporterConfig   `yaml:"importer"`
	Export     ExportConfig     `yaml:"export"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info"`
	// File 日志文件路径，为空时仅输出到 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode gin 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒），导入接口同步等待流水线，设为 0 表示不限制
	WriteTimeout int `yaml:"write-timeout" default:"0"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics、pprof）
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"fast-note-ai-Auth-Token"`
	// TokenExpiry Token 过期时间，支持 7d、24h、30m
	TokenExpiry string `yaml:"token-expiry" default:"365d"`
	// PrivateToken 私有接口（metrics、pprof）访问令牌，为空时不校验
	PrivateToken string `yaml:"private-token"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type sqlite, mysql 或 postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path     string `yaml:"path" default:"storage/database/db.sqlite3"`
	UserName string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Name     string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix" default:"pre_"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool   `yaml:"auto-migrate" default:"true"`
	Charset     string `yaml:"charset" default:"utf8mb4"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// UserConfig 用户配置
type UserConfig struct {
	// RegisterIsEnable 注册是否启用
	RegisterIsEnable bool `yaml:"register-is-enable" default:"true"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"10"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// DefaultContextTimeout 默认上下文超时时间（秒），导入接口不受此限制
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// IsReturnSussess 是否返回成功信息
	IsReturnSussess bool `yaml:"is-return-sussess" default:"false"`

	// RateLimitCapacity 每个接口前缀的令牌桶容量，0 表示不限流
	RateLimitCapacity int64 `yaml:"rate-limit-capacity" default:"100"`
	// RateLimitFill 令牌填充间隔
	RateLimitFill string `yaml:"rate-limit-fill" default:"1s"`
	// ImportRateLimitCapacity 导入接口的令牌桶容量
	ImportRateLimitCapacity int64 `yaml:"import-rate-limit-capacity" default:"5"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" default:"16"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" default:"256"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称
	Header string `yaml:"header" default:"X-Trace-ID"`
}

// GeminiConfig generative-language service settings
// GeminiConfig 生成式语言服务配置
type GeminiConfig struct {
	// APIKey 为空时读取 GEMINI_API_KEY
	APIKey string `yaml:"api-key"`
	// BaseURL 为空时使用官方地址
	BaseURL string `yaml:"base-url"`
	// Model 导入流水线使用的模型
	Model string `yaml:"model" default:"gemini-2.0-flash-001"`
	// GrammarModel 语法检查使用的模型
	GrammarModel string `yaml:"grammar-model" default:"gemini-2.0-flash-001"`
	// RateLimit 每秒请求数，0 表示不限制
	RateLimit float64 `yaml:"rate-limit" default:"2"`
	// Burst 突发请求数
	Burst int `yaml:"burst" default:"4"`
}

// TranscriptConfig transcript-extraction service settings
// TranscriptConfig 字幕提取服务配置
type TranscriptConfig struct {
	BaseURL string `yaml:"base-url" default:"https://api.supadata.ai/v1"`
	// APIKey 为空时读取 TRANSCRIPT_API_KEY
	APIKey       string `yaml:"api-key"`
	APIKeyHeader string `yaml:"api-key-header" default:"x-api-key"`
}

// ImporterConfig 导入流水线配置
type ImporterConfig struct {
	// MaxTranscriptChars 发送给模型的字幕最大字符数
	MaxTranscriptChars int `yaml:"max-transcript-chars" default:"8000"`
	// RunRetention 导入记录保留时间
	RunRetention string `yaml:"run-retention" default:"30d"`
}

// ExportConfig 笔记定时导出配置
type ExportConfig struct {
	Enabled bool `yaml:"enabled" default:"false"`
	// Cron 五段式 cron 表达式
	Cron    string         `yaml:"cron" default:"0 3 * * *"`
	Storage storage.Config `yaml:"storage"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// Defaults are applied once, before unmarshal; a second pass would turn an explicit `false` back into `true`
	// 默认值只在解析前设置一次，再次设置会把显式的 false 覆盖为 true
	c.applyEnv()

	return c, realpath, nil
}

// applyEnv 用环境变量填充空的密钥
func (c *AppConfig) applyEnv() {
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv(EnvGeminiAPIKey)
	}
	if c.Transcript.APIKey == "" {
		c.Transcript.APIKey = os.Getenv(EnvTranscriptAPIKey)
	}
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()
	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}
	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil && timeout > 0 {
		cfg.WriteTimeout = timeout
	}
	if idleTime, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil && idleTime > 0 {
		cfg.IdleTimeout = idleTime
	}

	return cfg
}

// GetTokenExpiry 获取 Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	if expiry, err := util.ParseDuration(c.Security.TokenExpiry); err == nil && expiry > 0 {
		return expiry
	}
	return 365 * 24 * time.Hour
}

// GetRateLimitFill 获取令牌填充间隔
func (c *AppConfig) GetRateLimitFill() time.Duration {
	if d, err := util.ParseDuration(c.App.RateLimitFill); err == nil && d > 0 {
		return d
	}
	return time.Second
}

// GetContextTimeout 默认请求超时
func (c *AppConfig) GetContextTimeout() time.Duration {
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}

// GetImportRunRetention 获取导入记录保留时间
func (c *AppConfig) GetImportRunRetention() time.Duration {
	if d, err := util.ParseDuration(c.Importer.RunRetention); err == nil && d > 0 {
		return d
	}
	return 30 * 24 * time.Hour
}

// DaoConfig 转换为 DAO 层配置
func (c DatabaseConfig) DaoConfig(runMode string) *dao.DatabaseConfig {
	return &dao.DatabaseConfig{
		Type:            c.Type,
		Path:            c.Path,
		UserName:        c.UserName,
		Password:        c.Password,
		Host:            c.Host,
		Name:            c.Name,
		TablePrefix:     c.TablePrefix,
		AutoMigrate:     c.AutoMigrate,
		Charset:         c.Charset,
		MaxIdleConns:    c.MaxIdleConns,
		MaxOpenConns:    c.MaxOpenConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
		RunMode:         runMode,
	}
}
