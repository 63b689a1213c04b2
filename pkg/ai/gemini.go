// Package ai wraps the Gemini generative-language API behind a rate-limited text client
// Package ai 封装 Gemini 生成式语言接口，提供带限流的文本生成客户端
package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

var (
	// ErrNotConfigured no API key was provided
	ErrNotConfigured = errors.New("gemini api key is not configured")
	// ErrEmptyResponse the model returned no text
	ErrEmptyResponse = errors.New("gemini returned no text")
)

// Config Gemini 客户端配置
type Config struct {
	APIKey string
	// BaseURL overrides the public endpoint, used by tests and proxies
	BaseURL string
	// RateLimit requests per second, 0 disables limiting
	RateLimit float64
	Burst     int
	// HTTPClient optional
	HTTPClient *http.Client
}

// Client text generation client
// Client 文本生成客户端
type Client struct {
	genai   *genai.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates the client. No request is sent until Generate is called.
// New 创建客户端，调用 Generate 前不会发出请求
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	c := &Client{genai: client, logger: logger}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// Generate sends one prompt and returns the concatenated text of the first candidate.
// There is no retry; ctx is the only cancellation source.
// Generate 发送一次请求并返回首个候选的文本，不做重试
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	result, err := c.genai.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		c.logger.Warn("gemini generate failed", zap.String("model", model), zap.Error(err))
		return "", err
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			text.WriteString(p.Text)
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return text.String(), nil
}
