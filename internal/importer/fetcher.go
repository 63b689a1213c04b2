package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
)

// Fetcher retrieves the plain transcript text of a video
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// TranscriptConfig transcript service endpoint
// TranscriptConfig 字幕服务配置
type TranscriptConfig struct {
	BaseURL string
	APIKey  string
	// APIKeyHeader defaults to x-api-key
	APIKeyHeader string
	HTTPClient   *http.Client
}

type transcriptResponse struct {
	Content []transcriptFragment `json:"content"`
	Lang    string               `json:"lang"`
}

type transcriptFragment struct {
	Text     string  `json:"text"`
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
	Lang     string  `json:"lang"`
}

// HTTPFetcher Fetcher backed by the transcript HTTP API
type HTTPFetcher struct {
	cfg    TranscriptConfig
	client *http.Client
}

func NewHTTPFetcher(cfg TranscriptConfig) *HTTPFetcher {
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "x-api-key"
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{cfg: cfg, client: client}
}

// Fetch sends exactly one GET and joins the fragment texts with single spaces.
// Fetch 只发送一次请求，按顺序以空格拼接字幕片段
func (f *HTTPFetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	endpoint := strings.TrimRight(f.cfg.BaseURL, "/") + "/youtube/transcript?videoId=" + url.QueryEscape(videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", newError(KindTranscriptUnavailable, err)
	}
	req.Header.Set(f.cfg.APIKeyHeader, f.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", newError(KindTranscriptUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(KindTranscriptUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newError(KindTranscriptUnavailable, fmt.Errorf("transcript service returned status %d", resp.StatusCode))
	}

	var data transcriptResponse
	if err := sonic.Unmarshal(body, &data); err != nil {
		return "", newError(KindTranscriptUnavailable, fmt.Errorf("decode transcript: %w", err))
	}

	texts := make([]string, 0, len(data.Content))
	for _, frag := range data.Content {
		texts = append(texts, frag.Text)
	}
	transcript := strings.Join(texts, " ")
	if strings.TrimSpace(transcript) == "" {
		return "", newError(KindEmptyTranscript, nil)
	}
	return transcript, nil
}
