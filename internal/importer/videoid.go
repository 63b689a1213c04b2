package importer

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var watchHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
}

// ParseVideoID extracts the 11-character video id from a watch URL (query form)
// or a youtu.be short link (path form).
// ParseVideoID 从 watch 链接或 youtu.be 短链中提取视频 ID
func ParseVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", newError(KindInvalidSourceURL, errors.New("empty url"))
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", newError(KindInvalidSourceURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", newError(KindInvalidSourceURL, errors.New("unsupported scheme "+u.Scheme))
	}

	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case watchHosts[host] && u.Path == "/watch":
		id = u.Query().Get("v")
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	default:
		return "", newError(KindInvalidSourceURL, errors.New("unsupported host "+host))
	}

	if !videoIDPattern.MatchString(id) {
		return "", newError(KindInvalidSourceURL, errors.New("no video id"))
	}
	return id, nil
}
