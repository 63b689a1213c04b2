package local_fs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/fast-note-ai-service/pkg/fileurl"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/export"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf == nil || conf.SavePath == "" {
		return nil, errors.New("local_fs: save path is required")
	}
	if fileurl.IsExist(conf.SavePath) && !fileurl.IsDir(conf.SavePath) {
		return nil, errors.Errorf("local_fs: save path %q is not a directory", conf.SavePath)
	}
	return &LocalFS{Config: conf}, nil
}

func (p *LocalFS) path(fileKey string) string {
	return filepath.Join(p.Config.SavePath, filepath.FromSlash(fileurl.JoinKey(p.Config.CustomPath, fileKey)))
}

// SendContent writes content to SavePath/CustomPath/fileKey and stamps modTime
// SendContent 写入文件并设置修改时间
func (p *LocalFS) SendContent(ctx context.Context, fileKey string, content []byte, modTime time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := p.path(fileKey)
	if err := os.MkdirAll(filepath.Dir(dst), 0754); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if err := os.WriteFile(dst, content, 0644); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(dst, modTime, modTime); err != nil {
			return "", errors.Wrap(err, "local_fs")
		}
	}
	return dst, nil
}

func (p *LocalFS) Delete(ctx context.Context, fileKey string) error {
	dst := p.path(fileKey)
	if fileurl.IsExist(dst) {
		return errors.Wrap(os.Remove(dst), "local_fs")
	}
	return nil
}
