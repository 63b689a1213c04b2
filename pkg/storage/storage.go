// Package storage writes export snapshots to a local directory, an S3-compatible bucket or WebDAV
// Package storage 将导出快照写入本地目录、S3 兼容存储或 WebDAV
package storage

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	"github.com/haierkeys/fast-note-ai-service/pkg/storage/aws_s3"
	"github.com/haierkeys/fast-note-ai-service/pkg/storage/local_fs"
	"github.com/haierkeys/fast-note-ai-service/pkg/storage/webdav"
)

type Type = string

const LOCAL Type = "localfs"
const S3 Type = "s3"
const WebDAV Type = "webdav"

var StorageTypeMap = map[Type]bool{
	LOCAL:  true,
	S3:     true,
	WebDAV: true,
}

// Config Unified storage configuration
// Config 统一存储配置
type Config struct {
	Type Type `yaml:"type" default:"localfs"`

	// CustomPath key prefix applied by every backend
	CustomPath string `yaml:"custom-path"`

	// S3 compatible; Endpoint targets MinIO or R2 with path-style addressing
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region" default:"us-east-1"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/export"`
}

// Storager 存储后端接口
type Storager interface {
	// SendContent writes content under pathKey and returns the stored key
	SendContent(ctx context.Context, pathKey string, content []byte, modTime time.Time) (string, error)
	Delete(ctx context.Context, pathKey string) error
}

// NewClient 按类型创建存储客户端
func NewClient(config *Config) (Storager, error) {
	if config == nil {
		return nil, code.ErrorInvalidStorageType
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case S3:
		return aws_s3.NewClient(&aws_s3.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	}
	return nil, code.ErrorInvalidStorageType
}
