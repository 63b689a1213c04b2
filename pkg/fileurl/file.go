package fileurl

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 的父目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// PathSuffixCheckAdd checks path suffix, adds it if not exists
// PathSuffixCheckAdd 检查路径后缀，如果没有则添加
func PathSuffixCheckAdd(path string, suffix string) string {
	if path == "" {
		return ""
	}
	if !strings.HasSuffix(path, suffix) {
		path = path + suffix
	}
	return path
}

// JoinKey joins a storage prefix and key with exactly one slash
// JoinKey 用单个斜杠拼接存储前缀与键
func JoinKey(prefix, key string) string {
	return PathSuffixCheckAdd(strings.TrimSuffix(prefix, "/"), "/") + strings.TrimPrefix(key, "/")
}
