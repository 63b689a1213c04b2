package dao

import (
	"errors"
	"strings"

	"github.com/haierkeys/fast-note-ai-service/internal/domain"

	"gorm.io/gorm"
)

// likeEscape is portable across sqlite, mysql and postgres, unlike backslash
const likeEscape = "!"

// containsPattern 构造不区分大小写的 LIKE 子串匹配模式
func containsPattern(keyword string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(keyword)) + "%"
}

// notFound 将 gorm.ErrRecordNotFound 转换为 domain.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
