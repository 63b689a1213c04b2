// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// NoteRepository 笔记仓储接口
// Every method is scoped to uid; a note of another user reads as ErrNotFound.
// 所有方法都限定在 uid 范围内，其他用户的笔记视为不存在。
type NoteRepository interface {
	// Create 创建笔记，ID 与 CreatedAt 由调用方赋值
	Create(ctx context.Context, note *Note) (*Note, error)

	// Update 更新标题、内容、来源快照与 UpdatedAt
	Update(ctx context.Context, note *Note) (*Note, error)

	// GetByID 根据ID获取笔记
	GetByID(ctx context.Context, id string, uid int64) (*Note, error)

	// Delete 物理删除笔记
	Delete(ctx context.Context, id string, uid int64) error

	// List 按创建时间倒序列出笔记，keyword 不区分大小写匹配标题
	List(ctx context.Context, uid int64, keyword string) ([]*Note, error)

	// LatestCreatedAt 用户最新笔记的创建时间，无笔记时返回零值
	LatestCreatedAt(ctx context.Context, uid int64) (time.Time, error)

	// Count 笔记数量
	Count(ctx context.Context, uid int64) (int64, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	GetByUID(ctx context.Context, uid int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	// GetAllUIDs 获取所有用户UID
	GetAllUIDs(ctx context.Context) ([]int64, error)
}

// ImportRunRepository 导入记录仓储接口
type ImportRunRepository interface {
	Create(ctx context.Context, run *ImportRun) error

	// Finish 写入最终状态
	Finish(ctx context.Context, run *ImportRun) error

	// List 分页获取导入记录，最新的在前
	List(ctx context.Context, uid int64, page, pageSize int) ([]*ImportRun, error)

	ListCount(ctx context.Context, uid int64) (int64, error)

	// DeleteFinishedBefore 删除早于 t 结束的记录，返回删除数量
	DeleteFinishedBefore(ctx context.Context, t time.Time) (int64, error)
}
