// Package model gorm table definitions
// Package model 数据库表结构定义
package model

import (
	"github.com/haierkeys/fast-note-ai-service/pkg/timex"

	"gorm.io/gorm"
)

// Note 笔记表
type Note struct {
	ID                  string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	UID                 int64      `gorm:"column:uid;index:idx_note_uid_created,priority:1;not null" json:"uid"`
	Title               string     `gorm:"column:title;size:512;not null" json:"title"`
	Description         string     `gorm:"column:description;type:text;not null" json:"description"`
	OriginalDescription string     `gorm:"column:original_description;type:text" json:"originalDescription"`
	CreatedAt           timex.Time `gorm:"column:created_at;index:idx_note_uid_created,priority:2;precision:6;autoCreateTime:false" json:"createdAt"`
	UpdatedAt           timex.Time `gorm:"column:updated_at;precision:6;autoUpdateTime:false" json:"updatedAt"`
}

// User 用户表
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Email     string     `gorm:"column:email;size:255;index" json:"email"`
	Username  string     `gorm:"column:username;size:64;uniqueIndex" json:"username"`
	Password  string     `gorm:"column:password;size:255" json:"-"`
	CreatedAt timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
}

// ImportRun 导入记录表
type ImportRun struct {
	ID         string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	UID        int64      `gorm:"column:uid;index:idx_import_run_uid_started,priority:1;not null" json:"uid"`
	SourceURL  string     `gorm:"column:source_url;size:2048" json:"sourceUrl"`
	VideoID    string     `gorm:"column:video_id;size:32" json:"videoId"`
	State      string     `gorm:"column:state;size:32" json:"state"`
	ErrorKind  string     `gorm:"column:error_kind;size:32" json:"errorKind"`
	Message    string     `gorm:"column:message;type:text" json:"message"`
	NoteID     string     `gorm:"column:note_id;size:36" json:"noteId"`
	StartedAt  timex.Time `gorm:"column:started_at;index:idx_import_run_uid_started,priority:2;precision:6" json:"startedAt"`
	FinishedAt timex.Time `gorm:"column:finished_at;index;precision:6" json:"finishedAt"`
}

// AutoMigrate 按名称迁移表结构，key 为空时迁移全部
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Note":
		return db.AutoMigrate(Note{})
	case "User":
		return db.AutoMigrate(User{})
	case "ImportRun":
		return db.AutoMigrate(ImportRun{})
	case "":
		return db.AutoMigrate(User{}, Note{}, ImportRun{})
	}
	return nil
}
