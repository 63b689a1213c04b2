// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/fast-note-ai-service/pkg/diff"
	"github.com/haierkeys/fast-note-ai-service/pkg/timex"
)

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID                  string     `json:"id"`                  // Note ID // 笔记 ID
	Title               string     `json:"title"`               // Title // 标题
	Description         string     `json:"description"`         // Body // 内容
	OriginalDescription string     `json:"originalDescription"` // Provenance snapshot // 来源快照
	Color               string     `json:"color"`               // Card colour derived from the id // 卡片颜色
	CreatedAt           timex.Time `json:"createdAt"`           // Created time // 创建时间
	UpdatedAt           timex.Time `json:"updatedAt"`           // Last updated time, null until edited // 更新时间
}

// NoteSaveRequest create (no id) or update (with id)
// NoteSaveRequest 创建或修改笔记的请求参数
type NoteSaveRequest struct {
	ID          string `json:"id" form:"id"`
	Title       string `json:"title" form:"title" binding:"required,max=500"`
	Description string `json:"description" form:"description" binding:"required"`
	// OriginalDescription pre-correction text when grammar was applied
	OriginalDescription string `json:"originalDescription" form:"originalDescription"`
}

// NoteGetRequest 获取/删除笔记请求参数
type NoteGetRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// NoteListRequest 笔记列表请求参数
type NoteListRequest struct {
	Keyword string `json:"keyword" form:"keyword"`
}

// NoteListDTO 笔记列表
type NoteListDTO struct {
	List  []*NoteDTO `json:"list"`
	Count int        `json:"count"`
}

// GrammarCheckRequest 语法检查请求参数
type GrammarCheckRequest struct {
	Text string `json:"text" form:"text" binding:"required"`
}

// GrammarCheckDTO 语法检查结果
type GrammarCheckDTO struct {
	Original  string         `json:"original"`
	Corrected string         `json:"corrected"`
	Diff      []diff.Segment `json:"diff"`
	Stats     diff.Stats     `json:"stats"`
}
