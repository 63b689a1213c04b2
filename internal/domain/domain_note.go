// Package domain 定义领域模型和接口
package domain

import (
	"strings"
	"time"
)

// Note 笔记领域模型
type Note struct {
	// ID opaque UUID assigned on creation
	ID    string
	UID   int64
	Title string
	// Description current body, possibly grammar-corrected
	Description string
	// OriginalDescription provenance snapshot: import source, pre-correction text, or Description
	OriginalDescription string
	CreatedAt           time.Time
	// UpdatedAt nil until the first update
	UpdatedAt *time.Time
}

// IsUpdated 判断笔记是否被修改过
func (n *Note) IsUpdated() bool {
	return n.UpdatedAt != nil
}

// Validate reports whether title and description are non-blank
// Validate 校验标题和内容非空
func (n *Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrNoteTitleEmpty
	}
	if strings.TrimSpace(n.Description) == "" {
		return ErrNoteDescriptionEmpty
	}
	return nil
}
