package domain

import "errors"

var (
	// ErrNotFound the record does not exist within the caller's scope
	// ErrNotFound 记录不存在（或不属于当前用户）
	ErrNotFound = errors.New("record not found")

	ErrNoteTitleEmpty       = errors.New("note title is empty")
	ErrNoteDescriptionEmpty = errors.New("note description is empty")
)
