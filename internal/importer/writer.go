package importer

import (
	"context"
)

// NoteCreator stores a new note for uid and returns its id; createdAt is assigned by the store
type NoteCreator interface {
	CreateImported(ctx context.Context, uid int64, title, description, originalDescription string) (string, error)
}

// Persister writes an extracted result
type Persister interface {
	Write(ctx context.Context, uid int64, result Result, sourceURL string) (string, error)
}

// Writer Persister backed by a NoteCreator
type Writer struct {
	creator NoteCreator
}

func NewWriter(creator NoteCreator) *Writer {
	return &Writer{creator: creator}
}

// Provenance originalDescription of an imported note
// Provenance 导入笔记的来源说明
func Provenance(sourceURL string) string {
	return "Imported from YouTube: " + sourceURL
}

func (w *Writer) Write(ctx context.Context, uid int64, result Result, sourceURL string) (string, error) {
	id, err := w.creator.CreateImported(ctx, uid, result.Title, result.Notes, Provenance(sourceURL))
	if err != nil {
		return "", newError(KindPersistenceError, err)
	}
	return id, nil
}
