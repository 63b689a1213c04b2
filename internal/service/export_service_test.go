package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/haierkeys/fast-note-ai-service/internal/dto"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	"github.com/haierkeys/fast-note-ai-service/pkg/logger"
	"github.com/haierkeys/fast-note-ai-service/pkg/storage"
)

type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (m *memStorage) SendContent(_ context.Context, key string, content []byte, _ time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[key] = content
	return key, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func TestExportPath(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "notes/u_42/20260304-050607.json", ExportPath(42, at))
}

func TestExportService_Export(t *testing.T) {
	env := newTestEnv(t)
	saveNote(t, env, 1, "first", "a")
	saveNote(t, env, 1, "second", "b")

	store := &memStorage{}
	svc := NewExportService(store, storage.S3, env.noteSvc, env.userSvc, env.logger).(*exportService)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return at }

	res, err := svc.Export(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, storage.S3, res.Storage)
	assert.Equal(t, 2, res.NoteCount)
	assert.Equal(t, ExportPath(1, at), res.Path)

	var snap exportSnapshot
	require.NoError(t, sonic.Unmarshal(store.files[res.Path], &snap))
	assert.Equal(t, int64(1), snap.UID)
	require.Len(t, snap.Notes, 2)
	assert.Equal(t, "second", snap.Notes[0].Title)
	assert.NotEmpty(t, snap.Notes[0].Color)
}

func TestExportService_LocalFS(t *testing.T) {
	env := newTestEnv(t)
	saveNote(t, env, 3, "only", "body")

	dir := t.TempDir()
	store, err := storage.NewClient(&storage.Config{Type: storage.LOCAL, SavePath: dir})
	require.NoError(t, err)

	res, err := NewExportService(store, storage.LOCAL, env.noteSvc, env.userSvc, env.logger).Export(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notes", "u_3"), filepath.Dir(res.Path))

	raw, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"title":"only"`)
}

func TestExportService_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := NewExportService(nil, "", env.noteSvc, env.userSvc, env.logger).Export(ctx, 1)
	assert.ErrorIs(t, err, code.ErrorNoteExportNotConfigured)

	_, err = NewExportService(&memStorage{err: errors.New("disk full")}, storage.WebDAV, env.noteSvc, env.userSvc, env.logger).Export(ctx, 1)
	assert.ErrorIs(t, err, code.ErrorNoteExportFailed)
}

func TestExportService_ExportAll(t *testing.T) {
	env := newTestEnv(t)
	alice := registerUser(t, env, "alice", "alice@example.com")
	registerUser(t, env, "bob", "bob@example.com")
	saveNote(t, env, alice.UID, "a", "a")

	store := &memStorage{}
	n, err := NewExportService(store, storage.S3, env.noteSvc, env.userSvc, env.logger).ExportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.files, 2)
}

// brokenListNotes fails List for one user
type brokenListNotes struct {
	NoteService
	uid int64
}

func (b brokenListNotes) List(ctx context.Context, uid int64, keyword string) ([]*dto.NoteDTO, error) {
	if uid == b.uid {
		return nil, errors.New("database is locked")
	}
	return b.NoteService.List(ctx, uid, keyword)
}

func TestExportService_ExportAllLogsSkippedUser(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "alice", "alice@example.com")
	bob := registerUser(t, env, "bob", "bob@example.com")

	core, logs := observer.New(zap.WarnLevel)
	store := &memStorage{}
	notes := brokenListNotes{NoteService: env.noteSvc, uid: bob.UID}

	n, err := NewExportService(store, storage.S3, notes, env.userSvc, zap.New(core)).ExportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, store.files, 1)

	skipped := logs.FilterMessage("ExportService.ExportAll skipped user").All()
	require.Len(t, skipped, 1)
	fields := skipped[0].ContextMap()
	assert.Equal(t, bob.UID, fields[logger.FieldUID])
	assert.Contains(t, fields["error"], "database is locked")
}
