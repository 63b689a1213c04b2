package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/internal/dto"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	"github.com/haierkeys/fast-note-ai-service/pkg/logger"
	"github.com/haierkeys/fast-note-ai-service/pkg/storage"
)

// exportSnapshot file layout of an export
type exportSnapshot struct {
	UID        int64          `json:"uid"`
	ExportedAt string         `json:"exportedAt"`
	Notes      []*dto.NoteDTO `json:"notes"`
}

// ExportService 笔记导出服务
type ExportService interface {
	// Export writes a JSON snapshot of the user's notes to the configured storage
	Export(ctx context.Context, uid int64) (*dto.ExportDTO, error)

	// ExportAll 导出所有用户，单个用户失败不影响其他用户
	ExportAll(ctx context.Context) (int, error)
}

type exportService struct {
	storage     storage.Storager
	storageType string
	notes       NoteService
	users       UserService
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService store may be nil, Export then reports not configured
func NewExportService(store storage.Storager, storageType string, notes NoteService, users UserService, logger *zap.Logger) ExportService {
	return &exportService{
		storage:     store,
		storageType: storageType,
		notes:       notes,
		users:       users,
		logger:      logger,
		now:         time.Now,
	}
}

// ExportPath storage key of a snapshot
func ExportPath(uid int64, t time.Time) string {
	return fmt.Sprintf("notes/u_%d/%s.json", uid, t.Format("20060102-150405"))
}

func (s *exportService) Export(ctx context.Context, uid int64) (*dto.ExportDTO, error) {
	if s.storage == nil {
		return nil, code.ErrorNoteExportNotConfigured
	}

	notes, err := s.notes.List(ctx, uid, "")
	if err != nil {
		return nil, err
	}

	now := s.now()
	content, err := sonic.Marshal(&exportSnapshot{
		UID:        uid,
		ExportedAt: now.Format(time.RFC3339),
		Notes:      notes,
	})
	if err != nil {
		return nil, code.ErrorNoteExportFailed.WithDetails(err.Error())
	}

	key, err := s.storage.SendContent(ctx, ExportPath(uid, now), content, now)
	if err != nil {
		s.logger.Warn("ExportService.Export failed",
			zap.Int64(logger.FieldUID, uid),
			zap.String(logger.FieldStorage, s.storageType),
			zap.Error(err))
		return nil, code.ErrorNoteExportFailed.WithDetails(err.Error())
	}

	s.logger.Info("notes exported",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldFileKey, key),
		zap.Int("count", len(notes)))

	return &dto.ExportDTO{Storage: s.storageType, Path: key, NoteCount: len(notes)}, nil
}

func (s *exportService) ExportAll(ctx context.Context) (int, error) {
	if s.storage == nil {
		return 0, code.ErrorNoteExportNotConfigured
	}
	uids, err := s.users.GetAllUIDs(ctx)
	if err != nil {
		return 0, err
	}
	exported := 0
	for _, uid := range uids {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if _, err := s.Export(ctx, uid); err != nil {
			s.logger.Warn("ExportService.ExportAll skipped user", zap.Int64(logger.FieldUID, uid), zap.Error(err))
			continue
		}
		exported++
	}
	return exported, nil
}
