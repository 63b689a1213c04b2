package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/internal/domain"
	"github.com/haierkeys/fast-note-ai-service/internal/dto"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	"github.com/haierkeys/fast-note-ai-service/pkg/convert"
	"github.com/haierkeys/fast-note-ai-service/pkg/logger"
	"github.com/haierkeys/fast-note-ai-service/pkg/util"
)

// CardPalette card colours, indexed by the hash of the note id
var CardPalette = []string{
	"#fde2e4", "#dfe7fd", "#e2f0d9", "#fef8e0", "#fae2ff",
	"#fff1e6", "#d9edff", "#e0fbf6", "#ffeadb", "#fdecec",
}

// CardColor 根据笔记 ID 计算卡片颜色
func CardColor(id string) string {
	return CardPalette[util.HashIndex(id, len(CardPalette))]
}

// WriteExecutor serialises writes per user
type WriteExecutor interface {
	Execute(ctx context.Context, uid int64, fn func() error) error
}

// NoteChangeListener is told after a user's note list changed
type NoteChangeListener func(uid int64)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// Save creates a note when params.ID is empty, otherwise updates it
	// Save 创建或修改笔记
	Save(ctx context.Context, uid int64, params *dto.NoteSaveRequest) (*dto.NoteDTO, error)

	// CreateImported stores a note produced by the import pipeline and returns its id
	CreateImported(ctx context.Context, uid int64, title, description, originalDescription string) (string, error)

	// Get 获取单条笔记
	Get(ctx context.Context, uid int64, id string) (*dto.NoteDTO, error)

	// Delete 删除笔记
	Delete(ctx context.Context, uid int64, id string) error

	// List 按创建时间倒序列出笔记，keyword 不区分大小写匹配标题
	List(ctx context.Context, uid int64, keyword string) ([]*dto.NoteDTO, error)

	// OnChange registers a listener for note list changes
	OnChange(fn NoteChangeListener)
}

type noteService struct {
	noteRepo  domain.NoteRepository
	writer    WriteExecutor
	logger    *zap.Logger
	mu        sync.RWMutex
	listeners []NoteChangeListener
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, writer WriteExecutor, logger *zap.Logger) NoteService {
	return &noteService{noteRepo: noteRepo, writer: writer, logger: logger}
}

func (s *noteService) OnChange(fn NoteChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *noteService) notify(uid int64) {
	s.mu.RLock()
	listeners := append([]NoteChangeListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(uid)
	}
}

func (s *noteService) toDTO(n *domain.Note) (*dto.NoteDTO, error) {
	out := &dto.NoteDTO{}
	if err := convert.StructAssign(n, out); err != nil {
		return nil, err
	}
	out.Color = CardColor(n.ID)
	return out, nil
}

// nextCreatedAt keeps createdAt strictly increasing per user; callers hold the user's write slot
func (s *noteService) nextCreatedAt(ctx context.Context, uid int64) (time.Time, error) {
	now := time.Now().Truncate(time.Microsecond)
	latest, err := s.noteRepo.LatestCreatedAt(ctx, uid)
	if err != nil {
		return time.Time{}, err
	}
	if !latest.IsZero() && !now.After(latest) {
		now = latest.Add(time.Microsecond)
	}
	return now, nil
}

func (s *noteService) create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if err := note.Validate(); err != nil {
		return nil, err
	}
	var created *domain.Note
	err := s.writer.Execute(ctx, note.UID, func() error {
		createdAt, err := s.nextCreatedAt(ctx, note.UID)
		if err != nil {
			return err
		}
		note.ID = uuid.NewString()
		note.CreatedAt = createdAt
		note.UpdatedAt = nil
		created, err = s.noteRepo.Create(ctx, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(note.UID)
	return created, nil
}

func (s *noteService) Save(ctx context.Context, uid int64, params *dto.NoteSaveRequest) (*dto.NoteDTO, error) {
	title := strings.TrimSpace(params.Title)
	description := strings.TrimSpace(params.Description)
	id := strings.TrimSpace(params.ID)

	var (
		saved *domain.Note
		err   error
	)
	// originalDescription tracks description unless the client sent the pre-correction text
	original := params.OriginalDescription
	if original == "" {
		original = description
	}
	if id == "" {
		saved, err = s.create(ctx, &domain.Note{
			UID:                 uid,
			Title:               title,
			Description:         description,
			OriginalDescription: original,
		})
	} else {
		saved, err = s.update(ctx, uid, id, title, description, original)
	}
	if err != nil {
		s.logger.Warn("NoteService.Save failed", zap.Int64(logger.FieldUID, uid), zap.String(logger.FieldNoteID, id), zap.Error(err))
		return nil, noteError(err, code.ErrorNoteSaveFailed)
	}
	return s.toDTO(saved)
}

// update keeps createdAt
func (s *noteService) update(ctx context.Context, uid int64, id, title, description, original string) (*domain.Note, error) {
	candidate := &domain.Note{Title: title, Description: description}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Note
	err := s.writer.Execute(ctx, uid, func() error {
		existing, err := s.noteRepo.GetByID(ctx, id, uid)
		if err != nil {
			return err
		}
		now := time.Now().Truncate(time.Microsecond)
		existing.Title = title
		existing.Description = description
		existing.OriginalDescription = original
		existing.UpdatedAt = &now
		updated, err = s.noteRepo.Update(ctx, existing)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(uid)
	return updated, nil
}

func (s *noteService) CreateImported(ctx context.Context, uid int64, title, description, originalDescription string) (string, error) {
	note, err := s.create(ctx, &domain.Note{
		UID:                 uid,
		Title:               strings.TrimSpace(title),
		Description:         strings.TrimSpace(description),
		OriginalDescription: originalDescription,
	})
	if err != nil {
		return "", err
	}
	return note.ID, nil
}

func (s *noteService) Get(ctx context.Context, uid int64, id string) (*dto.NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, id, uid)
	if err != nil {
		return nil, noteError(err, code.ErrorNoteGetFailed)
	}
	return s.toDTO(note)
}

func (s *noteService) Delete(ctx context.Context, uid int64, id string) error {
	err := s.writer.Execute(ctx, uid, func() error {
		return s.noteRepo.Delete(ctx, id, uid)
	})
	if err != nil {
		return noteError(err, code.ErrorNoteDeleteFailed)
	}
	s.notify(uid)
	return nil
}

func (s *noteService) List(ctx context.Context, uid int64, keyword string) ([]*dto.NoteDTO, error) {
	notes, err := s.noteRepo.List(ctx, uid, strings.TrimSpace(keyword))
	if err != nil {
		return nil, noteError(err, code.ErrorNoteListFailed)
	}
	out := make([]*dto.NoteDTO, 0, len(notes))
	for _, n := range notes {
		d, err := s.toDTO(n)
		if err != nil {
			return nil, noteError(err, code.ErrorNoteListFailed)
		}
		out = append(out, d)
	}
	return out, nil
}
