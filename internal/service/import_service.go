package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/internal/domain"
	"github.com/haierkeys/fast-note-ai-service/internal/dto"
	"github.com/haierkeys/fast-note-ai-service/internal/importer"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	"github.com/haierkeys/fast-note-ai-service/pkg/logger"
	"github.com/haierkeys/fast-note-ai-service/pkg/timex"
	"github.com/haierkeys/fast-note-ai-service/pkg/workerpool"
)

// TaskSubmitter runs blocking work on a bounded pool
type TaskSubmitter interface {
	Submit(ctx context.Context, fn func(context.Context) error) error
}

// ImportService 视频导入服务
type ImportService interface {
	// Import runs the pipeline for url and waits for Done or Failed.
	// A second call for the same user while one is running is rejected with code.ErrorImportInFlight.
	Import(ctx context.Context, uid int64, url string) (*dto.NoteImportDTO, error)

	// Busy 用户当前是否有导入在进行
	Busy(uid int64) bool

	// Runs 分页获取导入记录
	Runs(ctx context.Context, uid int64, page, pageSize int) ([]*dto.ImportRunDTO, int64, error)

	// CleanupRuns removes finished runs older than the configured retention
	CleanupRuns(ctx context.Context) (int64, error)
}

var kindCodes = map[importer.Kind]*code.Code{
	importer.KindInvalidSourceURL:      code.ErrorImportInvalidSourceURL,
	importer.KindTranscriptUnavailable: code.ErrorImportTranscriptUnavailable,
	importer.KindEmptyTranscript:       code.ErrorImportEmptyTranscript,
	importer.KindGenerationFailed:      code.ErrorImportGenerationFailed,
	importer.KindNoJSONFound:           code.ErrorImportNoJSONFound,
	importer.KindMalformedJSON:         code.ErrorImportMalformedJSON,
	importer.KindIncompleteResult:      code.ErrorImportIncompleteResult,
	importer.KindPersistenceError:      code.ErrorImportPersistence,
}

// ImportCode response code for a failure kind
func ImportCode(kind importer.Kind) *code.Code {
	if c, ok := kindCodes[kind]; ok {
		return c
	}
	return code.ErrorServerInternal
}

type importService struct {
	pipeline *importer.Pipeline
	pool     TaskSubmitter
	runRepo  domain.ImportRunRepository
	notes    NoteService
	logger   *zap.Logger
	config   *ServiceConfig

	// uid -> *importer.Surface
	surfaces sync.Map
}

// NewImportService pipeline may be nil when no generative service or transcript source is configured
func NewImportService(pipeline *importer.Pipeline, pool TaskSubmitter, runRepo domain.ImportRunRepository, notes NoteService, logger *zap.Logger, config *ServiceConfig) ImportService {
	return &importService{
		pipeline: pipeline,
		pool:     pool,
		runRepo:  runRepo,
		notes:    notes,
		logger:   logger,
		config:   config,
	}
}

func (s *importService) surface(uid int64) *importer.Surface {
	if v, ok := s.surfaces.Load(uid); ok {
		return v.(*importer.Surface)
	}
	v, _ := s.surfaces.LoadOrStore(uid, s.pipeline.NewSurface())
	return v.(*importer.Surface)
}

func (s *importService) Busy(uid int64) bool {
	if s.pipeline == nil {
		return false
	}
	return s.surface(uid).Busy()
}

func (s *importService) Import(ctx context.Context, uid int64, url string) (*dto.NoteImportDTO, error) {
	if s.pipeline == nil {
		return nil, code.ErrorImportNotConfigured
	}

	idle, err := s.surface(uid).Acquire()
	if err != nil {
		return nil, code.ErrorImportInFlight
	}

	record := &domain.ImportRun{
		ID:        idle.ID(),
		UID:       uid,
		SourceURL: url,
		State:     importer.FetchingTranscript.String(),
		StartedAt: time.Now(),
	}
	// history is best effort, a failed insert never blocks the import
	if err := s.runRepo.Create(ctx, record); err != nil {
		s.logger.Warn("ImportService record create failed", zap.String(logger.FieldRunID, record.ID), zap.Error(err))
		record = nil
	}

	done := make(chan importer.Outcome, 1)
	err = s.pool.Submit(ctx, func(runCtx context.Context) error {
		outcome := idle.Start(runCtx, uid, url)
		if !errors.Is(outcome.Err, importer.ErrRunConsumed) {
			s.finish(context.WithoutCancel(runCtx), record, outcome)
		}
		done <- outcome
		return nil
	})
	if err != nil {
		// the run may still be executing if ctx ended after it was picked up
		if idle.Release() {
			s.finish(context.WithoutCancel(ctx), record, importer.Outcome{
				RunID:   idle.ID(),
				State:   importer.Failed,
				Message: err.Error(),
				Err:     err,
			})
		}
		if errors.Is(err, workerpool.ErrWorkerPoolFull) || errors.Is(err, workerpool.ErrWorkerPoolClosed) {
			return nil, code.ErrorImportBusy
		}
		return nil, code.Failed.WithDetails(err.Error())
	}

	outcome := <-done
	if outcome.State != importer.Done {
		return nil, ImportCode(outcome.Kind()).
			WithDetails(outcome.Message).
			WithData(map[string]string{"runId": outcome.RunID})
	}

	out := &dto.NoteImportDTO{RunID: outcome.RunID, NoteID: outcome.NoteID, VideoID: outcome.VideoID}
	if note, err := s.notes.Get(ctx, uid, outcome.NoteID); err == nil {
		out.Note = note
	}
	return out, nil
}

func (s *importService) finish(ctx context.Context, record *domain.ImportRun, outcome importer.Outcome) {
	if record == nil {
		return
	}
	now := time.Now()
	record.VideoID = outcome.VideoID
	record.State = outcome.State.String()
	record.ErrorKind = string(outcome.Kind())
	record.Message = outcome.Message
	record.NoteID = outcome.NoteID
	record.FinishedAt = &now
	if err := s.runRepo.Finish(ctx, record); err != nil {
		s.logger.Warn("ImportService record finish failed", zap.String(logger.FieldRunID, record.ID), zap.Error(err))
	}
}

func (s *importService) Runs(ctx context.Context, uid int64, page, pageSize int) ([]*dto.ImportRunDTO, int64, error) {
	runs, err := s.runRepo.List(ctx, uid, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorImportRunListFailed.WithDetails(err.Error())
	}
	count, err := s.runRepo.ListCount(ctx, uid)
	if err != nil {
		return nil, 0, code.ErrorImportRunListFailed.WithDetails(err.Error())
	}

	out := make([]*dto.ImportRunDTO, 0, len(runs))
	for _, r := range runs {
		d := &dto.ImportRunDTO{
			ID:        r.ID,
			SourceURL: r.SourceURL,
			VideoID:   r.VideoID,
			State:     r.State,
			ErrorKind: r.ErrorKind,
			Message:   r.Message,
			NoteID:    r.NoteID,
			StartedAt: timex.Time(r.StartedAt),
		}
		if r.FinishedAt != nil {
			d.FinishedAt = timex.Time(*r.FinishedAt)
		}
		out = append(out, d)
	}
	return out, count, nil
}

func (s *importService) CleanupRuns(ctx context.Context) (int64, error) {
	if s.config == nil || s.config.Import.RunRetention <= 0 {
		return 0, nil
	}
	return s.runRepo.DeleteFinishedBefore(ctx, time.Now().Add(-s.config.Import.RunRetention))
}
