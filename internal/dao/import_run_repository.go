// Package dao 实现数据访问层
package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-ai-service/internal/domain"
	"github.com/haierkeys/fast-note-ai-service/internal/model"
	"github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/timex"
)

// importRunRepository 实现 domain.ImportRunRepository 接口
type importRunRepository struct {
	dao *Dao
}

// NewImportRunRepository 创建 ImportRunRepository 实例
func NewImportRunRepository(dao *Dao) domain.ImportRunRepository {
	return &importRunRepository{dao: dao}
}

func (r *importRunRepository) toDomain(m *model.ImportRun) *domain.ImportRun {
	run := &domain.ImportRun{
		ID:        m.ID,
		UID:       m.UID,
		SourceURL: m.SourceURL,
		VideoID:   m.VideoID,
		State:     m.State,
		ErrorKind: m.ErrorKind,
		Message:   m.Message,
		NoteID:    m.NoteID,
		StartedAt: m.StartedAt.Time(),
	}
	if !m.FinishedAt.IsZero() {
		t := m.FinishedAt.Time()
		run.FinishedAt = &t
	}
	return run
}

func (r *importRunRepository) Create(ctx context.Context, run *domain.ImportRun) error {
	return r.dao.use(ctx, "ImportRun").Create(&model.ImportRun{
		ID:        run.ID,
		UID:       run.UID,
		SourceURL: run.SourceURL,
		VideoID:   run.VideoID,
		State:     run.State,
		StartedAt: timex.Time(run.StartedAt),
	}).Error
}

// Finish 写入最终状态
func (r *importRunRepository) Finish(ctx context.Context, run *domain.ImportRun) error {
	finished := timex.Now()
	if run.FinishedAt != nil {
		finished = timex.Time(*run.FinishedAt)
	}
	res := r.dao.use(ctx, "ImportRun").
		Model(&model.ImportRun{}).
		Where("id = ? AND uid = ?", run.ID, run.UID).
		Updates(map[string]any{
			"video_id":    run.VideoID,
			"state":       run.State,
			"error_kind":  run.ErrorKind,
			"message":     run.Message,
			"note_id":     run.NoteID,
			"finished_at": finished,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List 分页获取导入记录，page 从 1 开始
func (r *importRunRepository) List(ctx context.Context, uid int64, page, pageSize int) ([]*domain.ImportRun, error) {
	var ms []*model.ImportRun
	err := r.dao.use(ctx, "ImportRun").
		Where("uid = ?", uid).
		Order("started_at DESC").
		Offset(app.GetPageOffset(page, pageSize)).
		Limit(pageSize).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	list := make([]*domain.ImportRun, 0, len(ms))
	for _, m := range ms {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

func (r *importRunRepository) ListCount(ctx context.Context, uid int64) (int64, error) {
	var n int64
	err := r.dao.use(ctx, "ImportRun").Model(&model.ImportRun{}).Where("uid = ?", uid).Count(&n).Error
	return n, err
}

// DeleteFinishedBefore 删除早于 t 结束的记录
func (r *importRunRepository) DeleteFinishedBefore(ctx context.Context, t time.Time) (int64, error) {
	res := r.dao.use(ctx, "ImportRun").
		Where("finished_at IS NOT NULL AND finished_at < ?", timex.Time(t)).
		Delete(&model.ImportRun{})
	return res.RowsAffected, res.Error
}

var _ domain.ImportRunRepository = (*importRunRepository)(nil)
