// Package dao 实现数据访问层
package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-note-ai-service/internal/domain"
	"github.com/haierkeys/fast-note-ai-service/internal/model"
	"github.com/haierkeys/fast-note-ai-service/pkg/timex"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	n := &domain.Note{
		ID:                  m.ID,
		UID:                 m.UID,
		Title:               m.Title,
		Description:         m.Description,
		OriginalDescription: m.OriginalDescription,
		CreatedAt:           m.CreatedAt.Time(),
	}
	if !m.UpdatedAt.IsZero() {
		t := m.UpdatedAt.Time()
		n.UpdatedAt = &t
	}
	return n
}

func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	if n == nil {
		return nil
	}
	m := &model.Note{
		ID:                  n.ID,
		UID:                 n.UID,
		Title:               n.Title,
		Description:         n.Description,
		OriginalDescription: n.OriginalDescription,
		CreatedAt:           timex.Time(n.CreatedAt),
	}
	if n.UpdatedAt != nil {
		m.UpdatedAt = timex.Time(*n.UpdatedAt)
	}
	return m
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	if err := r.dao.use(ctx, "Note").Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新笔记，createdAt 不变
func (r *noteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	res := r.dao.use(ctx, "Note").
		Model(&model.Note{}).
		Where("id = ? AND uid = ?", m.ID, m.UID).
		Updates(map[string]any{
			"title":                m.Title,
			"description":          m.Description,
			"original_description": m.OriginalDescription,
			"updated_at":           m.UpdatedAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, m.ID, m.UID)
}

// GetByID 根据ID获取笔记
func (r *noteRepository) GetByID(ctx context.Context, id string, uid int64) (*domain.Note, error) {
	var m model.Note
	err := r.dao.use(ctx, "Note").Where("id = ? AND uid = ?", id, uid).First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return r.toDomain(&m), nil
}

// Delete 物理删除笔记
func (r *noteRepository) Delete(ctx context.Context, id string, uid int64) error {
	res := r.dao.use(ctx, "Note").Where("id = ? AND uid = ?", id, uid).Delete(&model.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List 按创建时间倒序列出笔记
func (r *noteRepository) List(ctx context.Context, uid int64, keyword string) ([]*domain.Note, error) {
	var ms []*model.Note
	q := r.dao.use(ctx, "Note").Where("uid = ?", uid)
	if keyword != "" {
		q = q.Where("LOWER(title) LIKE ? ESCAPE '"+likeEscape+"'", containsPattern(keyword))
	}
	if err := q.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}

	list := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

// LatestCreatedAt 用户最新笔记的创建时间
func (r *noteRepository) LatestCreatedAt(ctx context.Context, uid int64) (time.Time, error) {
	var m model.Note
	err := r.dao.use(ctx, "Note").
		Select("created_at").
		Where("uid = ?", uid).
		Order("created_at DESC").
		Limit(1).
		Find(&m).Error
	if err != nil {
		return time.Time{}, err
	}
	return m.CreatedAt.Time(), nil
}

// Count 笔记数量
func (r *noteRepository) Count(ctx context.Context, uid int64) (int64, error) {
	var n int64
	err := r.dao.use(ctx, "Note").Model(&model.Note{}).Where("uid = ?", uid).Count(&n).Error
	return n, err
}

var _ domain.NoteRepository = (*noteRepository)(nil)
